// Package repository contains the data access layer built on GORM.
package repository

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

// userRepository implements UserRepository
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Return nil for not found, not an error
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// Create persists a new user. The first user ever created is promoted to
// admin. Two concurrent first registrations can both observe an empty table
// under read committed, so the single-admin guarantee rests on the partial
// unique index over is_admin: the second insert fails there, and that
// attempt is retried once as a regular member.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.insertWithPromotion(ctx, user)
	if isAdminIndexViolation(err) {
		user.ID = 0
		user.IsAdmin = false
		err = r.insertWithPromotion(ctx, user)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewDuplicateEmailError(user.Email)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) insertWithPromotion(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			user.IsAdmin = true
		}
		return tx.Create(user).Error
	})
}

// Delete removes the user together with everything they own: their comments,
// their posts, and the comments other users left on those posts. One
// transaction, so no orphaned rows survive a partial failure.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}

		if err := tx.Where(
			"post_id IN (?)",
			tx.Model(&models.Post{}).Select("id").Where("user_id = ?", id),
		).Delete(&models.Comment{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// singleAdminIndex matches the index name created in database.Migrate.
const singleAdminIndex = "idx_users_single_admin"

// isAdminIndexViolation reports whether err is the single-admin index
// rejecting a second admin row. Both postgres and sqlite name the violated
// index in the error.
func isAdminIndexViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), singleAdminIndex)
}

// isUniqueViolation reports whether err is a unique-constraint violation,
// across the postgres and sqlite drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
