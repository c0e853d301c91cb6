package repository

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func TestUserCreateFirstUserBecomesAdmin(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := &models.User{Name: "A", Email: "a@x.com", Password: "h"}
	require.NoError(t, repo.Create(ctx, first))
	assert.True(t, first.IsAdmin)

	second := &models.User{Name: "B", Email: "b@x.com", Password: "h"}
	require.NoError(t, repo.Create(ctx, second))
	assert.False(t, second.IsAdmin)
}

func TestUserCreateSecondAdminRowRejectedBySchema(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.User{Name: "A", Email: "a@x.com", Password: "h", IsAdmin: true}).Error)

	// The partial unique index holds regardless of what the application
	// layer observed before inserting.
	err := db.Create(&models.User{Name: "B", Email: "b@x.com", Password: "h", IsAdmin: true}).Error
	require.Error(t, err)

	var admins int64
	db.Model(&models.User{}).Where("is_admin = ?", true).Count(&admins)
	assert.Equal(t, int64(1), admins)
}

func TestUserCreateLostPromotionRaceFallsBackToMember(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := &models.User{Name: "A", Email: "a@x.com", Password: "h"}
	require.NoError(t, repo.Create(ctx, first))
	require.True(t, first.IsAdmin)

	// An insert arriving with the admin flag already set, after another
	// admin committed, trips the index and is retried as a regular member.
	late := &models.User{Name: "B", Email: "b@x.com", Password: "h", IsAdmin: true}
	require.NoError(t, repo.Create(ctx, late))
	assert.False(t, late.IsAdmin)
	assert.NotZero(t, late.ID)

	var admins int64
	db.Model(&models.User{}).Where("is_admin = ?", true).Count(&admins)
	assert.Equal(t, int64(1), admins)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Name: "A", Email: "a@x.com", Password: "h"}))

	err := repo.Create(ctx, &models.User{Name: "A2", Email: "a@x.com", Password: "h"})
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "DUPLICATE_EMAIL", appErr.Code)

	// The failed insert left no row behind.
	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUserGetByEmailMissingIsNotAnError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	author := &models.User{Name: "Author", Email: "author@x.com", Password: "h"}
	require.NoError(t, users.Create(ctx, author))
	commenter := &models.User{Name: "Commenter", Email: "commenter@x.com", Password: "h"}
	require.NoError(t, users.Create(ctx, commenter))

	post := models.Post{Title: "T", Subtitle: "S", Body: "B", UserID: author.ID}
	require.NoError(t, db.Create(&post).Error)
	keeper := models.Post{Title: "T2", Subtitle: "S2", Body: "B2", UserID: commenter.ID}
	require.NoError(t, db.Create(&keeper).Error)

	// The commenter comments on both posts; the author comments on their own.
	require.NoError(t, db.Create(&models.Comment{Body: "c1", UserID: commenter.ID, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{Body: "c2", UserID: author.ID, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{Body: "c3", UserID: commenter.ID, PostID: keeper.ID}).Error)

	// Deleting the author removes their posts, their comments, and other
	// users' comments on their posts.
	require.NoError(t, users.Delete(ctx, author.ID))

	var userCount, postCount, commentCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.Post{}).Count(&postCount)
	db.Model(&models.Comment{}).Count(&commentCount)
	assert.Equal(t, int64(1), userCount)
	assert.Equal(t, int64(1), postCount)
	assert.Equal(t, int64(1), commentCount)

	var survivor models.Comment
	require.NoError(t, db.First(&survivor).Error)
	assert.Equal(t, keeper.ID, survivor.PostID)
}

func TestUserDeleteNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	err := repo.Delete(context.Background(), 42)
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
