// Package seed populates the database with development data.
package seed

import (
	"fmt"
	"log"
	"math/rand"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much data Run generates.
type Options struct {
	Users    int
	Posts    int
	Comments int
	Clean    bool
}

// Run fills the database with fake users, posts, and comments. The first
// user created is the admin and authors every post, matching how the
// application behaves in practice.
func Run(db *gorm.DB, opts Options) error {
	if opts.Clean {
		log.Println("Cleaning existing data...")
		for _, model := range []any{&models.Comment{}, &models.Post{}, &models.User{}} {
			if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clean table: %w", err)
			}
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// At most one admin row can exist, so reuse it when seeding on top of
	// existing data.
	var admin models.User
	if err := db.Where("is_admin = ?", true).First(&admin).Error; err != nil {
		admin = models.User{
			Name:     "Admin",
			Email:    "admin@inkwell.dev",
			Password: string(hash),
			IsAdmin:  true,
		}
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
	}

	users := []models.User{admin}
	for i := 1; i < opts.Users; i++ {
		user := models.User{
			Name:     gofakeit.Name(),
			Email:    gofakeit.Email(),
			Password: string(hash),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("Created %d users (admin: %s)", len(users), admin.Email)

	var posts []models.Post
	for i := 0; i < opts.Posts; i++ {
		post := models.Post{
			Title:    gofakeit.Sentence(5),
			Subtitle: gofakeit.Sentence(8),
			Body:     gofakeit.Paragraph(3, 5, 12, "\n\n"),
			ImageURL: gofakeit.ImageURL(800, 400),
			UserID:   admin.ID,
		}
		if err := db.Create(&post).Error; err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("Created %d posts", len(posts))

	created := 0
	for i := 0; i < opts.Comments && len(posts) > 0; i++ {
		comment := models.Comment{
			Body:   gofakeit.Sentence(12),
			UserID: users[rand.Intn(len(users))].ID,
			PostID: posts[rand.Intn(len(posts))].ID,
		}
		if err := db.Create(&comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		created++
	}
	log.Printf("Created %d comments", created)

	return nil
}
