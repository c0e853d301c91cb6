package models

import (
	"time"
)

// Post is a blog entry. Author and CreatedAt are fixed at creation; edits
// only touch the mutable content fields.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Subtitle  string    `gorm:"not null" json:"subtitle"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	ImageURL  string    `json:"image_url"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Comments  []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
