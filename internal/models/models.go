package models

import (
	"time"
)

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	Password     string     `gorm:"not null" json:"-"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at" json:"last_login_at"`
	SessionToken *string    `gorm:"column:session_token" json:"-"`
	CreatedAt    time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	Category string `gorm:"not null" json:"category"`
	// Date is the logical publication date chosen by the author, distinct
	// from the write time. Listings sort on it.
	Date     time.Time `gorm:"type:date;not null;index" json:"date"`
	ImageURL string    `gorm:"column:image_url;not null" json:"image_url"`
	Summary  string    `json:"summary"`
	Content  string    `gorm:"type:text" json:"content"`
	Tags     []string  `gorm:"serializer:json" json:"tags"`
	// Slug is recomputed from Title on every save; two posts may share one.
	Slug      string    `gorm:"index;not null" json:"slug"`
	Author    string    `gorm:"not null;index" json:"author"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}
