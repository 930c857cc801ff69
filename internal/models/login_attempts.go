package models

import (
	"time"
)

// LoginAttempt is one row of the append-only login audit trail. The
// submitted username is recorded as-is whether or not it matches an
// account; the password never is.
type LoginAttempt struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"not null;index" json:"username"`
	IPAddress string    `gorm:"not null;index" json:"ip_address"`
	Success   bool      `gorm:"not null" json:"success"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}
