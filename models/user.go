package models

import "gorm.io/gorm"

// User is an account that can register teams and, when IsAdmin is set,
// verify or reject submissions.
type User struct {
	gorm.Model
	Username     string  `gorm:"uniqueIndex;not null" json:"username"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	IsAdmin      bool    `gorm:"default:false" json:"is_admin"`
	Event        *string `json:"event,omitempty"` // competition the account signed up for
}
