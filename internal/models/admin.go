package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Admin is an administrator account. Only the email address is read by the
// complaint core, for building the notification recipient list; the password
// hash is used by the auth boundary.
type Admin struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:text;not null" json:"-"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BeforeCreate generates a new UUID for the admin if the ID is unset.
func (a *Admin) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}
