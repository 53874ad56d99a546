package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/spge/groundcheck/internal/groundcheck"
	"gorm.io/gorm"
)

type User struct {
	ID           string           `gorm:"primarykey;type:varchar(36)" json:"id"`
	Username     string           `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	PasswordHash string           `gorm:"type:varchar(255);not null" json:"-"`
	Name         string           `gorm:"type:varchar(255);not null" json:"name"`
	Role         groundcheck.Role `gorm:"type:varchar(20);not null;default:'clerk'" json:"role"`
	DivisionID   *string          `gorm:"type:varchar(36);index" json:"divisionId"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
