package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Division struct {
	ID        string    `gorm:"primarykey;type:varchar(36)" json:"id"`
	Code      string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Foremen []Foreman `gorm:"foreignKey:DivisionID" json:"-"`
}

func (d *Division) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// Foreman codes are unique per division, not globally.
type Foreman struct {
	ID         string    `gorm:"primarykey;type:varchar(36)" json:"id"`
	Code       string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_foremen_division_code" json:"code"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	DivisionID string    `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_foremen_division_code" json:"divisionId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Foreman) TableName() string { return "foremen" }

func (f *Foreman) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
