package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/spge/groundcheck/internal/groundcheck"
	"gorm.io/gorm"
)

// GroundCheckTask keeps DivisionCode and ForemanCode as they were when the
// task was saved. DivisionID and ForemanID are deliberately not foreign keys
// so the task outlives its reference rows.
type GroundCheckTask struct {
	ID           string             `gorm:"primarykey;type:varchar(36)" json:"id"`
	ClerkName    string             `gorm:"type:varchar(255);not null" json:"clerkName"`
	DivisionID   string             `gorm:"type:varchar(36);not null;index" json:"divisionId"`
	DivisionCode string             `gorm:"type:varchar(20);not null" json:"divisionCode"`
	ForemanID    string             `gorm:"type:varchar(36);not null;index" json:"foremanId"`
	ForemanCode  string             `gorm:"type:varchar(20);not null" json:"foremanCode"`
	Notes        string             `gorm:"type:text" json:"notes"`
	Status       groundcheck.Status `gorm:"type:varchar(20);not null;default:'saved'" json:"status"`
	Signature    string             `gorm:"size:16777216" json:"signature,omitempty"`
	CreatedBy    string             `gorm:"type:varchar(36);index" json:"createdBy"`
	CreatedAt    time.Time          `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`

	// Relations
	Attachments []Attachment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"attachments"`
}

func (GroundCheckTask) TableName() string { return "ground_check_tasks" }

func (t *GroundCheckTask) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

type Attachment struct {
	ID        string `gorm:"primarykey;type:varchar(36)" json:"id"`
	TaskID    string `gorm:"type:varchar(36);not null;index" json:"-"`
	Position  int    `gorm:"not null" json:"-"`
	TPHNumber int    `gorm:"not null" json:"tphNumber"`
	PhotoData string `gorm:"size:16777216;not null" json:"photoData"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
