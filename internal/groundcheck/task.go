// Package groundcheck holds the domain types shared by the field client, the
// API server and the report renderers: divisions, foremen, ground check tasks
// and their TPH attachments.
package groundcheck

import (
	"strings"
	"time"
)

type Status string

const (
	StatusDraft Status = "draft"
	StatusSaved Status = "saved"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleClerk Role = "clerk"
)

// Division is an organizational unit of the plantation.
type Division struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Foreman (kemandoran) is a subdivision of a Division. Its code is unique
// only within the division.
type Foreman struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	DivisionID string `json:"divisionId"`
}

// User is the profile of an authenticated account. It never carries the
// password hash.
type User struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Name       string  `json:"name"`
	Role       Role    `json:"role"`
	DivisionID *string `json:"divisionId,omitempty"`
}

// Attachment is the photographic evidence for one TPH. PhotoData is an image
// data URL; an empty string means the slot has no photo yet.
type Attachment struct {
	ID        string `json:"id"`
	TPHNumber int    `json:"tphNumber"`
	PhotoData string `json:"photoData"`
}

// HasPhoto reports whether the attachment carries image data.
func (a Attachment) HasPhoto() bool {
	return strings.TrimSpace(a.PhotoData) != ""
}

// Task is a ground check. DivisionCode and ForemanCode are snapshots taken
// when the task is saved and are never re-derived afterwards.
type Task struct {
	ID           string       `json:"id"`
	ClerkName    string       `json:"clerkName"`
	DivisionID   string       `json:"divisionId"`
	DivisionCode string       `json:"divisionCode"`
	ForemanID    string       `json:"foremanId"`
	ForemanCode  string       `json:"foremanCode"`
	Notes        string       `json:"notes"`
	Status       Status       `json:"status"`
	Attachments  []Attachment `json:"attachments"`
	Signature    string       `json:"signature,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// PhotoAttachments returns the attachments that carry a photo, in order.
func (t *Task) PhotoAttachments() []Attachment {
	out := make([]Attachment, 0, len(t.Attachments))
	for _, a := range t.Attachments {
		if a.HasPhoto() {
			out = append(out, a)
		}
	}
	return out
}

// HasSignature reports whether a signature has been attached.
func (t *Task) HasSignature() bool {
	return strings.TrimSpace(t.Signature) != ""
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.Attachments = append([]Attachment(nil), t.Attachments...)
	return &c
}
