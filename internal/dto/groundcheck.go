package dto

import (
	"time"

	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/models"
	"github.com/spge/groundcheck/internal/utils"
)

// AttachmentRequest is one TPH photo in a create request.
type AttachmentRequest struct {
	TPHNumber int    `json:"tphNumber"`
	PhotoData string `json:"photoData"`
}

// CreateTaskRequest is the body of POST /api/groundcheck.
type CreateTaskRequest struct {
	ClerkName   string              `json:"clerkName"`
	DivisionID  string              `json:"divisionId"`
	ForemanID   string              `json:"foremanId"`
	Notes       string              `json:"notes"`
	Attachments []AttachmentRequest `json:"attachments"`
	Signature   string              `json:"signature,omitempty"`
	CreatedBy   string              `json:"createdBy,omitempty"`
}

// NewCreateTaskRequest builds the request for a draft.
func NewCreateTaskRequest(t *groundcheck.Task, createdBy string) CreateTaskRequest {
	req := CreateTaskRequest{
		ClerkName:  t.ClerkName,
		DivisionID: t.DivisionID,
		ForemanID:  t.ForemanID,
		Notes:      t.Notes,
		Signature:  t.Signature,
		CreatedBy:  createdBy,
	}
	for _, a := range t.Attachments {
		req.Attachments = append(req.Attachments, AttachmentRequest{TPHNumber: a.TPHNumber, PhotoData: a.PhotoData})
	}
	return req
}

// SignatureRequest is the body of PUT /api/groundcheck/:id/signature.
type SignatureRequest struct {
	Signature string `json:"signature" binding:"required"`
}

// TaskResponse wraps a single task.
type TaskResponse struct {
	Success bool             `json:"success"`
	Task    groundcheck.Task `json:"task"`
}

// TaskSummary is a task in list responses: no image data.
type TaskSummary struct {
	ID              string             `json:"id"`
	ClerkName       string             `json:"clerkName"`
	DivisionID      string             `json:"divisionId"`
	DivisionCode    string             `json:"divisionCode"`
	ForemanID       string             `json:"foremanId"`
	ForemanCode     string             `json:"foremanCode"`
	Notes           string             `json:"notes"`
	Status          groundcheck.Status `json:"status"`
	AttachmentCount int                `json:"attachmentCount"`
	Completed       bool               `json:"completed"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// TaskListResponse is a page of task summaries, newest first.
type TaskListResponse struct {
	Success    bool                     `json:"success"`
	Tasks      []TaskSummary            `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskDTO converts a task model, with attachments preloaded, to the
// domain task.
func ToTaskDTO(t models.GroundCheckTask) groundcheck.Task {
	task := groundcheck.Task{
		ID:           t.ID,
		ClerkName:    t.ClerkName,
		DivisionID:   t.DivisionID,
		DivisionCode: t.DivisionCode,
		ForemanID:    t.ForemanID,
		ForemanCode:  t.ForemanCode,
		Notes:        t.Notes,
		Status:       t.Status,
		Signature:    t.Signature,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		Attachments:  make([]groundcheck.Attachment, len(t.Attachments)),
	}
	for i, a := range t.Attachments {
		task.Attachments[i] = groundcheck.Attachment{ID: a.ID, TPHNumber: a.TPHNumber, PhotoData: a.PhotoData}
	}
	return task
}

// ToTaskSummary converts a task model; attachmentCount and signed are passed
// separately so listings need not load image data.
func ToTaskSummary(t models.GroundCheckTask, attachmentCount int, signed bool) TaskSummary {
	return TaskSummary{
		ID:              t.ID,
		ClerkName:       t.ClerkName,
		DivisionID:      t.DivisionID,
		DivisionCode:    t.DivisionCode,
		ForemanID:       t.ForemanID,
		ForemanCode:     t.ForemanCode,
		Notes:           t.Notes,
		Status:          t.Status,
		AttachmentCount: attachmentCount,
		Completed:       signed,
		CreatedAt:       t.CreatedAt,
	}
}
