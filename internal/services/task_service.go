package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spge/groundcheck/internal/dataurl"
	"github.com/spge/groundcheck/internal/dto"
	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/models"
	"github.com/spge/groundcheck/internal/repository"
	"github.com/spge/groundcheck/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrInvalidReference = errors.New("unknown division or foreman")
	ErrInvalidImage     = errors.New("image is not a valid data url")
)

// GroundCheckService handles ground check task business logic
type GroundCheckService struct {
	taskRepo  repository.GroundCheckRepository
	reference *ReferenceService
}

// NewGroundCheckService creates a new GroundCheckService
func NewGroundCheckService(taskRepo repository.GroundCheckRepository, reference *ReferenceService) *GroundCheckService {
	return &GroundCheckService{
		taskRepo:  taskRepo,
		reference: reference,
	}
}

// CreateTaskInput represents input for saving a ground check
type CreateTaskInput struct {
	ClerkName   string
	DivisionID  string
	ForemanID   string
	Notes       string
	Attachments []groundcheck.Attachment
	Signature   string
	CreatedBy   string
}

// Create validates and stores a ground check. Attachments without a photo are
// dropped; the division and foreman codes are snapshotted from the current
// reference data.
func (s *GroundCheckService) Create(ctx context.Context, input CreateTaskInput) (*groundcheck.Task, error) {
	task := groundcheck.Task{
		ClerkName:   strings.TrimSpace(input.ClerkName),
		DivisionID:  input.DivisionID,
		ForemanID:   input.ForemanID,
		Notes:       input.Notes,
		Attachments: input.Attachments,
		Signature:   input.Signature,
	}
	if err := groundcheck.Validate(&task); err != nil {
		return nil, err
	}

	division, err := s.reference.Division(ctx, task.DivisionID)
	if err != nil {
		return nil, referenceError(err)
	}
	foreman, err := s.reference.Foreman(ctx, task.ForemanID)
	if err != nil {
		return nil, referenceError(err)
	}
	if foreman.DivisionID != division.ID {
		return nil, referenceError(&groundcheck.NotFoundError{Kind: "foreman", ID: foreman.ID})
	}

	model := &models.GroundCheckTask{
		ClerkName:    task.ClerkName,
		DivisionID:   division.ID,
		DivisionCode: division.Code,
		ForemanID:    foreman.ID,
		ForemanCode:  foreman.Code,
		Notes:        task.Notes,
		Status:       groundcheck.StatusSaved,
		CreatedBy:    input.CreatedBy,
	}
	for _, a := range task.PhotoAttachments() {
		if _, _, err := dataurl.DecodeImage(a.PhotoData); err != nil {
			return nil, fmt.Errorf("%w: TPH %d", ErrInvalidImage, a.TPHNumber)
		}
		model.Attachments = append(model.Attachments, models.Attachment{TPHNumber: a.TPHNumber, PhotoData: a.PhotoData})
	}
	if strings.TrimSpace(task.Signature) != "" {
		if _, _, err := dataurl.DecodeImage(task.Signature); err != nil {
			return nil, fmt.Errorf("%w: signature", ErrInvalidImage)
		}
		model.Signature = task.Signature
	}

	if err := s.taskRepo.Create(model); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	out := dto.ToTaskDTO(*model)
	return &out, nil
}

func referenceError(err error) error {
	if errors.Is(err, groundcheck.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrInvalidReference, err)
	}
	return err
}

// Get returns a task with all of its attachments.
func (s *GroundCheckService) Get(id string) (*groundcheck.Task, error) {
	task, err := s.taskRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	out := dto.ToTaskDTO(*task)
	return &out, nil
}

// List returns a page of task summaries, newest first.
func (s *GroundCheckService) List(params utils.PaginationParams) ([]dto.TaskSummary, int64, error) {
	items, total, err := s.taskRepo.List(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	summaries := make([]dto.TaskSummary, len(items))
	for i, item := range items {
		summaries[i] = dto.ToTaskSummary(item.Task, item.AttachmentCount, item.Signed)
	}
	return summaries, total, nil
}

// Sign attaches a signature image to a saved task, replacing any previous one.
func (s *GroundCheckService) Sign(id, signature string) (*groundcheck.Task, error) {
	if _, _, err := dataurl.DecodeImage(signature); err != nil {
		return nil, fmt.Errorf("%w: signature", ErrInvalidImage)
	}
	if err := s.taskRepo.UpdateSignature(id, signature); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update signature: %w", err)
	}
	return s.Get(id)
}

func (s *GroundCheckService) Delete(id string) error {
	if err := s.taskRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
