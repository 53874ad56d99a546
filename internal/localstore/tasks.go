package localstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spge/groundcheck/internal/groundcheck"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type taskRecord struct {
	ID           string `gorm:"primaryKey;type:varchar(64)"`
	ClerkName    string `gorm:"not null"`
	DivisionID   string `gorm:"not null"`
	DivisionCode string `gorm:"not null"`
	ForemanID    string `gorm:"not null"`
	ForemanCode  string `gorm:"not null"`
	Notes        string
	Status       string `gorm:"not null"`
	Attachments  datatypes.JSONSlice[groundcheck.Attachment]
	Signature    string
	Synced       bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

func (taskRecord) TableName() string { return "tasks" }

func toTaskRecord(t *groundcheck.Task, synced bool) taskRecord {
	return taskRecord{
		ID:           t.ID,
		ClerkName:    t.ClerkName,
		DivisionID:   t.DivisionID,
		DivisionCode: t.DivisionCode,
		ForemanID:    t.ForemanID,
		ForemanCode:  t.ForemanCode,
		Notes:        t.Notes,
		Status:       string(t.Status),
		Attachments:  datatypes.JSONSlice[groundcheck.Attachment](append([]groundcheck.Attachment(nil), t.Attachments...)),
		Signature:    t.Signature,
		Synced:       synced,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (r taskRecord) toTask() *groundcheck.Task {
	return &groundcheck.Task{
		ID:           r.ID,
		ClerkName:    r.ClerkName,
		DivisionID:   r.DivisionID,
		DivisionCode: r.DivisionCode,
		ForemanID:    r.ForemanID,
		ForemanCode:  r.ForemanCode,
		Notes:        r.Notes,
		Status:       groundcheck.Status(r.Status),
		Attachments:  append([]groundcheck.Attachment(nil), r.Attachments...),
		Signature:    r.Signature,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// StoredTask is a task as kept on the device.
type StoredTask struct {
	Task   *groundcheck.Task
	Synced bool
}

// TaskStore is the history of tasks committed on this device. The
// submission workflow only inserts and updates.
type TaskStore struct {
	mu sync.Mutex
	db *gorm.DB
}

// Save inserts or replaces the task keyed by its id.
func (s *TaskStore) Save(ctx context.Context, t *groundcheck.Task, synced bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := toTaskRecord(t, synced)
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("failed to save task %s: %w", t.ID, err)
	}
	return nil
}

// Get returns the stored task or a *groundcheck.NotFoundError.
func (s *TaskStore) Get(ctx context.Context, id string) (*StoredTask, error) {
	var rec taskRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &groundcheck.NotFoundError{Kind: "task", ID: id}
		}
		return nil, fmt.Errorf("failed to load task %s: %w", id, err)
	}
	return &StoredTask{Task: rec.toTask(), Synced: rec.Synced}, nil
}

// List returns every stored task, newest first.
func (s *TaskStore) List(ctx context.Context) ([]StoredTask, error) {
	var recs []taskRecord
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	out := make([]StoredTask, 0, len(recs))
	for _, rec := range recs {
		out = append(out, StoredTask{Task: rec.toTask(), Synced: rec.Synced})
	}
	return out, nil
}

// SetSignature attaches a signature to a stored task.
func (s *TaskStore) SetSignature(ctx context.Context, id, signature string) (*groundcheck.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec taskRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rec, "id = ?", id).Error; err != nil {
			return err
		}
		rec.Signature = signature
		rec.UpdatedAt = time.Now()
		return tx.Save(&rec).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &groundcheck.NotFoundError{Kind: "task", ID: id}
		}
		return nil, fmt.Errorf("failed to sign task %s: %w", id, err)
	}
	return rec.toTask(), nil
}

// Count returns the number of stored tasks.
func (s *TaskStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&taskRecord{}).Count(&n).Error
	return n, err
}
