package localstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spge/groundcheck/internal/groundcheck"
	"gorm.io/gorm"
)

type divisionRecord struct {
	ID   string `gorm:"primaryKey;type:varchar(64)"`
	Code string `gorm:"uniqueIndex;not null"`
	Name string `gorm:"not null"`
}

func (divisionRecord) TableName() string { return "divisions" }

type foremanRecord struct {
	ID         string `gorm:"primaryKey;type:varchar(64)"`
	Code       string `gorm:"not null;uniqueIndex:idx_foreman_division_code"`
	Name       string `gorm:"not null"`
	DivisionID string `gorm:"not null;index;uniqueIndex:idx_foreman_division_code"`
}

func (foremanRecord) TableName() string { return "foremen" }

// ReferenceStore caches the division and foreman lists pulled from the
// server so codes can be snapshotted while offline.
type ReferenceStore struct {
	mu sync.Mutex
	db *gorm.DB
}

// ReplaceAll swaps the whole reference set atomically.
func (s *ReferenceStore) ReplaceAll(ctx context.Context, divisions []groundcheck.Division, foremen []groundcheck.Foreman) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&foremanRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear foremen: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&divisionRecord{}).Error; err != nil {
			return fmt.Errorf("failed to clear divisions: %w", err)
		}
		for _, d := range divisions {
			rec := divisionRecord{ID: d.ID, Code: d.Code, Name: d.Name}
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("failed to store division %s: %w", d.Code, err)
			}
		}
		for _, f := range foremen {
			rec := foremanRecord{ID: f.ID, Code: f.Code, Name: f.Name, DivisionID: f.DivisionID}
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("failed to store foreman %s: %w", f.Code, err)
			}
		}
		return nil
	})
}

// SeedDefaults fills an empty store with divisions 1-3 and foremen A-C per
// division, matching what the server seeds on initialization.
func (s *ReferenceStore) SeedDefaults(ctx context.Context) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&divisionRecord{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	divisions, foremen := groundcheck.DefaultReference()
	return s.ReplaceAll(ctx, divisions, foremen)
}

// Divisions returns all divisions ordered by code.
func (s *ReferenceStore) Divisions(ctx context.Context) ([]groundcheck.Division, error) {
	var recs []divisionRecord
	if err := s.db.WithContext(ctx).Order("code").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]groundcheck.Division, 0, len(recs))
	for _, r := range recs {
		out = append(out, groundcheck.Division{ID: r.ID, Code: r.Code, Name: r.Name})
	}
	return out, nil
}

// Foremen returns the foremen of a division, or all foremen when divisionID
// is empty, ordered by division then code.
func (s *ReferenceStore) Foremen(ctx context.Context, divisionID string) ([]groundcheck.Foreman, error) {
	q := s.db.WithContext(ctx).Order("division_id").Order("code")
	if divisionID != "" {
		q = q.Where("division_id = ?", divisionID)
	}
	var recs []foremanRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]groundcheck.Foreman, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toForeman())
	}
	return out, nil
}

func (r foremanRecord) toForeman() groundcheck.Foreman {
	return groundcheck.Foreman{ID: r.ID, Code: r.Code, Name: r.Name, DivisionID: r.DivisionID}
}

// Division looks up one division by id.
func (s *ReferenceStore) Division(ctx context.Context, id string) (*groundcheck.Division, error) {
	var r divisionRecord
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &groundcheck.NotFoundError{Kind: "division", ID: id}
		}
		return nil, err
	}
	return &groundcheck.Division{ID: r.ID, Code: r.Code, Name: r.Name}, nil
}

// Foreman looks up one foreman by id.
func (s *ReferenceStore) Foreman(ctx context.Context, id string) (*groundcheck.Foreman, error) {
	var r foremanRecord
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &groundcheck.NotFoundError{Kind: "foreman", ID: id}
		}
		return nil, err
	}
	f := r.toForeman()
	return &f, nil
}
