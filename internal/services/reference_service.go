package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spge/groundcheck/internal/dto"
	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/models"
	"github.com/spge/groundcheck/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrDivisionNotFound  = errors.New("division not found")
	ErrForemanNotFound   = errors.New("foreman not found")
	ErrDivisionCodeTaken = errors.New("division code already exists")
	ErrForemanCodeTaken  = errors.New("foreman code already exists in this division")
)

// ReferenceService manages divisions and foremen. Lookups by id go through
// the cache and also serve as the report.Resolver for HTML rendering.
type ReferenceService struct {
	divisionRepo repository.DivisionRepository
	foremanRepo  repository.ForemanRepository
	cache        *ReferenceCache
}

func NewReferenceService(divisionRepo repository.DivisionRepository, foremanRepo repository.ForemanRepository, cache *ReferenceCache) *ReferenceService {
	return &ReferenceService{
		divisionRepo: divisionRepo,
		foremanRepo:  foremanRepo,
		cache:        cache,
	}
}

func (s *ReferenceService) ListDivisions() ([]groundcheck.Division, error) {
	divisions, err := s.divisionRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list divisions: %w", err)
	}
	return dto.ToDivisionDTOs(divisions), nil
}

// CreateDivisionInput represents input for creating a division
type CreateDivisionInput struct {
	Code string
	Name string
}

func (s *ReferenceService) CreateDivision(input CreateDivisionInput) (*groundcheck.Division, error) {
	code := strings.TrimSpace(input.Code)
	if _, err := s.divisionRepo.FindByCode(code); err == nil {
		return nil, ErrDivisionCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check division code: %w", err)
	}

	division := &models.Division{Code: code, Name: strings.TrimSpace(input.Name)}
	if err := s.divisionRepo.Create(division); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDivisionCodeTaken
		}
		return nil, fmt.Errorf("failed to create division: %w", err)
	}

	out := dto.ToDivisionDTO(*division)
	s.cache.SetDivision(out)
	return &out, nil
}

// DeleteDivision removes the division and its foremen. Saved tasks keep the
// codes they were saved with.
func (s *ReferenceService) DeleteDivision(id string) error {
	if err := s.divisionRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDivisionNotFound
		}
		return fmt.Errorf("failed to delete division: %w", err)
	}
	s.cache.RemoveDivision(id)
	return nil
}

func (s *ReferenceService) ListForemen(divisionID string) ([]groundcheck.Foreman, error) {
	foremen, err := s.foremanRepo.List(divisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list foremen: %w", err)
	}
	return dto.ToForemanDTOs(foremen), nil
}

// CreateForemanInput represents input for creating a foreman
type CreateForemanInput struct {
	Code       string
	Name       string
	DivisionID string
}

// CreateForeman requires an existing division. The code must be unique
// within that division only.
func (s *ReferenceService) CreateForeman(input CreateForemanInput) (*groundcheck.Foreman, error) {
	if _, err := s.divisionRepo.FindByID(input.DivisionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDivisionNotFound
		}
		return nil, fmt.Errorf("failed to find division: %w", err)
	}

	code := strings.TrimSpace(input.Code)
	if _, err := s.foremanRepo.FindByCode(input.DivisionID, code); err == nil {
		return nil, ErrForemanCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check foreman code: %w", err)
	}

	foreman := &models.Foreman{Code: code, Name: strings.TrimSpace(input.Name), DivisionID: input.DivisionID}
	if err := s.foremanRepo.Create(foreman); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrForemanCodeTaken
		}
		return nil, fmt.Errorf("failed to create foreman: %w", err)
	}

	out := dto.ToForemanDTO(*foreman)
	s.cache.SetForeman(out)
	return &out, nil
}

func (s *ReferenceService) DeleteForeman(id string) error {
	if err := s.foremanRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForemanNotFound
		}
		return fmt.Errorf("failed to delete foreman: %w", err)
	}
	s.cache.RemoveForeman(id)
	return nil
}

// Division resolves a division by id. A missing division yields a
// *groundcheck.NotFoundError.
func (s *ReferenceService) Division(_ context.Context, id string) (*groundcheck.Division, error) {
	if d, ok := s.cache.Division(id); ok {
		return &d, nil
	}
	division, err := s.divisionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &groundcheck.NotFoundError{Kind: "division", ID: id}
		}
		return nil, fmt.Errorf("failed to find division: %w", err)
	}
	out := dto.ToDivisionDTO(*division)
	s.cache.SetDivision(out)
	return &out, nil
}

// Foreman resolves a foreman by id. A missing foreman yields a
// *groundcheck.NotFoundError.
func (s *ReferenceService) Foreman(_ context.Context, id string) (*groundcheck.Foreman, error) {
	if f, ok := s.cache.Foreman(id); ok {
		return &f, nil
	}
	foreman, err := s.foremanRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &groundcheck.NotFoundError{Kind: "foreman", ID: id}
		}
		return nil, fmt.Errorf("failed to find foreman: %w", err)
	}
	out := dto.ToForemanDTO(*foreman)
	s.cache.SetForeman(out)
	return &out, nil
}
