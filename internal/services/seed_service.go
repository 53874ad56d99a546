package services

import (
	"fmt"

	"github.com/spge/groundcheck/internal/constants"
	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/models"
	"github.com/spge/groundcheck/internal/repository"
)

// SeedService creates the initial administrator and reference data.
type SeedService struct {
	userRepo     repository.UserRepository
	divisionRepo repository.DivisionRepository
	foremanRepo  repository.ForemanRepository
}

func NewSeedService(userRepo repository.UserRepository, divisionRepo repository.DivisionRepository, foremanRepo repository.ForemanRepository) *SeedService {
	return &SeedService{
		userRepo:     userRepo,
		divisionRepo: divisionRepo,
		foremanRepo:  foremanRepo,
	}
}

// InitStatus reports the row counts the seed looks at.
type InitStatus struct {
	Users     int64
	Divisions int64
	Foremen   int64
}

// Initialized is true once there is at least one user and one division.
func (s InitStatus) Initialized() bool {
	return s.Users > 0 && s.Divisions > 0
}

func (s *SeedService) Status() (*InitStatus, error) {
	var status InitStatus
	var err error
	if status.Users, err = s.userRepo.Count(); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if status.Divisions, err = s.divisionRepo.Count(); err != nil {
		return nil, fmt.Errorf("failed to count divisions: %w", err)
	}
	if status.Foremen, err = s.foremanRepo.Count(); err != nil {
		return nil, fmt.Errorf("failed to count foremen: %w", err)
	}
	return &status, nil
}

// Seed creates the default administrator when there are no users, and the
// default divisions with their foremen when there are no divisions. It
// reports whether anything was created; running it again is a no-op.
func (s *SeedService) Seed() (bool, error) {
	status, err := s.Status()
	if err != nil {
		return false, err
	}

	created := false
	if status.Users == 0 {
		hash, err := hashPassword(constants.DefaultAdminPassword)
		if err != nil {
			return false, err
		}
		admin := &models.User{
			Username:     constants.DefaultAdminUsername,
			PasswordHash: hash,
			Name:         constants.DefaultAdminName,
			Role:         groundcheck.RoleAdmin,
		}
		if err := s.userRepo.Create(admin); err != nil {
			return false, fmt.Errorf("failed to create admin: %w", err)
		}
		created = true
	}

	if status.Divisions == 0 {
		divisions, foremen := groundcheck.DefaultReference()
		for _, d := range divisions {
			if err := s.divisionRepo.Create(&models.Division{ID: d.ID, Code: d.Code, Name: d.Name}); err != nil {
				return false, fmt.Errorf("failed to create division %s: %w", d.Code, err)
			}
		}
		for _, f := range foremen {
			if err := s.foremanRepo.Create(&models.Foreman{ID: f.ID, Code: f.Code, Name: f.Name, DivisionID: f.DivisionID}); err != nil {
				return false, fmt.Errorf("failed to create foreman %s: %w", f.Code, err)
			}
		}
		created = true
	}

	return created, nil
}
