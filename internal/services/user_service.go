package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spge/groundcheck/internal/constants"
	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/models"
	"github.com/spge/groundcheck/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrCannotDeleteSelf     = errors.New("cannot delete the signed-in user")
)

// UserService manages accounts on behalf of administrators.
type UserService struct {
	userRepo     repository.UserRepository
	divisionRepo repository.DivisionRepository
}

func NewUserService(userRepo repository.UserRepository, divisionRepo repository.DivisionRepository) *UserService {
	return &UserService{
		userRepo:     userRepo,
		divisionRepo: divisionRepo,
	}
}

// CreateUserInput represents the information needed to create an account.
type CreateUserInput struct {
	Username   string
	Password   string
	Name       string
	Role       groundcheck.Role
	DivisionID *string
}

// UpdateUserInput changes the non-empty fields of an account.
type UpdateUserInput struct {
	Password   string
	Name       string
	Role       groundcheck.Role
	DivisionID *string
}

func (s *UserService) List() ([]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Create stores a new account with a bcrypt password hash. Role defaults to
// clerk.
func (s *UserService) Create(input CreateUserInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if err := s.checkDivision(input.DivisionID); err != nil {
		return nil, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = groundcheck.RoleClerk
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		Role:         role,
		DivisionID:   input.DivisionID,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserService) Update(id string, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.Password != "" {
		if len(input.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hash, err := hashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if input.Role != "" {
		user.Role = input.Role
	}
	if input.DivisionID != nil {
		if *input.DivisionID == "" {
			user.DivisionID = nil
		} else {
			if err := s.checkDivision(input.DivisionID); err != nil {
				return nil, err
			}
			user.DivisionID = input.DivisionID
		}
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes an account. actorID is the signed-in administrator, who
// cannot remove themselves.
func (s *UserService) Delete(actorID, id string) error {
	if actorID == id {
		return ErrCannotDeleteSelf
	}
	if err := s.userRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *UserService) checkDivision(divisionID *string) error {
	if divisionID == nil || *divisionID == "" {
		return nil
	}
	if _, err := s.divisionRepo.FindByID(*divisionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDivisionNotFound
		}
		return fmt.Errorf("failed to find division: %w", err)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hash), nil
}
