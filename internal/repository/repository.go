package repository

import (
	"github.com/spge/groundcheck/internal/models"
	"github.com/spge/groundcheck/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// List returns every user ordered by username
	List() ([]models.User, error)

	// Update saves all fields of a user
	Update(user *models.User) error

	// Delete removes a user
	Delete(id string) error

	// Count returns the number of users
	Count() (int64, error)
}

// DivisionRepository defines the interface for division data access
type DivisionRepository interface {
	Create(division *models.Division) error
	FindByID(id string) (*models.Division, error)
	FindByCode(code string) (*models.Division, error)

	// List returns every division ordered by code
	List() ([]models.Division, error)

	// Delete removes a division together with its foremen
	Delete(id string) error

	Count() (int64, error)
}

// ForemanRepository defines the interface for foreman data access
type ForemanRepository interface {
	Create(foreman *models.Foreman) error
	FindByID(id string) (*models.Foreman, error)
	FindByCode(divisionID, code string) (*models.Foreman, error)

	// List returns foremen ordered by division then code. An empty
	// divisionID lists all of them.
	List(divisionID string) ([]models.Foreman, error)

	Delete(id string) error
	Count() (int64, error)
}

// GroundCheckRepository defines the interface for ground check task data access
type GroundCheckRepository interface {
	// Create stores a task and its attachments in one transaction
	Create(task *models.GroundCheckTask) error

	// FindByID finds a task with its attachments in capture order
	FindByID(id string) (*models.GroundCheckTask, error)

	// List returns a page of tasks, newest first, without image data
	List(params utils.PaginationParams) ([]TaskListItem, int64, error)

	// UpdateSignature sets the signature of a task
	UpdateSignature(id, signature string) error

	// Delete removes a task and its attachments
	Delete(id string) error
}

// TaskListItem is a task row without image data, plus the number of its
// attachments and whether it has been signed.
type TaskListItem struct {
	Task            models.GroundCheckTask
	AttachmentCount int
	Signed          bool
}
