package groundcheck

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// ValidationError lists the required fields a task is missing.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports a referenced division, foreman or task that does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Field names reported by Validate.
const (
	FieldClerkName   = "clerkName"
	FieldDivisionID  = "divisionId"
	FieldForemanID   = "foremanId"
	FieldAttachments = "attachments"
)

// Validate checks the fields a task needs before it can be saved. It returns
// a *ValidationError naming every missing field, or nil.
func Validate(t *Task) error {
	var missing []string
	if strings.TrimSpace(t.ClerkName) == "" {
		missing = append(missing, FieldClerkName)
	}
	if strings.TrimSpace(t.DivisionID) == "" {
		missing = append(missing, FieldDivisionID)
	}
	if strings.TrimSpace(t.ForemanID) == "" {
		missing = append(missing, FieldForemanID)
	}
	if len(t.PhotoAttachments()) == 0 {
		missing = append(missing, FieldAttachments)
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
