package dto

import (
	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/models"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Username   string           `json:"username" binding:"required,min=3,max=100"`
	Password   string           `json:"password" binding:"required"`
	Name       string           `json:"name" binding:"required"`
	Role       groundcheck.Role `json:"role" binding:"omitempty,oneof=admin clerk"`
	DivisionID *string          `json:"divisionId"`
}

// UpdateUserRequest is the body of PUT /api/users/:id. Empty fields are left
// unchanged.
type UpdateUserRequest struct {
	Password   string           `json:"password"`
	Name       string           `json:"name"`
	Role       groundcheck.Role `json:"role" binding:"omitempty,oneof=admin clerk"`
	DivisionID *string          `json:"divisionId"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	Success bool             `json:"success"`
	User    groundcheck.User `json:"user"`
}

// UserListResponse wraps the user list.
type UserListResponse struct {
	Success bool               `json:"success"`
	Users   []groundcheck.User `json:"users"`
}

// ToUserDTO converts a User model to its public profile. The password hash
// never leaves the model.
func ToUserDTO(user models.User) groundcheck.User {
	return groundcheck.User{
		ID:         user.ID,
		Username:   user.Username,
		Name:       user.Name,
		Role:       user.Role,
		DivisionID: user.DivisionID,
	}
}

func ToUserDTOs(users []models.User) []groundcheck.User {
	out := make([]groundcheck.User, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}
