package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spge/groundcheck/internal/constants"
	"github.com/spge/groundcheck/internal/dto"
	apierrors "github.com/spge/groundcheck/internal/errors"
	"github.com/spge/groundcheck/internal/middleware"
	"github.com/spge/groundcheck/internal/services"
)

// UserHandler serves the administrator's account management.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List()
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserListResponse{Success: true, Users: dto.ToUserDTOs(users)})
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Create(services.CreateUserInput{
		Username:   req.Username,
		Password:   req.Password,
		Name:       req.Name,
		Role:       req.Role,
		DivisionID: req.DivisionID,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.UserResponse{Success: true, User: dto.ToUserDTO(*user)})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Update(c.Param("id"), services.UpdateUserInput{
		Password:   req.Password,
		Name:       req.Name,
		Role:       req.Role,
		DivisionID: req.DivisionID,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserResponse{Success: true, User: dto.ToUserDTO(*user)})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	actorID, _ := middleware.GetUserID(c)
	if err := h.userService.Delete(actorID, c.Param("id")); err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "User deleted"})
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrDivisionNotFound):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrCannotDeleteSelf):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
