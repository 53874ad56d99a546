package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/spge/groundcheck/internal/constants"
	"github.com/spge/groundcheck/internal/dto"
	apierrors "github.com/spge/groundcheck/internal/errors"
	"github.com/spge/groundcheck/internal/middleware"
	"github.com/spge/groundcheck/internal/models"
	"github.com/spge/groundcheck/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login checks the credentials and stores the user id and role in the
// session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Username and password are required")
		return
	}

	user, err := h.authService.Login(services.LoginInput{Username: req.Username, Password: req.Password})
	if err != nil {
		respondAuthError(c, err)
		return
	}
	if err := startSession(sessions.Default(c), user); err != nil {
		_ = c.Error(err)
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.UserResponse{Success: true, User: dto.ToUserDTO(*user)})
}

// startSession drops whatever the cookie held before and records user.
func startSession(session sessions.Session, user *models.User) error {
	session.Clear()
	session.Set(constants.ContextKeyUserID, user.ID)
	session.Set(constants.ContextKeyUserRole, string(user.Role))
	return session.Save()
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		_ = c.Error(err)
		apierrors.InternalError(c, "Failed to logout")
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Logged out"})
}

func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserResponse{Success: true, User: dto.ToUserDTO(*user)})
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	case errors.Is(err, services.ErrUserNotFound):
		// The session outlived its account.
		apierrors.Unauthorized(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
