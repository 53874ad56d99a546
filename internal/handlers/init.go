package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spge/groundcheck/internal/dto"
	apierrors "github.com/spge/groundcheck/internal/errors"
	"github.com/spge/groundcheck/internal/services"
	"go.uber.org/zap"
)

// InitHandler reports and performs first-run seeding.
type InitHandler struct {
	seedService *services.SeedService
	log         *zap.Logger
}

func NewInitHandler(seedService *services.SeedService, log *zap.Logger) *InitHandler {
	return &InitHandler{seedService: seedService, log: log}
}

func (h *InitHandler) Status(c *gin.Context) {
	status, err := h.seedService.Status()
	if err != nil {
		_ = c.Error(err)
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, toInitStatus(status))
}

// Seed creates the default administrator and reference data when missing.
// It answers 201 when something was created and 200 otherwise.
func (h *InitHandler) Seed(c *gin.Context) {
	created, err := h.seedService.Seed()
	if err != nil {
		_ = c.Error(err)
		apierrors.InternalError(c, "Failed to initialize database")
		return
	}

	status, err := h.seedService.Status()
	if err != nil {
		_ = c.Error(err)
		apierrors.InternalError(c, "")
		return
	}

	code := http.StatusOK
	if created {
		h.log.Info("Database seeded",
			zap.Int64("users", status.Users),
			zap.Int64("divisions", status.Divisions),
			zap.Int64("foremen", status.Foremen))
		code = http.StatusCreated
	}
	c.JSON(code, toInitStatus(status))
}

func toInitStatus(s *services.InitStatus) dto.InitStatusResponse {
	return dto.InitStatusResponse{
		Success:     true,
		Initialized: s.Initialized(),
		Users:       s.Users,
		Divisions:   s.Divisions,
		Foremen:     s.Foremen,
	}
}
