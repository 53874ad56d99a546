package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spge/groundcheck/internal/dto"
	apierrors "github.com/spge/groundcheck/internal/errors"
	"github.com/spge/groundcheck/internal/services"
)

// ReferenceHandler serves divisions and foremen.
type ReferenceHandler struct {
	referenceService *services.ReferenceService
}

func NewReferenceHandler(referenceService *services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

// ListDivisions returns every division ordered by code.
func (h *ReferenceHandler) ListDivisions(c *gin.Context) {
	divisions, err := h.referenceService.ListDivisions()
	if err != nil {
		respondReferenceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DivisionListResponse{Success: true, Divisions: divisions})
}

func (h *ReferenceHandler) CreateDivision(c *gin.Context) {
	var req dto.CreateDivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Code and name are required")
		return
	}

	division, err := h.referenceService.CreateDivision(services.CreateDivisionInput{Code: req.Code, Name: req.Name})
	if err != nil {
		respondReferenceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.DivisionResponse{Success: true, Division: *division})
}

func (h *ReferenceHandler) DeleteDivision(c *gin.Context) {
	if err := h.referenceService.DeleteDivision(c.Param("id")); err != nil {
		respondReferenceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Division deleted"})
}

// ListForemen returns foremen, optionally only those of ?divisionId=.
func (h *ReferenceHandler) ListForemen(c *gin.Context) {
	foremen, err := h.referenceService.ListForemen(c.Query("divisionId"))
	if err != nil {
		respondReferenceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ForemanListResponse{Success: true, Foremen: foremen})
}

func (h *ReferenceHandler) CreateForeman(c *gin.Context) {
	var req dto.CreateForemanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Code, name and divisionId are required")
		return
	}

	foreman, err := h.referenceService.CreateForeman(services.CreateForemanInput{
		Code:       req.Code,
		Name:       req.Name,
		DivisionID: req.DivisionID,
	})
	if err != nil {
		respondReferenceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ForemanResponse{Success: true, Foreman: *foreman})
}

func (h *ReferenceHandler) DeleteForeman(c *gin.Context) {
	if err := h.referenceService.DeleteForeman(c.Param("id")); err != nil {
		respondReferenceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Foreman deleted"})
}

func respondReferenceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDivisionCodeTaken),
		errors.Is(err, services.ErrForemanCodeTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrDivisionNotFound) && c.Request.Method == http.MethodPost:
		// Creating a foreman under a missing division is a bad request.
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrDivisionNotFound),
		errors.Is(err, services.ErrForemanNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
