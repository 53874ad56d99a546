package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spge/groundcheck/internal/dto"
	apierrors "github.com/spge/groundcheck/internal/errors"
	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/middleware"
	"github.com/spge/groundcheck/internal/services"
	"github.com/spge/groundcheck/internal/utils"
)

// GroundCheckHandler serves ground check tasks. Routes with an :id run
// behind middleware.RequireTask.
type GroundCheckHandler struct {
	taskService *services.GroundCheckService
}

func NewGroundCheckHandler(taskService *services.GroundCheckService) *GroundCheckHandler {
	return &GroundCheckHandler{taskService: taskService}
}

// ListTasks returns a page of task summaries, newest first.
func (h *GroundCheckHandler) ListTasks(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.List(params)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Success: true,
		Tasks:   tasks,
		Pagination: params.Response(total),
	})
}

func (h *GroundCheckHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}
	c.JSON(http.StatusOK, dto.TaskResponse{Success: true, Task: *task})
}

// CreateTask saves a ground check submitted by a field device.
func (h *GroundCheckHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	createdBy, _ := middleware.GetUserID(c)
	input := services.CreateTaskInput{
		ClerkName:  req.ClerkName,
		DivisionID: req.DivisionID,
		ForemanID:  req.ForemanID,
		Notes:      req.Notes,
		Signature:  req.Signature,
		CreatedBy:  createdBy,
	}
	for _, a := range req.Attachments {
		input.Attachments = append(input.Attachments, groundcheck.Attachment{TPHNumber: a.TPHNumber, PhotoData: a.PhotoData})
	}

	task, err := h.taskService.Create(c.Request.Context(), input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.TaskResponse{Success: true, Task: *task})
}

func (h *GroundCheckHandler) UpdateSignature(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	var req dto.SignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Signature is required")
		return
	}

	updated, err := h.taskService.Sign(task.ID, req.Signature)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TaskResponse{Success: true, Task: *updated})
}

func (h *GroundCheckHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.NotFound(c, "Task not found")
		return
	}

	if err := h.taskService.Delete(task.ID); err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Task deleted"})
}

func respondTaskError(c *gin.Context, err error) {
	var verr *groundcheck.ValidationError
	switch {
	case errors.As(err, &verr):
		apierrors.ValidationFailed(c, verr.Error(), verr.Missing)
	case errors.Is(err, services.ErrInvalidReference),
		errors.Is(err, services.ErrInvalidImage):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
