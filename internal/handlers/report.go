package handlers

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/spge/groundcheck/internal/errors"
	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GeneratePDF renders the posted task and returns it as an attachment.
func (h *ReportHandler) GeneratePDF(c *gin.Context) {
	var task groundcheck.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		apierrors.BadRequest(c, "Invalid task payload")
		return
	}

	doc, err := h.reportService.Generate(c.Request.Context(), &task)
	if err != nil {
		_ = c.Error(err)
		apierrors.RenderFailed(c)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}
