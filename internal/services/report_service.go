package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/report"
	"go.uber.org/zap"
)

var ErrRenderFailed = errors.New("failed to render report")

// ReportService renders the PDF for a task payload sent by a client.
type ReportService struct {
	renderer report.Renderer
	resolver report.Resolver
	log      *zap.Logger
}

func NewReportService(renderer report.Renderer, resolver report.Resolver, log *zap.Logger) *ReportService {
	return &ReportService{
		renderer: renderer,
		resolver: resolver,
		log:      log,
	}
}

// Generate renders task. Missing division or foreman codes are filled from
// the current reference data when the ids still resolve; the payload is not
// modified.
func (s *ReportService) Generate(ctx context.Context, task *groundcheck.Task) (*report.Document, error) {
	t := task.Clone()
	if t.DivisionCode == "" && t.DivisionID != "" {
		if d, err := s.resolver.Division(ctx, t.DivisionID); err == nil {
			t.DivisionCode = d.Code
		}
	}
	if t.ForemanCode == "" && t.ForemanID != "" {
		if f, err := s.resolver.Foreman(ctx, t.ForemanID); err == nil {
			t.ForemanCode = f.Code
		}
	}

	doc, err := s.renderer.Render(ctx, t)
	if err != nil {
		s.log.Error("Report rendering failed", zap.String("task_id", t.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	return doc, nil
}
