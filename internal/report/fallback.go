package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/spge/groundcheck/internal/groundcheck"
	"go.uber.org/zap"
)

// FallbackRenderer tries Primary and, on any error, Fallback. It fails only
// when both do.
type FallbackRenderer struct {
	Primary  Renderer
	Fallback Renderer
	Log      *zap.Logger
}

func (r *FallbackRenderer) Render(ctx context.Context, task *groundcheck.Task) (*Document, error) {
	if r.Primary != nil {
		doc, err := r.Primary.Render(ctx, task)
		if err == nil {
			return doc, nil
		}
		if r.Log != nil {
			r.Log.Warn("primary renderer failed, falling back",
				zap.String("task_id", task.ID), zap.Error(err))
		}
		fdoc, ferr := r.Fallback.Render(ctx, task)
		if ferr != nil {
			return nil, fmt.Errorf("all renderers failed: %w", errors.Join(err, ferr))
		}
		return fdoc, nil
	}
	return r.Fallback.Render(ctx, task)
}
