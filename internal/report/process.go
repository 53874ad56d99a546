package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/metrics"
	"go.uber.org/zap"
)

// ProcessRenderer runs `Command... <input.json> <output.pdf>`. Every call
// gets its own temp directory, which is removed on return.
type ProcessRenderer struct {
	Command []string
	TempDir string
	Timeout time.Duration
	Log     *zap.Logger

	now func() time.Time
}

func (r *ProcessRenderer) Render(ctx context.Context, task *groundcheck.Task) (*Document, error) {
	if len(r.Command) == 0 {
		return nil, errors.New("no render command configured")
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()
	defer func() {
		metrics.RenderDuration.WithLabelValues("process").Observe(time.Since(start).Seconds())
	}()

	dir, err := os.MkdirTemp(r.TempDir, "sgs-render-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create render dir: %w", err)
	}
	defer os.RemoveAll(dir)

	payload, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("failed to encode task: %w", err)
	}
	input := filepath.Join(dir, "task.json")
	output := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(input, payload, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write render input: %w", err)
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := append(append([]string(nil), r.Command[1:]...), input, output)
	cmd := exec.CommandContext(ctx, r.Command[0], args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if err := os.Remove(input); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to remove render input", zap.String("path", input), zap.Error(err))
	}
	if runErr != nil {
		metrics.Renders.WithLabelValues("process", "failed").Inc()
		rerr := &RenderError{ExitCode: -1, Stderr: stderr.String(), Err: runErr}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			rerr.ExitCode = exitErr.ExitCode()
		}
		log.Warn("render process failed",
			zap.String("task_id", task.ID),
			zap.Int("exit_code", rerr.ExitCode),
			zap.String("stderr", rerr.Stderr))
		return nil, rerr
	}

	data, err := os.ReadFile(output)
	if err != nil {
		metrics.Renders.WithLabelValues("process", "failed").Inc()
		return nil, &RenderError{Stderr: stderr.String(), Err: fmt.Errorf("no output produced: %w", err)}
	}
	if err := os.Remove(output); err != nil {
		log.Warn("failed to remove render output", zap.String("path", output), zap.Error(err))
	}

	metrics.Renders.WithLabelValues("process", "ok").Inc()
	return &Document{
		Filename:    Filename(task, "pdf", r.clock()),
		ContentType: ContentTypePDF,
		Data:        data,
	}, nil
}

func (r *ProcessRenderer) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}
