// Package report turns a saved ground check into a downloadable document,
// preferring an external rendering process and falling back to HTML built
// in-process.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spge/groundcheck/internal/groundcheck"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Document is a rendered report held in memory.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Renderer produces a document for a task. Implementations must not modify
// the task.
type Renderer interface {
	Render(ctx context.Context, task *groundcheck.Task) (*Document, error)
}

// Resolver looks up current division and foreman records.
type Resolver interface {
	Division(ctx context.Context, id string) (*groundcheck.Division, error)
	Foreman(ctx context.Context, id string) (*groundcheck.Foreman, error)
}

// RenderError is a failed run of the rendering process.
type RenderError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *RenderError) Error() string {
	msg := fmt.Sprintf("render process failed (exit %d)", e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *RenderError) Unwrap() error { return e.Err }

// Filename builds GroundCheck_<divisionCode>_<foremanCode>_<YYYY-MM-DD>.<ext>.
// The date is the UTC date of now.
func Filename(task *groundcheck.Task, ext string, now time.Time) string {
	return fmt.Sprintf("GroundCheck_%s_%s_%s.%s",
		sanitize(task.DivisionCode), sanitize(task.ForemanCode), now.UTC().Format("2006-01-02"), ext)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '"', '\n', '\r':
			return '-'
		}
		return r
	}, s)
}
