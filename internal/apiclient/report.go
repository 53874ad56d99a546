package apiclient

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/report"
)

// GeneratePDF asks the server to render task.
func (c *Client) GeneratePDF(ctx context.Context, task *groundcheck.Task) (*report.Document, error) {
	resp, err := c.send(ctx, http.MethodPost, "/api/generate-pdf", task)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	doc := &report.Document{
		Filename:    report.Filename(task, "pdf", time.Now()),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		doc.Filename = params["filename"]
	}
	return doc, nil
}

// ReportRenderer renders through the server's generate-pdf endpoint.
type ReportRenderer struct {
	Client *Client
}

func (r ReportRenderer) Render(ctx context.Context, task *groundcheck.Task) (*report.Document, error) {
	return r.Client.GeneratePDF(ctx, task)
}
