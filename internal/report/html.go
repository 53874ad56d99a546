package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/metrics"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Laporan Ground Check</title>
  <style>
    body { font-family: Arial, sans-serif; padding: 20px; }
    .header { text-align: center; margin-bottom: 30px; }
    .logo { font-size: 24px; font-weight: bold; color: #f97316; }
    .label { font-weight: bold; color: #666; }
    .photos { display: flex; flex-wrap: wrap; gap: 10px; }
    .photo { width: 150px; height: 150px; object-fit: cover; border: 1px solid #ddd; }
    .signature { margin-top: 50px; text-align: center; }
    .signature-img { max-width: 200px; max-height: 100px; }
    .signature-line { border-top: 1px solid #000; width: 200px; margin: 10px auto; }
    .footer { margin-top: 50px; text-align: center; font-size: 12px; color: #999; }
  </style>
</head>
<body>
  <div class="header">
    <div class="logo">SGS - SPGE Groundcheck System</div>
    <div class="title">Laporan Ground Check - QC Buah</div>
  </div>
  <div class="section" id="metadata">
    <p><span class="label">Tanggal:</span> {{.Date}}</p>
    <p><span class="label">Nama Krani:</span> {{.ClerkName}}</p>
    <p><span class="label">Divisi:</span> {{.Division}}</p>
    <p><span class="label">Kemandoran:</span> {{.Foreman}}</p>
  </div>
  <div class="section" id="attachments">
    <h3>Dokumentasi TPH</h3>
    <div class="photos">
{{- range .Attachments}}
      <div class="tph">
        <p>TPH {{.Number}}</p>
        {{if .Src}}<img src="{{.Src}}" class="photo" alt="TPH {{.Number}}">{{else}}<p>Tidak ada foto</p>{{end}}
      </div>
{{- end}}
    </div>
  </div>
{{- if .Notes}}
  <div class="section" id="notes">
    <h3>Catatan (NB)</h3>
    <p>{{.Notes}}</p>
  </div>
{{- end}}
{{- if .Signature}}
  <div class="signature" id="signature">
    <h3>Tanda Tangan</h3>
    <img src="{{.Signature}}" class="signature-img" alt="Tanda Tangan">
    <div class="signature-line"></div>
    <p>{{.ClerkName}}</p>
  </div>
{{- end}}
  <div class="footer">
    <p>Dibuat secara digital melalui SGS - SPGE Groundcheck System</p>
    <p>&copy; {{.Year}} SPGE</p>
  </div>
</body>
</html>
`))

type htmlAttachment struct {
	Number int
	Src    template.URL
}

type htmlView struct {
	Date        string
	ClerkName   string
	Division    string
	Foreman     string
	Attachments []htmlAttachment
	Notes       string
	Signature   template.URL
	Year        int
}

// HTMLRenderer builds the report as a standalone HTML page. Division and
// foreman names come from Resolver when it has them, otherwise the snapshot
// codes are shown. Missing optional fields never make it fail.
type HTMLRenderer struct {
	Resolver Resolver

	now func() time.Time
}

func (r *HTMLRenderer) Render(ctx context.Context, task *groundcheck.Task) (*Document, error) {
	now := time.Now()
	if r.now != nil {
		now = r.now()
	}

	view := htmlView{
		Date:      formatDate(task.CreatedAt, now),
		ClerkName: task.ClerkName,
		Division:  task.DivisionCode,
		Foreman:   task.ForemanCode,
		Notes:     strings.TrimSpace(task.Notes),
		Signature: imageURL(task.Signature),
		Year:      now.Year(),
	}
	if r.Resolver != nil {
		if d, err := r.Resolver.Division(ctx, task.DivisionID); err == nil && d.Name != "" {
			view.Division = d.Name
		}
		if f, err := r.Resolver.Foreman(ctx, task.ForemanID); err == nil && f.Name != "" {
			view.Foreman = f.Name
		}
	}
	for _, a := range task.Attachments {
		view.Attachments = append(view.Attachments, htmlAttachment{Number: a.TPHNumber, Src: imageURL(a.PhotoData)})
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, view); err != nil {
		metrics.Renders.WithLabelValues("html", "failed").Inc()
		return nil, fmt.Errorf("failed to render html: %w", err)
	}

	metrics.Renders.WithLabelValues("html", "ok").Inc()
	return &Document{
		Filename:    Filename(task, "html", now),
		ContentType: ContentTypeHTML,
		Data:        buf.Bytes(),
	}, nil
}

// imageURL passes image data URLs through unescaped; anything else is dropped.
func imageURL(s string) template.URL {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:image/") {
		return ""
	}
	return template.URL(s)
}

func formatDate(t, now time.Time) string {
	if t.IsZero() {
		t = now
	}
	return t.Format("02 January 2006, 15:04")
}
