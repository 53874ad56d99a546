package pdfreport

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/spge/groundcheck/internal/dataurl"
	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jpegURL(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 30)), nil))
	return dataurl.Encode("image/jpeg", buf.Bytes())
}

func pngURL(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 60, 30))))
	return dataurl.Encode("image/png", buf.Bytes())
}

func TestGenerate(t *testing.T) {
	photo := jpegURL(t)
	task := &groundcheck.Task{
		ClerkName:    "Budi",
		DivisionCode: "1",
		ForemanCode:  "A",
		Notes:        "Pemanen: Slamet",
		Attachments: []groundcheck.Attachment{
			{TPHNumber: 1, PhotoData: photo},
			{TPHNumber: 2, PhotoData: ""},
			{TPHNumber: 3, PhotoData: "data:image/jpeg;base64,bm90IGFuIGltYWdl"},
			{TPHNumber: 4, PhotoData: photo},
			{TPHNumber: 5, PhotoData: photo},
			{TPHNumber: 6, PhotoData: photo},
			{TPHNumber: 7, PhotoData: photo},
		},
		Signature: pngURL(t),
		CreatedAt: time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC),
	}

	var out bytes.Buffer
	require.NoError(t, Generate(task, &out, time.Now()))
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
}

func TestGenerate_MinimalTask(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Generate(&groundcheck.Task{}, &out, time.Now()))
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
}
