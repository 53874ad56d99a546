package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("REPORT_COMMAND", "")
	t.Setenv("REPORT_TIMEOUT", "")

	cfg := Load()
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, []string{"reportgen"}, cfg.ReportCommand)
	assert.Equal(t, 60*time.Second, cfg.ReportTimeout)
	assert.Equal(t, 256, cfg.ReferenceCacheSize)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("REPORT_COMMAND", "node scripts/generate-pdf.js")
	t.Setenv("REPORT_TIMEOUT", "5s")
	t.Setenv("REFERENCE_CACHE_SIZE", "not-a-number")

	cfg := Load()
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, []string{"node", "scripts/generate-pdf.js"}, cfg.ReportCommand)
	assert.Equal(t, 5*time.Second, cfg.ReportTimeout)
	assert.Equal(t, 256, cfg.ReferenceCacheSize)
}

func TestLoadClient(t *testing.T) {
	t.Setenv("SGS_SERVER_URL", "https://sgs.example.com")
	t.Setenv("SGS_REPORT_COMMAND", "")
	t.Setenv("SGS_SUBMIT_TIMEOUT", "3s")

	cfg := LoadClient()
	assert.Equal(t, "https://sgs.example.com", cfg.ServerURL)
	assert.Empty(t, cfg.ReportCommand)
	assert.Equal(t, 3*time.Second, cfg.SubmitTimeout)
	assert.NotEmpty(t, cfg.DataPath)
}
