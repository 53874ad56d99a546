package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spge/groundcheck/internal/apiclient"
	"github.com/spge/groundcheck/internal/config"
	"github.com/spge/groundcheck/internal/constants"
	"github.com/spge/groundcheck/internal/connectivity"
	"github.com/spge/groundcheck/internal/database"
	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/localstore"
	"github.com/spge/groundcheck/internal/report"
	"github.com/spge/groundcheck/internal/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db, zap.NewNop()))

	cfg := &config.Config{
		ReportCommand:      []string{"sh", "-c", `cp "$0" "$1"`},
		ReportTimeout:      10 * time.Second,
		ReferenceCacheSize: 16,
		ReferenceCacheTTL:  time.Minute,
	}
	store, err := newSessionStore(&config.Config{SessionStore: "cookie", SessionSecret: "secret"})
	require.NoError(t, err)
	srv := httptest.NewServer(setupRouter(cfg, db, store, zap.NewNop()))
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/api/init", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return srv
}

func TestNewSessionStore(t *testing.T) {
	_, err := newSessionStore(&config.Config{SessionStore: "cookie", SessionSecret: "s"})
	assert.NoError(t, err)

	_, err = newSessionStore(&config.Config{SessionStore: "memcached"})
	assert.Error(t, err)
}

func TestRouter_SessionCookieUsableOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	body := strings.NewReader(`{"username":"admin","password":"admin123"}`)
	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, constants.SessionCookieName, cookies[0].Name)
	assert.False(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
}

func TestRouter_RequiresSession(t *testing.T) {
	srv := newTestServer(t)
	client, err := apiclient.New(srv.URL, 5*time.Second)
	require.NoError(t, err)

	_, err = client.ListDivisions(context.Background())
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)

	require.NoError(t, client.Ping(context.Background()))
}

func TestRouter_FieldRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	client, err := apiclient.New(srv.URL, 5*time.Second)
	require.NoError(t, err)
	user, err := client.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, groundcheck.RoleAdmin, user.Role)

	divisions, err := client.ListDivisions(ctx)
	require.NoError(t, err)
	require.Len(t, divisions, 3)
	foremen, err := client.ListForemen(ctx, "")
	require.NoError(t, err)
	require.Len(t, foremen, 9)

	local, err := localstore.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })
	require.NoError(t, local.Reference().ReplaceAll(ctx, divisions, foremen))

	monitor := connectivity.NewMonitor(client.Ping, nil)
	require.True(t, monitor.Check(ctx))

	svc := submission.NewService(client, monitor, local.Tasks(), local.Reference(), nil)
	draft := submission.NewDraft("Budi")
	draft.DivisionID = "div-2"
	draft.ForemanID = "fm-2-C"
	draft.Attachments = []groundcheck.Attachment{
		{TPHNumber: 1, PhotoData: "data:image/jpeg;base64,/9j/"},
		{TPHNumber: 2},
	}

	result, err := svc.Commit(ctx, draft, user.ID)
	require.NoError(t, err)
	require.True(t, result.Remote.Synced, "remote error: %v", result.Remote.Err)
	assert.NotEqual(t, result.ProvisionalID, result.Task.ID)

	remote, err := client.GetTask(ctx, result.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, "2", remote.DivisionCode)
	assert.Equal(t, "C", remote.ForemanCode)
	require.Len(t, remote.Attachments, 1)

	signed, err := svc.Sign(ctx, result.Task.ID, "data:image/png;base64,iVBORw0KGgo=")
	require.NoError(t, err)
	assert.True(t, signed.Remote.Synced)

	list, err := client.ListTasks(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, list.Tasks, 1)
	assert.True(t, list.Tasks[0].Completed)
	assert.Equal(t, 1, list.Tasks[0].AttachmentCount)

	doc, err := apiclient.ReportRenderer{Client: client}.Render(ctx, remote)
	require.NoError(t, err)
	assert.Equal(t, report.ContentTypePDF, doc.ContentType)
	assert.Contains(t, doc.Filename, "GroundCheck_2_C_")

	require.NoError(t, client.Logout(ctx))
	_, err = client.Me(ctx)
	assert.ErrorIs(t, err, apiclient.ErrUnauthorized)
}

func TestRouter_MetricsExposed(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
