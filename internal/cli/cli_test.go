package cli

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spge/groundcheck/internal/capture"
	"github.com/spge/groundcheck/internal/config"
	"github.com/spge/groundcheck/internal/constants"
	"github.com/spge/groundcheck/internal/dto"
	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/localstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeServer answers the handful of endpoints the clerk uses.
type fakeServer struct {
	down atomic.Bool

	mu         sync.Mutex
	created    []dto.CreateTaskRequest
	signatures map[string]string
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fs := &fakeServer{signatures: map[string]string{}}

	r := gin.New()
	r.GET("/health", func(c *gin.Context) {
		if fs.down.Load() {
			c.Status(http.StatusServiceUnavailable)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/api/auth/login", func(c *gin.Context) {
		var req dto.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Password != "secret" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Code: "INVALID_CREDENTIALS", Message: "invalid credentials"})
			return
		}
		c.SetCookie(constants.SessionCookieName, "tok-"+req.Username, 3600, "/", "", false, true)
		c.JSON(http.StatusOK, dto.UserResponse{Success: true, User: groundcheck.User{
			ID: "u-1", Username: req.Username, Name: "Budi", Role: groundcheck.RoleClerk,
		}})
	})
	r.POST("/api/auth/logout", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.MessageResponse{Success: true})
	})
	r.GET("/api/divisions", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.DivisionListResponse{Success: true, Divisions: []groundcheck.Division{
			{ID: "div-7", Code: "7", Name: "Divisi 7"},
		}})
	})
	r.GET("/api/foremen", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.ForemanListResponse{Success: true, Foremen: []groundcheck.Foreman{
			{ID: "fm-7-X", Code: "X", Name: "Kemandoran X", DivisionID: "div-7"},
		}})
	})
	r.POST("/api/groundcheck", func(c *gin.Context) {
		var req dto.CreateTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_REQUEST"})
			return
		}
		fs.mu.Lock()
		fs.created = append(fs.created, req)
		id := "srv-" + strconv.Itoa(len(fs.created))
		fs.mu.Unlock()
		c.JSON(http.StatusCreated, dto.TaskResponse{Success: true, Task: groundcheck.Task{ID: id, ClerkName: req.ClerkName}})
	})
	r.PUT("/api/groundcheck/:id/signature", func(c *gin.Context) {
		var req dto.SignatureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_REQUEST"})
			return
		}
		fs.mu.Lock()
		fs.signatures[c.Param("id")] = req.Signature
		fs.mu.Unlock()
		c.JSON(http.StatusOK, dto.TaskResponse{Success: true, Task: groundcheck.Task{ID: c.Param("id")}})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return fs, srv
}

type fakeStream struct{ closed *atomic.Int32 }

func (s fakeStream) Frame(ctx context.Context) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	return img, nil
}

func (s fakeStream) Close() error {
	s.closed.Add(1)
	return nil
}

// fakeCamera fails its first failures opens, or every open when fail is set.
type fakeCamera struct {
	fail     bool
	failures int
	opens    atomic.Int32
	closed   atomic.Int32
}

func (d *fakeCamera) Open(ctx context.Context, c capture.Constraints) (capture.Stream, error) {
	n := d.opens.Add(1)
	if d.fail || int(n) <= d.failures {
		return nil, errors.New("device busy")
	}
	return fakeStream{closed: &d.closed}, nil
}

func newTestApp(t *testing.T, serverURL string) (*App, *bytes.Buffer) {
	t.Helper()
	store, err := localstore.Open(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	out := &bytes.Buffer{}
	return &App{
		Config: &config.ClientConfig{
			ServerURL:           serverURL,
			DataPath:            ":memory:",
			OnlineCheckInterval: time.Second,
			SubmitTimeout:       5 * time.Second,
			RequestTimeout:      5 * time.Second,
		},
		Log:    zap.NewNop(),
		In:     strings.NewReader(""),
		Out:    out,
		Store:  store,
		Device: &fakeCamera{},
	}, out
}

func run(t *testing.T, app *App, args ...string) error {
	t.Helper()
	cmd := NewRootCmd(app)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func writeStrokes(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "strokes.json")
	raw := `{"width":100,"height":40,"strokes":[[{"x":5,"y":5},{"x":60,"y":30}]]}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	return path
}

func TestLogin_PasswordStdinRefreshesReference(t *testing.T) {
	_, srv := newFakeServer(t)
	app, out := newTestApp(t, srv.URL)
	app.In = strings.NewReader("secret\n")

	require.NoError(t, run(t, app, "login", "-u", "budi", "--password-stdin"))
	assert.Contains(t, out.String(), "Logged in as Budi")
	assert.Contains(t, out.String(), "1 divisions, 1 foremen")

	ctx := context.Background()
	sess, err := app.Store.Session().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u-1", sess.User.ID)
	assert.Equal(t, "tok-budi", sess.Cookie)
	assert.Equal(t, srv.URL, sess.ServerURL)

	divisions, err := app.Store.Reference().Divisions(ctx)
	require.NoError(t, err)
	require.Len(t, divisions, 1)
	assert.Equal(t, "div-7", divisions[0].ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	_, srv := newFakeServer(t)
	app, _ := newTestApp(t, srv.URL)
	app.In = strings.NewReader("nope\n")

	err := run(t, app, "login", "-u", "budi", "--password-stdin")
	require.Error(t, err)

	_, err = app.Store.Session().Load(context.Background())
	assert.ErrorIs(t, err, localstore.ErrNoSession)
}

func TestLogin_PromptsForPassword(t *testing.T) {
	_, srv := newFakeServer(t)
	app, _ := newTestApp(t, srv.URL)

	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("secret"), nil }
	t.Cleanup(func() { readPassword = orig })

	require.NoError(t, run(t, app, "login", "-u", "budi"))
	require.NoError(t, run(t, app, "whoami"))
	assert.Contains(t, app.Out.(*bytes.Buffer).String(), "Budi (budi), role clerk")
}

func TestCapture_OfflineSavesOnDevice(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.down.Store(true)
	app, out := newTestApp(t, srv.URL)

	require.NoError(t, run(t, app, "capture", "--clerk", "Budi", "--division", "1", "--foreman", "a"))
	assert.Contains(t, out.String(), "Offline: saved")
	assert.Empty(t, fs.created)

	stored, err := app.Store.Tasks().List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	task := stored[0].Task
	assert.False(t, stored[0].Synced)
	assert.Equal(t, "div-1", task.DivisionID)
	assert.Equal(t, "fm-1-A", task.ForemanID)
	assert.Equal(t, "A", task.ForemanCode)
	require.Len(t, task.Attachments, 1)
	assert.True(t, strings.HasPrefix(task.Attachments[0].PhotoData, "data:image/jpeg;base64,"))

	out.Reset()
	require.NoError(t, run(t, app, "history"))
	assert.Contains(t, out.String(), "Budi")
	assert.Contains(t, out.String(), shortID(task.ID))
}

func TestCapture_OnlineSyncsAndSigns(t *testing.T) {
	fs, srv := newFakeServer(t)
	app, out := newTestApp(t, srv.URL)
	dir := t.TempDir()

	require.NoError(t, run(t, app, "capture",
		"--clerk", "Budi", "--division", "div-2", "--foreman", "B",
		"--camera", "2", "--notes", "blok 12",
		"--strokes", writeStrokes(t, dir)))
	assert.Contains(t, out.String(), "Saved srv-1 on the server and this device")
	assert.Contains(t, out.String(), "Signed srv-1 on the server and this device")

	require.Len(t, fs.created, 1)
	req := fs.created[0]
	assert.Equal(t, "fm-2-B", req.ForemanID)
	assert.Equal(t, "blok 12", req.Notes)
	require.Len(t, req.Attachments, 2)
	for i, a := range req.Attachments {
		assert.Equal(t, i+1, a.TPHNumber)
		assert.True(t, strings.HasPrefix(a.PhotoData, "data:image/jpeg;base64,"))
	}
	assert.True(t, strings.HasPrefix(fs.signatures["srv-1"], "data:image/png;base64,"))
	assert.Equal(t, int32(2), app.Device.(*fakeCamera).closed.Load())

	stored, err := app.Store.Tasks().Get(context.Background(), "srv-1")
	require.NoError(t, err)
	assert.True(t, stored.Synced)
	assert.True(t, stored.Task.HasSignature())
}

func TestCapture_RetriesFailedShot(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.down.Store(true)
	app, out := newTestApp(t, srv.URL)
	cam := &fakeCamera{failures: 2}
	app.Device = cam

	require.NoError(t, run(t, app, "capture", "--clerk", "Budi", "--division", "1", "--foreman", "A", "--retries", "2"))
	assert.Equal(t, int32(3), cam.opens.Load())
	assert.Contains(t, out.String(), "TPH 1: photo not taken")
	assert.NotContains(t, out.String(), "[r]etry")

	stored, err := app.Store.Tasks().List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Len(t, stored[0].Task.Attachments, 1)
	assert.True(t, stored[0].Task.Attachments[0].HasPhoto())
}

func TestCapture_AsksAfterRetriesRunOut(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.down.Store(true)
	app, out := newTestApp(t, srv.URL)
	cam := &fakeCamera{failures: 3}
	app.Device = cam
	app.In = strings.NewReader("r\n\n")

	require.NoError(t, run(t, app, "capture", "--clerk", "Budi", "--division", "1", "--foreman", "A", "--retries", "1"))
	assert.Equal(t, int32(4), cam.opens.Load())
	assert.Equal(t, 2, strings.Count(out.String(), "[r]etry, [s]kip this TPH or [c]ancel?"))
	assert.Contains(t, out.String(), "Offline: saved")
}

func TestCapture_SkippedShotKeepsOthers(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.down.Store(true)
	app, _ := newTestApp(t, srv.URL)
	app.Device = &fakeCamera{failures: 1}
	app.In = strings.NewReader("s\n")

	require.NoError(t, run(t, app, "capture", "--clerk", "Budi", "--division", "1", "--foreman", "A", "--camera", "2", "--retries", "0"))

	stored, err := app.Store.Tasks().List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	photos := stored[0].Task.PhotoAttachments()
	require.Len(t, photos, 1)
	assert.Equal(t, 2, photos[0].TPHNumber)
}

func TestCapture_CameraFailureSavesNothing(t *testing.T) {
	for name, input := range map[string]string{
		"cancelled":  "c\n",
		"no answers": "",
	} {
		t.Run(name, func(t *testing.T) {
			fs, srv := newFakeServer(t)
			fs.down.Store(true)
			app, out := newTestApp(t, srv.URL)
			app.Device = &fakeCamera{fail: true}
			app.In = strings.NewReader(input)

			err := run(t, app, "capture", "--clerk", "Budi", "--division", "1", "--foreman", "A", "--retries", "1")
			assert.ErrorIs(t, err, errCaptureCancelled)
			assert.Contains(t, out.String(), "TPH 1: photo not taken")
			assert.Contains(t, out.String(), "device busy")
			assert.NotContains(t, out.String(), "saved")

			n, err := app.Store.Tasks().Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestCapture_FileSourcesRejected(t *testing.T) {
	_, srv := newFakeServer(t)
	app, _ := newTestApp(t, srv.URL)
	path := filepath.Join(t.TempDir(), "tph.png")
	require.NoError(t, os.WriteFile(path, []byte("not a camera"), 0o600))

	err := run(t, app, "capture", "--clerk", "Budi", "--division", "1", "--foreman", "A", "--photo", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag: --photo")

	err = run(t, app, "sign", "some-id", "--image", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag: --image")

	n, err := app.Store.Tasks().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCapture_ReportsMissingFields(t *testing.T) {
	_, srv := newFakeServer(t)
	app, out := newTestApp(t, srv.URL)

	err := run(t, app, "capture", "--camera", "0")
	var verr *groundcheck.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{
		groundcheck.FieldClerkName, groundcheck.FieldDivisionID,
		groundcheck.FieldForemanID, groundcheck.FieldAttachments,
	}, verr.Missing)
	assert.Contains(t, out.String(), "Cannot save")

	n, err := app.Store.Tasks().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCapture_UnknownForeman(t *testing.T) {
	_, srv := newFakeServer(t)
	app, _ := newTestApp(t, srv.URL)
	cam := &fakeCamera{}
	app.Device = cam

	err := run(t, app, "capture", "--clerk", "Budi", "--division", "1", "--foreman", "Z")
	assert.ErrorIs(t, err, groundcheck.ErrNotFound)
	assert.Zero(t, cam.opens.Load())
}

func TestSign_OfflineTask(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.down.Store(true)
	app, out := newTestApp(t, srv.URL)
	dir := t.TempDir()

	require.NoError(t, run(t, app, "capture", "--clerk", "Budi", "--division", "3", "--foreman", "C"))
	stored, err := app.Store.Tasks().List(context.Background())
	require.NoError(t, err)
	id := stored[0].Task.ID

	assert.Error(t, run(t, app, "sign", id))

	out.Reset()
	require.NoError(t, run(t, app, "sign", id, "--strokes", writeStrokes(t, dir)))
	assert.Contains(t, out.String(), "Signed "+shortID(id)+" on this device")
	assert.Empty(t, fs.signatures)

	got, err := app.Store.Tasks().Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, got.Task.HasSignature())
	assert.True(t, strings.HasPrefix(got.Task.Signature, "data:image/png;base64,"))
}

func TestShow_ListsTPHNumbers(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.down.Store(true)
	app, out := newTestApp(t, srv.URL)

	require.NoError(t, run(t, app, "capture", "--clerk", "Budi", "--division", "2", "--foreman", "A", "--camera", "2", "--notes", "blok 4"))
	stored, err := app.Store.Tasks().List(context.Background())
	require.NoError(t, err)
	id := stored[0].Task.ID

	out.Reset()
	require.NoError(t, run(t, app, "show", id))
	got := out.String()
	assert.Contains(t, got, "blok 4")
	assert.Regexp(t, `Photos\s+2`, got)
	assert.Regexp(t, `TPH 1 \(\d+ bytes\)`, got)
	assert.Regexp(t, `TPH 2 \(\d+ bytes\)`, got)
	assert.NotContains(t, got, "%!")
}

func TestRender_FallsBackToHTMLOffline(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.down.Store(true)
	app, out := newTestApp(t, srv.URL)
	dir := t.TempDir()

	require.NoError(t, run(t, app, "capture", "--clerk", "Budi", "--division", "1", "--foreman", "B"))
	stored, err := app.Store.Tasks().List(context.Background())
	require.NoError(t, err)

	outDir := filepath.Join(dir, "reports")
	require.NoError(t, run(t, app, "render", stored[0].Task.ID, "--out", outDir))
	assert.Contains(t, out.String(), "text/html")

	matches, err := filepath.Glob(filepath.Join(outDir, "GroundCheck_1_B_*.html"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Budi")
}

func TestReferenceAndStatus(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.down.Store(true)
	app, out := newTestApp(t, srv.URL)

	require.NoError(t, run(t, app, "reference"))
	assert.Contains(t, out.String(), "Divisi 2")
	assert.Contains(t, out.String(), "A, B, C")

	out.Reset()
	require.NoError(t, run(t, app, "status"))
	assert.Contains(t, out.String(), "not reachable")
	assert.Contains(t, out.String(), "Not signed in")
	assert.Contains(t, out.String(), "Divisions on device: 3")
}

func TestLogout_ClearsSession(t *testing.T) {
	_, srv := newFakeServer(t)
	app, out := newTestApp(t, srv.URL)
	app.In = strings.NewReader("secret\n")
	require.NoError(t, run(t, app, "login", "-u", "budi", "--password-stdin"))

	out.Reset()
	require.NoError(t, run(t, app, "logout"))
	assert.Contains(t, out.String(), "Logged out")

	_, err := app.Store.Session().Load(context.Background())
	assert.ErrorIs(t, err, localstore.ErrNoSession)
}
