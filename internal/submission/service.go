// Package submission validates ground check drafts and commits them: to the
// server when it is reachable, and to the device store always.
package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spge/groundcheck/internal/dataurl"
	"github.com/spge/groundcheck/internal/dto"
	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/localstore"
	"github.com/spge/groundcheck/internal/metrics"
	"go.uber.org/zap"
)

// DefaultRemoteTimeout bounds one remote submission.
const DefaultRemoteTimeout = 10 * time.Second

var (
	ErrAlreadySaved     = errors.New("task is already saved")
	ErrCommitInProgress = errors.New("a commit for this task is already in progress")
	ErrNotSaved         = errors.New("task must be saved before it can be signed")
	ErrEmptySignature   = errors.New("signature is empty")
	ErrInvalidSignature = errors.New("signature is not an image")
)

// Remote is the server endpoint tasks are submitted to.
type Remote interface {
	CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*groundcheck.Task, error)
	UpdateSignature(ctx context.Context, taskID, signature string) (*groundcheck.Task, error)
}

// Connectivity reports whether the remote is worth trying.
type Connectivity interface {
	Online() bool
}

// TaskStore is the device's task history.
type TaskStore interface {
	Save(ctx context.Context, t *groundcheck.Task, synced bool) error
	Get(ctx context.Context, id string) (*localstore.StoredTask, error)
	List(ctx context.Context) ([]localstore.StoredTask, error)
	SetSignature(ctx context.Context, id, signature string) (*groundcheck.Task, error)
}

// Reference resolves divisions and foremen for code snapshots.
type Reference interface {
	Division(ctx context.Context, id string) (*groundcheck.Division, error)
	Foreman(ctx context.Context, id string) (*groundcheck.Foreman, error)
}

// RemoteOutcome describes the server half of a commit. Err is informational
// only; a failed remote write never fails the commit.
type RemoteOutcome struct {
	Attempted bool
	Synced    bool
	ServerID  string
	Err       error
}

// LocalOutcome describes the device half of a commit.
type LocalOutcome struct {
	Saved bool
	Err   error
}

// Result is the outcome of Commit.
type Result struct {
	Task          *groundcheck.Task
	ProvisionalID string
	Remote        RemoteOutcome
	Local         LocalOutcome
}

type Service struct {
	remote    Remote
	online    Connectivity
	tasks     TaskStore
	reference Reference
	log       *zap.Logger
	timeout   time.Duration
	now       func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

type Option func(*Service)

// WithRemoteTimeout overrides DefaultRemoteTimeout.
func WithRemoteTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(remote Remote, online Connectivity, tasks TaskStore, reference Reference, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		remote:    remote,
		online:    online,
		tasks:     tasks,
		reference: reference,
		log:       log,
		timeout:   DefaultRemoteTimeout,
		now:       time.Now,
		inFlight:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDraft starts a task with a client-generated provisional id.
func NewDraft(clerkName string) *groundcheck.Task {
	return &groundcheck.Task{
		ID:        uuid.NewString(),
		ClerkName: clerkName,
		Status:    groundcheck.StatusDraft,
	}
}

// Commit validates draft and persists it. When online the server is tried
// first and its id adopted on success; the task is then written locally
// whatever the server said. Only validation, reference lookup and local
// write failures are returned as errors. On success draft is updated to the
// saved task.
func (s *Service) Commit(ctx context.Context, draft *groundcheck.Task, createdBy string) (*Result, error) {
	if draft.Status == groundcheck.StatusSaved {
		return nil, ErrAlreadySaved
	}
	if !s.begin(draft.ID) {
		return nil, ErrCommitInProgress
	}
	defer s.end(draft.ID)

	if err := groundcheck.Validate(draft); err != nil {
		return nil, err
	}

	task := draft.Clone()
	task.Attachments = task.PhotoAttachments()

	division, err := s.reference.Division(ctx, task.DivisionID)
	if err != nil {
		return nil, err
	}
	foreman, err := s.reference.Foreman(ctx, task.ForemanID)
	if err != nil {
		return nil, err
	}
	if foreman.DivisionID != division.ID {
		return nil, &groundcheck.NotFoundError{Kind: "foreman", ID: task.ForemanID}
	}
	task.DivisionCode = division.Code
	task.ForemanCode = foreman.Code
	task.Status = groundcheck.StatusSaved
	now := s.now()
	task.CreatedAt = now
	task.UpdatedAt = now

	log := s.log.With(zap.String("operation", "commit"), zap.String("provisional_id", draft.ID))
	result := &Result{Task: task, ProvisionalID: draft.ID}
	result.Remote = s.submitRemote(ctx, task, createdBy, log)
	if result.Remote.Synced {
		task.ID = result.Remote.ServerID
	}

	if err := s.tasks.Save(ctx, task, result.Remote.Synced); err != nil {
		result.Local = LocalOutcome{Err: err}
		log.Error("local save failed", zap.String("task_id", task.ID), zap.Error(err))
		return result, fmt.Errorf("failed to save task on device: %w", err)
	}
	result.Local = LocalOutcome{Saved: true}

	*draft = *task.Clone()
	log.Info("task committed",
		zap.String("task_id", task.ID),
		zap.Bool("synced", result.Remote.Synced),
		zap.Int("attachments", len(task.Attachments)))
	return result, nil
}

func (s *Service) submitRemote(ctx context.Context, task *groundcheck.Task, createdBy string, log *zap.Logger) RemoteOutcome {
	if s.remote == nil || s.online == nil || !s.online.Online() {
		metrics.Commits.WithLabelValues("skipped").Inc()
		return RemoteOutcome{}
	}

	// The remote call is not cancelled with the caller; it only runs out its timeout.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	created, err := s.remote.CreateTask(rctx, dto.NewCreateTaskRequest(task, createdBy))
	if err != nil {
		metrics.Commits.WithLabelValues("failed").Inc()
		log.Warn("remote submission failed, keeping task on device only", zap.Error(err))
		return RemoteOutcome{Attempted: true, Err: err}
	}
	metrics.Commits.WithLabelValues("ok").Inc()
	return RemoteOutcome{Attempted: true, Synced: true, ServerID: created.ID}
}

func (s *Service) begin(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return false
	}
	s.inFlight[id] = struct{}{}
	return true
}

func (s *Service) end(id string) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}

// SignResult is the outcome of Sign.
type SignResult struct {
	Task   *groundcheck.Task
	Remote RemoteOutcome
}

// Sign attaches a signature image to a saved task. The device copy is
// always updated; the server copy is updated best-effort when the task
// reached the server and we are online.
func (s *Service) Sign(ctx context.Context, taskID, signature string) (*SignResult, error) {
	if strings.TrimSpace(signature) == "" {
		return nil, ErrEmptySignature
	}
	if _, _, err := dataurl.DecodeImage(signature); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	stored, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if stored.Task.Status != groundcheck.StatusSaved {
		return nil, ErrNotSaved
	}

	task, err := s.tasks.SetSignature(ctx, taskID, signature)
	if err != nil {
		return nil, err
	}

	result := &SignResult{Task: task}
	if stored.Synced && s.remote != nil && s.online != nil && s.online.Online() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		result.Remote.Attempted = true
		if _, err := s.remote.UpdateSignature(rctx, taskID, signature); err != nil {
			result.Remote.Err = err
			s.log.Warn("remote signature update failed",
				zap.String("operation", "sign"), zap.String("task_id", taskID), zap.Error(err))
		} else {
			result.Remote.Synced = true
			result.Remote.ServerID = taskID
		}
	}
	return result, nil
}

// HistoryItem is one row of the device task history.
type HistoryItem struct {
	Task            *groundcheck.Task
	AttachmentCount int
	Completed       bool
	Synced          bool
}

// History lists device tasks newest first.
func (s *Service) History(ctx context.Context) ([]HistoryItem, error) {
	stored, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]HistoryItem, len(stored))
	for i, st := range stored {
		items[i] = HistoryItem{
			Task:            st.Task,
			AttachmentCount: len(st.Task.Attachments),
			Completed:       st.Task.HasSignature(),
			Synced:          st.Synced,
		}
	}
	return items, nil
}

// Task returns one task from the device history.
func (s *Service) Task(ctx context.Context, id string) (*groundcheck.Task, error) {
	stored, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return stored.Task, nil
}
