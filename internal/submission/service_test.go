package submission

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/spge/groundcheck/internal/dto"
	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/localstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const photo = "data:image/jpeg;base64,/9j/4AAQSkZJRg=="

type fakeRemote struct {
	mu         sync.Mutex
	err        error
	block      chan struct{}
	entered    chan struct{}
	created    []dto.CreateTaskRequest
	signatures map[string]string
}

func (f *fakeRemote) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*groundcheck.Task, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	return &groundcheck.Task{ID: fmt.Sprintf("server-%d", len(f.created)), Status: groundcheck.StatusSaved}, nil
}

func (f *fakeRemote) UpdateSignature(ctx context.Context, id, sig string) (*groundcheck.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.signatures == nil {
		f.signatures = make(map[string]string)
	}
	f.signatures[id] = sig
	return &groundcheck.Task{ID: id, Signature: sig}, nil
}

type staticConnectivity struct{ online atomic.Bool }

func (c *staticConnectivity) Online() bool { return c.online.Load() }

type SubmissionSuite struct {
	suite.Suite
	ctx    context.Context
	db     *localstore.DB
	remote *fakeRemote
	conn   *staticConnectivity
	svc    *Service
	now    time.Time
}

func (s *SubmissionSuite) SetupTest() {
	s.ctx = context.Background()
	db, err := localstore.Open(":memory:", nil)
	s.Require().NoError(err)
	s.db = db
	s.Require().NoError(db.Reference().SeedDefaults(s.ctx))

	s.remote = &fakeRemote{}
	s.conn = &staticConnectivity{}
	s.conn.online.Store(true)
	s.now = time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	s.svc = NewService(s.remote, s.conn, db.Tasks(), db.Reference(), nil, WithClock(func() time.Time { return s.now }))
}

func (s *SubmissionSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func (s *SubmissionSuite) draft() *groundcheck.Task {
	d := NewDraft("Budi")
	d.DivisionID = "div-1"
	d.ForemanID = "fm-1-A"
	d.Attachments = []groundcheck.Attachment{{ID: "a1", TPHNumber: 1, PhotoData: photo}}
	return d
}

func (s *SubmissionSuite) TestCommitOnline() {
	draft := s.draft()
	provisional := draft.ID

	res, err := s.svc.Commit(s.ctx, draft, "u1")
	s.Require().NoError(err)

	s.Equal(groundcheck.StatusSaved, res.Task.Status)
	s.Equal("1", res.Task.DivisionCode)
	s.Equal("A", res.Task.ForemanCode)
	s.Equal(provisional, res.ProvisionalID)
	s.True(res.Remote.Attempted)
	s.True(res.Remote.Synced)
	s.Equal("server-1", res.Task.ID)
	s.True(res.Local.Saved)

	s.Equal("server-1", draft.ID)
	s.Equal(groundcheck.StatusSaved, draft.Status)

	stored, err := s.db.Tasks().Get(s.ctx, "server-1")
	s.Require().NoError(err)
	s.True(stored.Synced)

	_, err = s.db.Tasks().Get(s.ctx, provisional)
	s.ErrorIs(err, groundcheck.ErrNotFound)

	s.Require().Len(s.remote.created, 1)
	s.Equal("u1", s.remote.created[0].CreatedBy)
}

func (s *SubmissionSuite) TestCommitRemoteUnreachable() {
	s.remote.err = errors.New("dial tcp: connection refused")
	draft := s.draft()
	provisional := draft.ID

	res, err := s.svc.Commit(s.ctx, draft, "u1")
	s.Require().NoError(err)

	s.True(res.Remote.Attempted)
	s.False(res.Remote.Synced)
	s.Error(res.Remote.Err)
	s.True(res.Local.Saved)
	s.Equal(provisional, res.Task.ID)

	history, err := s.svc.History(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(provisional, history[0].Task.ID)
	s.False(history[0].Synced)
	s.Equal(groundcheck.StatusSaved, history[0].Task.Status)
}

func (s *SubmissionSuite) TestCommitOfflineSkipsRemote() {
	s.conn.online.Store(false)

	res, err := s.svc.Commit(s.ctx, s.draft(), "u1")
	s.Require().NoError(err)

	s.False(res.Remote.Attempted)
	s.True(res.Local.Saved)
	s.Empty(s.remote.created)
}

func (s *SubmissionSuite) TestCommitWithoutPhotosFails() {
	draft := s.draft()
	draft.Attachments = []groundcheck.Attachment{{TPHNumber: 1}, {TPHNumber: 2, PhotoData: "  "}}

	_, err := s.svc.Commit(s.ctx, draft, "u1")

	var verr *groundcheck.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal([]string{groundcheck.FieldAttachments}, verr.Missing)
	s.Equal(groundcheck.StatusDraft, draft.Status)

	n, err := s.db.Tasks().Count(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
	s.Empty(s.remote.created)
}

func (s *SubmissionSuite) TestCommitDropsEmptySlots() {
	draft := s.draft()
	draft.Attachments = append(draft.Attachments,
		groundcheck.Attachment{ID: "a2", TPHNumber: 2},
		groundcheck.Attachment{ID: "a3", TPHNumber: 3, PhotoData: photo},
	)

	res, err := s.svc.Commit(s.ctx, draft, "u1")
	s.Require().NoError(err)
	s.Require().Len(res.Task.Attachments, 2)
	s.Equal(1, res.Task.Attachments[0].TPHNumber)
	s.Equal(3, res.Task.Attachments[1].TPHNumber)
}

func (s *SubmissionSuite) TestCommitUnknownReference() {
	draft := s.draft()
	draft.DivisionID = "div-404"
	_, err := s.svc.Commit(s.ctx, draft, "u1")
	s.ErrorIs(err, groundcheck.ErrNotFound)

	draft = s.draft()
	draft.ForemanID = "fm-2-A"
	_, err = s.svc.Commit(s.ctx, draft, "u1")
	s.ErrorIs(err, groundcheck.ErrNotFound)

	n, err := s.db.Tasks().Count(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *SubmissionSuite) TestCommitTwice() {
	draft := s.draft()
	_, err := s.svc.Commit(s.ctx, draft, "u1")
	s.Require().NoError(err)

	_, err = s.svc.Commit(s.ctx, draft, "u1")
	s.ErrorIs(err, ErrAlreadySaved)
}

func (s *SubmissionSuite) TestCommitInProgress() {
	s.remote.block = make(chan struct{})
	s.remote.entered = make(chan struct{}, 1)
	draft := s.draft()
	second := draft.Clone()

	done := make(chan error, 1)
	go func() {
		_, err := s.svc.Commit(s.ctx, draft, "u1")
		done <- err
	}()
	<-s.remote.entered

	_, err := s.svc.Commit(s.ctx, second, "u1")
	s.ErrorIs(err, ErrCommitInProgress)

	close(s.remote.block)
	s.NoError(<-done)
}

func (s *SubmissionSuite) TestOfflineOnlineEquivalence() {
	online := s.draft()
	online.Notes = "Pemanen: Slamet"
	offline := online.Clone()
	offline.ID = uuid.NewString()

	onRes, err := s.svc.Commit(s.ctx, online, "u1")
	s.Require().NoError(err)

	s.conn.online.Store(false)
	offRes, err := s.svc.Commit(s.ctx, offline, "u1")
	s.Require().NoError(err)

	onStored, err := s.db.Tasks().Get(s.ctx, onRes.Task.ID)
	s.Require().NoError(err)
	offStored, err := s.db.Tasks().Get(s.ctx, offRes.Task.ID)
	s.Require().NoError(err)

	diff := cmp.Diff(onStored.Task, offStored.Task,
		cmpopts.IgnoreFields(groundcheck.Task{}, "ID"),
		cmpopts.EquateApproxTime(time.Second))
	s.Empty(diff)
	s.NotEqual(onStored.Synced, offStored.Synced)
}

func (s *SubmissionSuite) TestCodesSurviveReferenceRename() {
	res, err := s.svc.Commit(s.ctx, s.draft(), "u1")
	s.Require().NoError(err)

	divisions, foremen := groundcheck.DefaultReference()
	divisions[0].Code = "1-NEW"
	foremen[0].Code = "Z"
	s.Require().NoError(s.db.Reference().ReplaceAll(s.ctx, divisions, foremen))

	stored, err := s.db.Tasks().Get(s.ctx, res.Task.ID)
	s.Require().NoError(err)
	s.Equal("1", stored.Task.DivisionCode)
	s.Equal("A", stored.Task.ForemanCode)
}

func (s *SubmissionSuite) TestSign() {
	res, err := s.svc.Commit(s.ctx, s.draft(), "u1")
	s.Require().NoError(err)

	sig := "data:image/png;base64,iVBORw0KGgo="
	signed, err := s.svc.Sign(s.ctx, res.Task.ID, sig)
	s.Require().NoError(err)
	s.True(signed.Task.HasSignature())
	s.True(signed.Remote.Synced)
	s.Equal(sig, s.remote.signatures[res.Task.ID])

	history, err := s.svc.History(s.ctx)
	s.Require().NoError(err)
	s.True(history[0].Completed)
	s.Equal(1, history[0].AttachmentCount)
}

func (s *SubmissionSuite) TestSignUnsyncedStaysLocal() {
	s.conn.online.Store(false)
	res, err := s.svc.Commit(s.ctx, s.draft(), "u1")
	s.Require().NoError(err)

	s.conn.online.Store(true)
	signed, err := s.svc.Sign(s.ctx, res.Task.ID, "data:image/png;base64,iVBORw0KGgo=")
	s.Require().NoError(err)
	s.False(signed.Remote.Attempted)
	s.Empty(s.remote.signatures)
}

func (s *SubmissionSuite) TestSignErrors() {
	_, err := s.svc.Sign(s.ctx, "missing", "data:image/png;base64,iVBORw0KGgo=")
	s.ErrorIs(err, groundcheck.ErrNotFound)

	res, err := s.svc.Commit(s.ctx, s.draft(), "u1")
	s.Require().NoError(err)
	_, err = s.svc.Sign(s.ctx, res.Task.ID, "")
	s.ErrorIs(err, ErrEmptySignature)
	_, err = s.svc.Sign(s.ctx, res.Task.ID, "data:image/png;base64,aGVsbG8gd29ybGQ=")
	s.ErrorIs(err, ErrInvalidSignature)
}

func (s *SubmissionSuite) TestHistoryNewestFirst() {
	for i := 0; i < 3; i++ {
		s.now = s.now.Add(time.Minute)
		_, err := s.svc.Commit(s.ctx, s.draft(), "u1")
		s.Require().NoError(err)
	}

	history, err := s.svc.History(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(history, 3)
	for i := 1; i < len(history); i++ {
		s.True(history[i-1].Task.CreatedAt.After(history[i].Task.CreatedAt))
	}
}

func TestSubmissionSuite(t *testing.T) {
	suite.Run(t, new(SubmissionSuite))
}

func TestCommit_AnyTaskWithPhotoIsSaved(t *testing.T) {
	ctx := context.Background()
	db, err := localstore.Open(":memory:", nil)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Reference().SeedDefaults(ctx))

	divisions, foremen := groundcheck.DefaultReference()
	rng := rand.New(rand.NewSource(7))
	conn := &staticConnectivity{}
	svc := NewService(&fakeRemote{}, conn, db.Tasks(), db.Reference(), nil)

	for i := 0; i < 50; i++ {
		conn.online.Store(rng.Intn(2) == 0)
		fm := foremen[rng.Intn(len(foremen))]

		draft := NewDraft(fmt.Sprintf("clerk-%d", i))
		draft.DivisionID = fm.DivisionID
		draft.ForemanID = fm.ID
		slots := 1 + rng.Intn(5)
		withPhoto := rng.Intn(slots)
		for n := 0; n < slots; n++ {
			a := groundcheck.Attachment{ID: uuid.NewString(), TPHNumber: n + 1}
			if n == withPhoto || rng.Intn(2) == 0 {
				a.PhotoData = photo
			}
			draft.Attachments = append(draft.Attachments, a)
		}

		res, err := svc.Commit(ctx, draft, "u1")
		require.NoError(t, err, "iteration %d", i)
		assert.Equal(t, groundcheck.StatusSaved, res.Task.Status)
		assert.Equal(t, fm.Code, res.Task.ForemanCode)
		for _, d := range divisions {
			if d.ID == fm.DivisionID {
				assert.Equal(t, d.Code, res.Task.DivisionCode)
			}
		}
	}
}
