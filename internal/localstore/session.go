package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spge/groundcheck/internal/groundcheck"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNoSession = errors.New("not logged in")

type sessionRecord struct {
	ID        uint `gorm:"primaryKey"`
	ServerURL string
	User      datatypes.JSON
	Cookie    string
	UpdatedAt time.Time
}

func (sessionRecord) TableName() string { return "session" }

// Session is the logged-in user plus the server session cookie.
type Session struct {
	ServerURL string
	User      groundcheck.User
	Cookie    string
}

// SessionStore keeps at most one session.
type SessionStore struct {
	mu sync.Mutex
	db *gorm.DB
}

func (s *SessionStore) Save(ctx context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	rec := sessionRecord{ID: 1, ServerURL: sess.ServerURL, User: datatypes.JSON(user), Cookie: sess.Cookie}
	return s.db.WithContext(ctx).Save(&rec).Error
}

// Load returns ErrNoSession when nobody is logged in.
func (s *SessionStore) Load(ctx context.Context) (*Session, error) {
	var rec sessionRecord
	if err := s.db.WithContext(ctx).First(&rec, 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	sess := &Session{ServerURL: rec.ServerURL, Cookie: rec.Cookie}
	if err := json.Unmarshal(rec.User, &sess.User); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return sess, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, 1).Error
}
