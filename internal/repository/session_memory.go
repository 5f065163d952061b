package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/futig/oportune/internal/entity"
	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps advisory sessions between requests.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *entity.Session) (*entity.Session, error)
	GetSessionByID(ctx context.Context, id string) (*entity.Session, error)
	UpdateSession(ctx context.Context, id string, fn func(*entity.Session) error) (*entity.Session, error)
	DeleteSession(ctx context.Context, id string) error
	Count() int
}

var _ SessionRepository = &SessionMemory{}

type sessionEntry struct {
	mu      sync.Mutex
	session *entity.Session
}

// SessionMemory stores sessions in process memory. Entries expire after the
// TTL since their last write. Callers always receive copies.
type SessionMemory struct {
	cache *cache.Cache
	now   func() time.Time
}

func NewSessionMemory(ttl, cleanupInterval time.Duration) *SessionMemory {
	return &SessionMemory{
		cache: cache.New(ttl, cleanupInterval),
		now:   time.Now,
	}
}

func (r *SessionMemory) CreateSession(_ context.Context, session *entity.Session) (*entity.Session, error) {
	stored := session.Clone()
	if err := r.cache.Add(session.ID, &sessionEntry{session: stored}, cache.DefaultExpiration); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return stored.Clone(), nil
}

func (r *SessionMemory) GetSessionByID(_ context.Context, id string) (*entity.Session, error) {
	entry, err := r.entry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session.Clone(), nil
}

// UpdateSession runs fn under the session lock. Changes are kept only when
// fn succeeds, and a successful update restarts the expiration timer.
func (r *SessionMemory) UpdateSession(_ context.Context, id string, fn func(*entity.Session) error) (*entity.Session, error) {
	entry, err := r.entry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	working := entry.session.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = r.now()
	entry.session = working
	r.cache.SetDefault(id, entry)

	return working.Clone(), nil
}

func (r *SessionMemory) DeleteSession(_ context.Context, id string) error {
	if _, err := r.entry(id); err != nil {
		return err
	}
	r.cache.Delete(id)
	return nil
}

func (r *SessionMemory) Count() int {
	return r.cache.ItemCount()
}

func (r *SessionMemory) entry(id string) (*sessionEntry, error) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrSessionNotFound, id)
	}
	return v.(*sessionEntry), nil
}
