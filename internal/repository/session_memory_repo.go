package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
	log       *logrus.Logger
}

type memoryEntry struct {
	session   domain.Session
	expiresAt time.Time
}

// NewMemorySessionRepository keeps sessions in process memory. Expired
// sessions are dropped on read and swept from Save at most once per TTL.
func NewMemorySessionRepository(ttl time.Duration, logger *logrus.Logger) domain.SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
		log:      logger,
	}
}

func (r *memorySessionRepository) Save(_ context.Context, session *domain.Session) error {
	if session == nil || session.Token == "" {
		return fmt.Errorf("%w: session token is empty", domain.ErrInvalidInput)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.sweepLocked(now)
	r.sessions[session.Token] = memoryEntry{
		session:   cloneSession(session),
		expiresAt: now.Add(r.ttl),
	}
	return nil
}

// sweepLocked drops every expired session. Caller holds the write lock.
func (r *memorySessionRepository) sweepLocked(now time.Time) {
	if r.ttl <= 0 || now.Sub(r.lastSweep) < r.ttl {
		return
	}
	r.lastSweep = now
	dropped := 0
	for token, entry := range r.sessions {
		if now.After(entry.expiresAt) {
			delete(r.sessions, token)
			dropped++
		}
	}
	if dropped > 0 {
		r.log.Debugf("SessionRepository: swept %d expired sessions", dropped)
	}
}

func (r *memorySessionRepository) Get(_ context.Context, token string) (*domain.Session, error) {
	r.mu.RLock()
	entry, ok := r.sessions[token]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: session", domain.ErrNotFound)
	}
	if r.ttl > 0 && r.now().After(entry.expiresAt) {
		r.mu.Lock()
		// a concurrent Save may have refreshed it
		if current, ok := r.sessions[token]; ok && r.now().After(current.expiresAt) {
			delete(r.sessions, token)
		}
		r.mu.Unlock()
		r.log.Debugf("SessionRepository: session expired")
		return nil, fmt.Errorf("%w: session expired", domain.ErrNotFound)
	}
	s := cloneSession(&entry.session)
	return &s, nil
}

func (r *memorySessionRepository) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

// cloneSession copies the cart view so callers never share item slices with
// the stored session.
func cloneSession(s *domain.Session) domain.Session {
	out := *s
	if s.Cart != nil {
		view := *s.Cart
		view.Items = append([]domain.CartEntry{}, s.Cart.Items...)
		out.Cart = &view
	}
	return out
}
