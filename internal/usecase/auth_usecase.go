package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/internal/clients"
	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var _ domain.UserUseCase = (*authUseCase)(nil)

type authUseCase struct {
	userClient clients.UserClient
	sessions   domain.SessionRepository
	log        *logrus.Logger

	// one mutex per session token while anyone holds or waits for it; cart
	// operations of a session never overlap
	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewAuthUseCase(userClient clients.UserClient, sessions domain.SessionRepository, logger *logrus.Logger) domain.UserUseCase {
	return &authUseCase{
		userClient: userClient,
		sessions:   sessions,
		log:        logger,
		locks:      make(map[string]*sessionLock),
	}
}

// Login looks the credentials up in the remote user list and opens a session.
func (uc *authUseCase) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	uc.log.Infof("Use Case: Login attempt for email: %s", email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	users, err := uc.userClient.ListUsers(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to fetch users for login: %v", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrLogin, err)
	}

	var found *domain.User
	for i := range users {
		if strings.EqualFold(users[i].Email, email) && passwordMatches(users[i].Password, password) {
			found = &users[i]
			break
		}
	}
	if found == nil {
		uc.log.Warnf("Use Case: Login failed - invalid credentials for %s", email)
		return nil, domain.ErrInvalidCredentials
	}

	session := &domain.Session{
		Token:     uuid.NewString(),
		User:      found.Public(),
		Cart:      domain.NewCartView(),
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		uc.log.Errorf("Use Case: Failed to store session for user %s: %v", found.ID, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrLogin, err)
	}
	uc.log.Infof("Use Case: User %s logged in with role %s", found.ID, found.Role)
	return session, nil
}

// passwordMatches accepts bcrypt hashes as well as the plaintext values the
// mock store holds.
func passwordMatches(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return stored != "" && stored == given
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func (uc *authUseCase) Logout(ctx context.Context, token string) error {
	if err := uc.sessions.Delete(ctx, token); err != nil {
		return err
	}
	uc.log.Info("Use Case: Session closed")
	return nil
}

func (uc *authUseCase) CurrentSession(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	session, err := uc.sessions.Get(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if session.Cart == nil {
		session.Cart = domain.NewCartView()
	}
	return session, nil
}

// lockFor takes the token's mutex. The entry is dropped when the last holder
// unlocks, so the table only holds tokens with calls in flight.
func (uc *authUseCase) lockFor(token string) func() {
	uc.locksMu.Lock()
	l, ok := uc.locks[token]
	if !ok {
		l = &sessionLock{}
		uc.locks[token] = l
	}
	l.refs++
	uc.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		uc.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(uc.locks, token)
		}
		uc.locksMu.Unlock()
	}
}


// WithSession runs fn on the session under the session's lock and stores the
// result, even when fn fails, so the error banner and checkout state persist.
func (uc *authUseCase) WithSession(ctx context.Context, token string, fn func(*domain.Session) error) error {
	if token == "" {
		return domain.ErrUnauthenticated
	}
	unlock := uc.lockFor(token)
	defer unlock()

	session, err := uc.CurrentSession(ctx, token)
	if err != nil {
		return err
	}

	fnErr := fn(session)
	if err := uc.sessions.Save(ctx, session); err != nil {
		uc.log.Errorf("Use Case: Failed to persist session state: %v", err)
		if fnErr == nil {
			return err
		}
	}
	return fnErr
}
