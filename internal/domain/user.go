package domain

import "context"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User mirrors the remote users collection. Password is whatever the store
// holds: plaintext for the mock API, or a bcrypt hash.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
}

// Public returns a copy safe to hand out or persist in a session.
func (u User) Public() User {
	u.Password = ""
	return u
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

const (
	LoginPath          = "/login"
	AdminDashboardPath = "/admin/dashboard"
	UserDashboardPath  = "/user/dashboard"
)

// HomePath is where the root route sends a visitor.
func HomePath(u *User) string {
	if u == nil {
		return LoginPath
	}
	switch u.Role {
	case RoleAdmin:
		return AdminDashboardPath
	case RoleUser:
		return UserDashboardPath
	default:
		return LoginPath
	}
}

type UserUseCase interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, token string) error
	CurrentSession(ctx context.Context, token string) (*Session, error)
	WithSession(ctx context.Context, token string, fn func(*Session) error) error
}
