package domain

import (
	"context"
	"time"
)

// Session is the server-side equivalent of the browser-persisted login: the
// current user plus that user's cart page state.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	Cart      *CartView `json:"cart"`
	CreatedAt time.Time `json:"createdAt"`
}

type SessionRepository interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

// ReconciliationRecord describes a multi-step operation that stopped half
// way and left remote state needing manual repair.
type ReconciliationRecord struct {
	ID        int64     `json:"id"`
	Operation string    `json:"operation"`
	UserID    string    `json:"userId"`
	CartID    string    `json:"cartId,omitempty"`
	ProductID string    `json:"productId,omitempty"`
	Detail    string    `json:"detail"`
	Cause     string    `json:"cause"`
	CreatedAt time.Time `json:"createdAt"`
}

type ReconciliationRecorder interface {
	Record(ctx context.Context, rec ReconciliationRecord) error
}
