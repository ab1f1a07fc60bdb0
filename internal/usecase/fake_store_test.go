package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

// fakeStore stands in for the remote REST store behind all three clients.
// Calls are logged as "METHOD /path" and any of them can be made to fail.
type fakeStore struct {
	mu       sync.Mutex
	products map[string]domain.Product
	cart     []domain.CartEntry
	users    []domain.User
	nextID   int
	calls    []string
	failOn   map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: map[string]domain.Product{},
		failOn:   map[string]error{},
		nextID:   100,
	}
}

func (s *fakeStore) call(name string) error {
	s.calls = append(s.calls, name)
	if err, ok := s.failOn[name]; ok {
		return err
	}
	return nil
}

func (s *fakeStore) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *fakeStore) resetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *fakeStore) stock(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *fakeStore) cartIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []string{}
	for _, e := range s.cart {
		ids = append(ids, e.ID)
	}
	return ids
}

// ProductClient

func (s *fakeStore) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GET /products"); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(s.products))
	for id := range s.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.products[id])
	}
	return out, nil
}

func (s *fakeStore) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GET /products/" + id); err != nil {
		return nil, err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	return &p, nil
}

func (s *fakeStore) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("POST /products"); err != nil {
		return nil, err
	}
	s.nextID++
	product.ID = strconv.Itoa(s.nextID)
	s.products[product.ID] = product
	return &product, nil
}

func (s *fakeStore) UpdateProduct(_ context.Context, id string, fields map[string]interface{}) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("PUT /products/" + id); err != nil {
		return nil, err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	if v, ok := fields["name"].(string); ok {
		p.Name = v
	}
	if v, ok := fields["price"].(float64); ok {
		p.Price = v
	}
	if v, ok := fields["description"].(string); ok {
		p.Description = v
	}
	if v, ok := fields["stock"].(int); ok {
		p.Stock = v
	}
	if v, ok := fields["image"].(string); ok {
		p.Image = v
	}
	s.products[id] = p
	return &p, nil
}

func (s *fakeStore) UpdateStock(_ context.Context, id string, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("PUT /products/" + id); err != nil {
		return err
	}
	p, ok := s.products[id]
	if !ok {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	p.Stock = stock
	s.products[id] = p
	return nil
}

func (s *fakeStore) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("DELETE /products/" + id); err != nil {
		return err
	}
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	delete(s.products, id)
	return nil
}

// CartClient

func (s *fakeStore) ListByUser(_ context.Context, userID string) ([]domain.CartEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GET /cart?userId=" + userID); err != nil {
		return nil, err
	}
	out := []domain.CartEntry{}
	for _, e := range s.cart {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) Create(_ context.Context, entry domain.CartEntry) (*domain.CartEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("POST /cart"); err != nil {
		return nil, err
	}
	s.nextID++
	entry.ID = strconv.Itoa(s.nextID)
	s.cart = append(s.cart, entry)
	return &entry, nil
}

func (s *fakeStore) UpdateQuantity(_ context.Context, cartID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("PUT /cart/" + cartID); err != nil {
		return err
	}
	for i := range s.cart {
		if s.cart[i].ID == cartID {
			s.cart[i].Quantity = quantity
			return nil
		}
	}
	return fmt.Errorf("%w: cart entry %s", domain.ErrNotFound, cartID)
}

func (s *fakeStore) Delete(_ context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("DELETE /cart/" + cartID); err != nil {
		return err
	}
	for i := range s.cart {
		if s.cart[i].ID == cartID {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: cart entry %s", domain.ErrNotFound, cartID)
}

// UserClient

func (s *fakeStore) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GET /users"); err != nil {
		return nil, err
	}
	return append([]domain.User(nil), s.users...), nil
}

func (s *fakeStore) GetUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("GET /users/" + id); err != nil {
		return nil, err
	}
	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
}

type recordingRecorder struct {
	mu      sync.Mutex
	records []domain.ReconciliationRecord
	ctxErrs []error
}

func (r *recordingRecorder) Record(ctx context.Context, rec domain.ReconciliationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
