package grpc

import (
	"context"
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubUsers struct{ users []domain.User }

func (s *stubUsers) ListUsers(context.Context) ([]domain.User, error) { return s.users, nil }
func (s *stubUsers) GetUser(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

// memoryCart is a tiny cart use case that keeps entries in the view only.
type memoryCart struct {
	failRemove bool
}

func (m *memoryCart) Load(_ context.Context, _ domain.User, view *domain.CartView) error {
	if !view.Loaded {
		view.Replace([]domain.CartEntry{
			{ID: "A", ProductID: "p1", Quantity: 2, Product: domain.Product{Price: 10000}},
			{ID: "B", ProductID: "p2", Quantity: 3, Product: domain.Product{Price: 5000}},
		})
	}
	return nil
}

func (m *memoryCart) AddToCart(context.Context, domain.User, *domain.CartView, string, int) error {
	return fmt.Errorf("%w: %w", domain.ErrAddToCart, domain.ErrInsufficientStock)
}

func (m *memoryCart) UpdateQuantity(_ context.Context, _ domain.User, view *domain.CartView, cartID string, q int) error {
	if q < 1 {
		return nil
	}
	for i := range view.Items {
		if view.Items[i].ID == cartID {
			view.Items[i].Quantity = q
		}
	}
	return nil
}

func (m *memoryCart) Remove(_ context.Context, _ domain.User, view *domain.CartView, cartID string) error {
	if m.failRemove {
		err := fmt.Errorf("%w: %w", domain.ErrRemoveItem, domain.ErrRemote)
		view.Fail(err)
		return err
	}
	kept := []domain.CartEntry{}
	for _, e := range view.Items {
		if e.ID != cartID {
			kept = append(kept, e)
		}
	}
	view.Replace(kept)
	return nil
}

func (m *memoryCart) OpenCheckout(view *domain.CartView) error {
	next, err := view.Checkout.Open()
	view.Checkout = next
	return err
}

func (m *memoryCart) CancelCheckout(view *domain.CartView) error {
	next, err := view.Checkout.Cancel()
	view.Checkout = next
	return err
}

func (m *memoryCart) Checkout(_ context.Context, _ domain.User, view *domain.CartView) (*domain.CheckoutResult, error) {
	next, err := view.Checkout.Begin()
	if err != nil {
		return nil, err
	}
	removed := len(view.Items)
	view.Checkout, _ = next.Finish(nil)
	view.Clear()
	return &domain.CheckoutResult{Removed: removed, NextPath: domain.UserDashboardPath}, nil
}

type fixture struct {
	conn  *grpc.ClientConn
	cart  *memoryCart
	users domain.UserUseCase
	log   *logrus.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := usecase.NewAuthUseCase(&stubUsers{users: []domain.User{
		{ID: "1", Email: "admin@shop.id", Password: "admin123", Role: domain.RoleAdmin},
		{ID: "2", Email: "budi@shop.id", Password: "user123", Role: domain.RoleUser},
	}}, repository.NewMemorySessionRepository(time.Hour, logger), logger)
	cart := &memoryCart{}

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterCartServiceServer(srv, NewCartHandler(cart, users, logger))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &fixture{conn: conn, cart: cart, users: users, log: logger}
}

func (f *fixture) client(t *testing.T, email, password string) *CartClient {
	t.Helper()
	session, err := f.users.Login(context.Background(), email, password)
	require.NoError(t, err)
	return NewCartClient(f.conn, session.Token, f.log)
}

func TestGetCartOverGRPC(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, "budi@shop.id", "user123")

	out, err := c.GetCart(context.Background())
	require.NoError(t, err)
	fields := out.GetFields()
	assert.Equal(t, float64(35000), fields["total"].GetNumberValue())
	assert.Equal(t, "Rp 35,000", fields["totalDisplay"].GetStringValue())
	assert.Len(t, fields["items"].GetListValue().GetValues(), 2)
	assert.Equal(t, "idle", fields["checkoutState"].GetStringValue())
}

func TestSessionStateSurvivesBetweenCalls(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, "budi@shop.id", "user123")
	ctx := context.Background()

	_, err := c.GetCart(ctx)
	require.NoError(t, err)
	out, err := c.RemoveItem(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, out.GetFields()["items"].GetListValue().GetValues(), 1)

	out, err = c.UpdateQuantity(ctx, "B", 4)
	require.NoError(t, err)
	assert.Equal(t, float64(20000), out.GetFields()["total"].GetNumberValue())
}

func TestCheckoutOverGRPC(t *testing.T) {
	f := newFixture(t)
	c := f.client(t, "budi@shop.id", "user123")
	ctx := context.Background()

	_, err := c.GetCart(ctx)
	require.NoError(t, err)

	_, err = c.Checkout(ctx)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = c.OpenCheckout(ctx)
	require.NoError(t, err)
	_, err = c.CancelCheckout(ctx)
	require.NoError(t, err)
	_, err = c.OpenCheckout(ctx)
	require.NoError(t, err)

	out, err := c.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/user/dashboard", out.GetFields()["redirect"].GetStringValue())
	assert.Equal(t, float64(2), out.GetFields()["removed"].GetNumberValue())
}

func TestGRPCErrorMapping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	anonymous := NewCartClient(f.conn, "", f.log)
	_, err := anonymous.GetCart(ctx)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	admin := f.client(t, "admin@shop.id", "admin123")
	_, err = admin.GetCart(ctx)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	user := f.client(t, "budi@shop.id", "user123")
	_, err = user.RemoveItem(ctx, "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = user.AddToCart(ctx, "p1", 9)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Equal(t, "Failed to add item to cart", status.Convert(err).Message())

	f.cart.failRemove = true
	_, err = user.RemoveItem(ctx, "A")
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Equal(t, "Failed to remove item from cart", status.Convert(err).Message())
}
