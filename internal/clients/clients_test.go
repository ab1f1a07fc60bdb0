package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]interface{}
}

type requestLog struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (l *requestLog) all() []recordedRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]recordedRequest(nil), l.reqs...)
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *requestLog) {
	t.Helper()
	log := &requestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			assert.NoError(t, json.Unmarshal(raw, &rec.Body))
		}
		log.mu.Lock()
		log.reqs = append(log.reqs, rec)
		log.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, log
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestProductClientUpdateStockSendsOnlyStock(t *testing.T) {
	srv, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(domain.Product{ID: "7", Stock: 12})
	})
	c := NewProductHTTPClient(srv.URL, NewHTTPClient(time.Second), quietLogger())

	require.NoError(t, c.UpdateStock(context.Background(), "7", 12))

	require.Len(t, seen.all(), 1)
	req := seen.all()[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/products/7", req.Path)
	assert.Equal(t, map[string]interface{}{"stock": float64(12)}, req.Body)
}

func TestProductClientRejectsNegativeStockWithoutRequest(t *testing.T) {
	srv, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	c := NewProductHTTPClient(srv.URL, NewHTTPClient(time.Second), quietLogger())

	err := c.UpdateStock(context.Background(), "7", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, seen.all())
}

func TestProductClientGetNotFound(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `"Not found"`, http.StatusNotFound)
	})
	c := NewProductHTTPClient(srv.URL, NewHTTPClient(time.Second), quietLogger())

	_, err := c.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductClientServerError(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := NewProductHTTPClient(srv.URL, NewHTTPClient(time.Second), quietLogger())

	_, err := c.ListProducts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRemote)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
}

func TestCartClientListByUser(t *testing.T) {
	srv, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]domain.CartEntry{
			{ID: "1", ProductID: "p1", UserID: "u1", Quantity: 2},
			{ID: "2", ProductID: "p2", UserID: "u1", Quantity: 1},
		})
	})
	c := NewCartHTTPClient(srv.URL, NewHTTPClient(time.Second), quietLogger())

	entries, err := c.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "1", entries[0].ID)
	assert.Equal(t, "2", entries[1].ID)
	assert.Equal(t, "userId=u1", seen.all()[0].Query)
}

func TestCartClientEmptyFilterIsEmptyList(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `"Not found"`, http.StatusNotFound)
	})
	c := NewCartHTTPClient(srv.URL, NewHTTPClient(time.Second), quietLogger())

	entries, err := c.ListByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCartClientUpdateQuantityAndDelete(t *testing.T) {
	srv, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	c := NewCartHTTPClient(srv.URL, NewHTTPClient(time.Second), quietLogger())

	require.NoError(t, c.UpdateQuantity(context.Background(), "5", 3))
	require.NoError(t, c.Delete(context.Background(), "5"))

	require.Len(t, seen.all(), 2)
	assert.Equal(t, map[string]interface{}{"quantity": float64(3)}, seen.all()[0].Body)
	assert.Equal(t, http.MethodDelete, seen.all()[1].Method)
	assert.Equal(t, "/cart/5", seen.all()[1].Path)
}

func TestCartClientCreateSendsSnapshot(t *testing.T) {
	srv, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"9","productId":"p1","userId":"u1","quantity":2}`))
	})
	c := NewCartHTTPClient(srv.URL, NewHTTPClient(time.Second), quietLogger())

	created, err := c.Create(context.Background(), domain.CartEntry{
		ProductID: "p1", UserID: "u1", Quantity: 2,
		Product: domain.Product{ID: "p1", Name: "Kopi", Price: 25000},
	})
	require.NoError(t, err)
	assert.Equal(t, "9", created.ID)

	body := seen.all()[0].Body
	assert.Equal(t, "p1", body["productId"])
	assert.Equal(t, "u1", body["userId"])
	assert.Equal(t, float64(2), body["quantity"])
	assert.Equal(t, "Kopi", body["product"].(map[string]interface{})["name"])
}

func TestUserClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := NewUserHTTPClient(srv.URL, NewHTTPClient(time.Second), quietLogger())

	_, err := c.ListUsers(context.Background())
	assert.ErrorIs(t, err, domain.ErrRemote)
}
