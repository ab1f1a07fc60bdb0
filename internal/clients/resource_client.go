package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

// Resource is a thin CRUD accessor for one collection of the remote REST
// store. There are no retries and no batching; every call is one request.
type Resource[T any] struct {
	name    string
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

func NewResource[T any](baseURL, name string, client *http.Client, logger *logrus.Logger) *Resource[T] {
	return &Resource[T]{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		log:     logger,
	}
}

// NewHTTPClient builds the client shared by every resource.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func (r *Resource[T]) collectionURL(query url.Values) string {
	u := fmt.Sprintf("%s/%s", r.baseURL, r.name)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (r *Resource[T]) itemURL(id string) string {
	return fmt.Sprintf("%s/%s/%s", r.baseURL, r.name, url.PathEscape(id))
}

// List fetches the collection, optionally filtered. The mock store answers a
// filter with no matches with 404, so that is reported as an empty list.
func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	var items []T
	err := r.do(ctx, http.MethodGet, r.collectionURL(query), nil, &items)
	if err != nil {
		if len(query) > 0 && isNotFound(err) {
			r.log.Debugf("ResourceClient: %s filter %s matched nothing", r.name, query.Encode())
			return []T{}, nil
		}
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	var item T
	if err := r.do(ctx, http.MethodGet, r.itemURL(id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Resource[T]) Create(ctx context.Context, body interface{}) (*T, error) {
	var item T
	if err := r.do(ctx, http.MethodPost, r.collectionURL(nil), body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update sends a partial body; only the fields present are changed.
func (r *Resource[T]) Update(ctx context.Context, id string, fields interface{}) (*T, error) {
	var item T
	if err := r.do(ctx, http.MethodPut, r.itemURL(id), fields, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, r.itemURL(id), nil, nil)
}

func (r *Resource[T]) do(ctx context.Context, method, target string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			r.log.Errorf("ResourceClient: Failed to marshal %s %s body: %v", method, r.name, err)
			return fmt.Errorf("failed to prepare %s request body: %w", r.name, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		r.log.Errorf("ResourceClient: Failed to create %s request for %s: %v", method, target, err)
		return fmt.Errorf("failed to create %s request: %w", r.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	r.log.Debugf("ResourceClient: %s %s", method, target)
	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Errorf("ResourceClient: %s %s failed: %v", method, target, err)
		return fmt.Errorf("%w: %s %s: %w", domain.ErrRemote, method, r.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		r.log.Warnf("ResourceClient: %s %s returned 404", method, target)
		return fmt.Errorf("%w: %s at %s", domain.ErrNotFound, r.name, target)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		r.log.Errorf("ResourceClient: %s %s failed with status %d. Response body: %s", method, target, resp.StatusCode, string(bodyBytes))
		return &StatusError{Method: method, URL: target, Code: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		r.log.Errorf("ResourceClient: Failed to decode %s response from %s: %v", r.name, target, err)
		return fmt.Errorf("%w: decode %s response: %w", domain.ErrRemote, r.name, err)
	}
	return nil
}

// StatusError is returned for any non-2xx answer other than 404.
type StatusError struct {
	Method string
	URL    string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote store returned status %d for %s %s", e.Code, e.Method, e.URL)
}

func (e *StatusError) Unwrap() error { return domain.ErrRemote }

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
