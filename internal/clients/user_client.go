package clients

import (
	"context"
	"net/http"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type UserClient interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

type userHTTPClient struct {
	users *Resource[domain.User]
}

func NewUserHTTPClient(baseURL string, client *http.Client, logger *logrus.Logger) UserClient {
	return &userHTTPClient{users: NewResource[domain.User](baseURL, "users", client, logger)}
}

func (c *userHTTPClient) ListUsers(ctx context.Context) ([]domain.User, error) {
	return c.users.List(ctx, nil)
}

func (c *userHTTPClient) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return c.users.Get(ctx, id)
}
