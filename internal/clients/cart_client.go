package clients

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type CartClient interface {
	ListByUser(ctx context.Context, userID string) ([]domain.CartEntry, error)
	Create(ctx context.Context, entry domain.CartEntry) (*domain.CartEntry, error)
	UpdateQuantity(ctx context.Context, cartID string, quantity int) error
	Delete(ctx context.Context, cartID string) error
}

type cartHTTPClient struct {
	cart *Resource[domain.CartEntry]
	log  *logrus.Logger
}

func NewCartHTTPClient(baseURL string, client *http.Client, logger *logrus.Logger) CartClient {
	return &cartHTTPClient{
		cart: NewResource[domain.CartEntry](baseURL, "cart", client, logger),
		log:  logger,
	}
}

// ListByUser returns the user's entries in the order the store returns them.
func (c *cartHTTPClient) ListByUser(ctx context.Context, userID string) ([]domain.CartEntry, error) {
	return c.cart.List(ctx, url.Values{"userId": []string{userID}})
}

func (c *cartHTTPClient) Create(ctx context.Context, entry domain.CartEntry) (*domain.CartEntry, error) {
	body := map[string]interface{}{
		"productId": entry.ProductID,
		"userId":    entry.UserID,
		"quantity":  entry.Quantity,
		"product":   entry.Product,
	}
	created, err := c.cart.Create(ctx, body)
	if err != nil {
		return nil, err
	}
	c.log.Infof("CartClient: Created cart entry %s for user %s", created.ID, created.UserID)
	return created, nil
}

// UpdateQuantity sends only the quantity field.
func (c *cartHTTPClient) UpdateQuantity(ctx context.Context, cartID string, quantity int) error {
	_, err := c.cart.Update(ctx, cartID, map[string]int{"quantity": quantity})
	return err
}

func (c *cartHTTPClient) Delete(ctx context.Context, cartID string) error {
	return c.cart.Delete(ctx, cartID)
}
