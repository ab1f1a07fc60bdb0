package clients

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type ProductClient interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, fields map[string]interface{}) (*domain.Product, error)
	UpdateStock(ctx context.Context, id string, stock int) error
	DeleteProduct(ctx context.Context, id string) error
}

type productHTTPClient struct {
	products *Resource[domain.Product]
	log      *logrus.Logger
}

func NewProductHTTPClient(baseURL string, client *http.Client, logger *logrus.Logger) ProductClient {
	return &productHTTPClient{
		products: NewResource[domain.Product](baseURL, "products", client, logger),
		log:      logger,
	}
}

func (c *productHTTPClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return c.products.List(ctx, nil)
}

func (c *productHTTPClient) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	c.log.Debugf("ProductClient: Requesting product %s", id)
	return c.products.Get(ctx, id)
}

func (c *productHTTPClient) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	created, err := c.products.Create(ctx, product)
	if err != nil {
		return nil, err
	}
	c.log.Infof("ProductClient: Created product %s (%s)", created.ID, created.Name)
	return created, nil
}

func (c *productHTTPClient) UpdateProduct(ctx context.Context, id string, fields map[string]interface{}) (*domain.Product, error) {
	return c.products.Update(ctx, id, fields)
}

// UpdateStock sends only the stock field.
func (c *productHTTPClient) UpdateStock(ctx context.Context, id string, stock int) error {
	if stock < 0 {
		c.log.Errorf("ProductClient: Attempted to set negative stock (%d) for product %s", stock, id)
		return fmt.Errorf("%w: stock cannot be negative", domain.ErrInvalidInput)
	}
	if _, err := c.products.Update(ctx, id, map[string]int{"stock": stock}); err != nil {
		return err
	}
	c.log.Infof("ProductClient: Successfully updated stock for product %s to %d", id, stock)
	return nil
}

func (c *productHTTPClient) DeleteProduct(ctx context.Context, id string) error {
	return c.products.Delete(ctx, id)
}
