package domain

import (
	"context"
	"fmt"
	"strings"
)

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image"`
	CreatedAt   string  `json:"createdAt"`
}

func (p Product) InStock() bool { return p.Stock > 0 }

// ProductInput holds the fields an admin can edit.
type ProductInput struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Stock       int     `json:"stock"`
	Image       string  `json:"image"`
}

func (in ProductInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: product name cannot be empty", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("%w: product description cannot be empty", ErrInvalidInput)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: product price cannot be negative", ErrInvalidInput)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: product stock cannot be negative", ErrInvalidInput)
	}
	return nil
}

// Fields is the partial-update body sent to PUT /products/{id}.
func (in ProductInput) Fields() map[string]interface{} {
	return map[string]interface{}{
		"name":        in.Name,
		"price":       in.Price,
		"description": in.Description,
		"stock":       in.Stock,
		"image":       in.Image,
	}
}

type CatalogUseCase interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
}

// AdminUseCase edits the catalog. Each successful mutation returns the
// freshly fetched product list.
type AdminUseCase interface {
	CreateProduct(ctx context.Context, user User, in ProductInput) ([]Product, error)
	UpdateProduct(ctx context.Context, user User, id string, in ProductInput) ([]Product, error)
	DeleteProduct(ctx context.Context, user User, id string) ([]Product, error)
}
