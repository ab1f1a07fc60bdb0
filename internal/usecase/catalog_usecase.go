package usecase

import (
	"context"
	"fmt"

	"storefront/internal/clients"
	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type catalogUseCase struct {
	productClient clients.ProductClient
	log           *logrus.Logger
}

func NewCatalogUseCase(productClient clients.ProductClient, logger *logrus.Logger) domain.CatalogUseCase {
	return &catalogUseCase{productClient: productClient, log: logger}
}

func (uc *catalogUseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := uc.productClient.ListProducts(ctx)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to load products: %v", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrLoadProducts, err)
	}
	return products, nil
}

func (uc *catalogUseCase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: product id is required", domain.ErrInvalidInput)
	}
	product, err := uc.productClient.GetProduct(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to load product %s: %v", id, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrLoadProducts, err)
	}
	return product, nil
}
