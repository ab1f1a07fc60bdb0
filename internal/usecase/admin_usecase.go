package usecase

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/clients"
	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type adminUseCase struct {
	productClient clients.ProductClient
	log           *logrus.Logger
	now           func() time.Time
}

func NewAdminUseCase(productClient clients.ProductClient, logger *logrus.Logger) domain.AdminUseCase {
	return &adminUseCase{productClient: productClient, log: logger, now: time.Now}
}

func requireAdmin(user domain.User) error {
	if user.ID == "" {
		return domain.ErrUnauthenticated
	}
	if !user.IsAdmin() {
		return fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	return nil
}

func (uc *adminUseCase) reload(ctx context.Context) ([]domain.Product, error) {
	products, err := uc.productClient.ListProducts(ctx)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to reload products after admin change: %v", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrLoadProducts, err)
	}
	return products, nil
}

func (uc *adminUseCase) CreateProduct(ctx context.Context, user domain.User, in domain.ProductInput) ([]domain.Product, error) {
	if err := requireAdmin(user); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAddProduct, err)
	}

	created, err := uc.productClient.CreateProduct(ctx, domain.Product{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		Stock:       in.Stock,
		Image:       in.Image,
		CreatedAt:   uc.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		uc.log.Errorf("Use Case: Admin %s failed to create product %q: %v", user.ID, in.Name, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrAddProduct, err)
	}
	uc.log.Infof("Use Case: Admin %s created product %s", user.ID, created.ID)
	return uc.reload(ctx)
}

func (uc *adminUseCase) UpdateProduct(ctx context.Context, user domain.User, id string, in domain.ProductInput) ([]domain.Product, error) {
	if err := requireAdmin(user); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: %w: product id is required", domain.ErrUpdateProduct, domain.ErrInvalidInput)
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpdateProduct, err)
	}

	if _, err := uc.productClient.UpdateProduct(ctx, id, in.Fields()); err != nil {
		uc.log.Errorf("Use Case: Admin %s failed to update product %s: %v", user.ID, id, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrUpdateProduct, err)
	}
	uc.log.Infof("Use Case: Admin %s updated product %s", user.ID, id)
	return uc.reload(ctx)
}

func (uc *adminUseCase) DeleteProduct(ctx context.Context, user domain.User, id string) ([]domain.Product, error) {
	if err := requireAdmin(user); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: %w: product id is required", domain.ErrDeleteProduct, domain.ErrInvalidInput)
	}
	if err := uc.productClient.DeleteProduct(ctx, id); err != nil {
		uc.log.Errorf("Use Case: Admin %s failed to delete product %s: %v", user.ID, id, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrDeleteProduct, err)
	}
	uc.log.Infof("Use Case: Admin %s deleted product %s", user.ID, id)
	return uc.reload(ctx)
}
