package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/clients"
	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

var _ domain.CartUseCase = (*cartUseCase)(nil)

const recordTimeout = 5 * time.Second

type cartUseCase struct {
	cartClient    clients.CartClient
	productClient clients.ProductClient
	recorder      domain.ReconciliationRecorder
	log           *logrus.Logger
}

func NewCartUseCase(cartClient clients.CartClient, productClient clients.ProductClient,
	recorder domain.ReconciliationRecorder, logger *logrus.Logger) domain.CartUseCase {
	return &cartUseCase{
		cartClient:    cartClient,
		productClient: productClient,
		recorder:      recorder,
		log:           logger,
	}
}

// refresh replaces the view's items with a fresh fetch. On error the view is
// left untouched.
func (uc *cartUseCase) refresh(ctx context.Context, user domain.User, view *domain.CartView) error {
	entries, err := uc.cartClient.ListByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	view.Replace(entries)
	return nil
}

func (uc *cartUseCase) fail(view *domain.CartView, kind error, err error) error {
	wrapped := fmt.Errorf("%w: %w", kind, err)
	view.Fail(wrapped)
	return wrapped
}

func requireUser(user domain.User) error {
	if user.ID == "" {
		return fmt.Errorf("%w: no current user", domain.ErrUnauthenticated)
	}
	return nil
}

func (uc *cartUseCase) Load(ctx context.Context, user domain.User, view *domain.CartView) error {
	if err := requireUser(user); err != nil {
		return err
	}
	view.Banner = ""
	uc.log.Infof("Use Case: Loading cart for user %s", user.ID)
	if err := uc.refresh(ctx, user, view); err != nil {
		uc.log.Warnf("Use Case: Failed to load cart for user %s: %v", user.ID, err)
		view.Clear()
		return uc.fail(view, domain.ErrLoadCart, err)
	}
	uc.log.Infof("Use Case: Loaded %d cart entries for user %s", len(view.Items), user.ID)
	return nil
}

func (uc *cartUseCase) UpdateQuantity(ctx context.Context, user domain.User, view *domain.CartView, cartID string, quantity int) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if quantity < 1 {
		uc.log.Debugf("Use Case: Ignoring quantity %d for cart entry %s", quantity, cartID)
		return nil
	}

	uc.log.Infof("Use Case: Setting quantity of cart entry %s to %d for user %s", cartID, quantity, user.ID)
	if err := uc.cartClient.UpdateQuantity(ctx, cartID, quantity); err != nil {
		uc.log.Warnf("Use Case: Quantity update for cart entry %s failed: %v", cartID, err)
		return uc.fail(view, domain.ErrUpdateQuantity, err)
	}
	if err := uc.refresh(ctx, user, view); err != nil {
		uc.log.Warnf("Use Case: Re-fetch after quantity update failed for user %s: %v", user.ID, err)
		return uc.fail(view, domain.ErrUpdateQuantity, err)
	}
	return nil
}

// Remove gives the entry's quantity back to the product's stock, then deletes
// the entry. Stock is read fresh from the product rather than from the cart's
// snapshot. If the product is gone (404) the restore is skipped and the entry
// is still deleted. The two writes are not atomic; a failure after the stock
// write is recorded for manual reconciliation.
func (uc *cartUseCase) Remove(ctx context.Context, user domain.User, view *domain.CartView, cartID string) error {
	if err := requireUser(user); err != nil {
		return err
	}
	entry, ok := view.Find(cartID)
	if !ok {
		uc.log.Debugf("Use Case: Cart entry %s not in current view, nothing to remove", cartID)
		return nil
	}

	uc.log.Infof("Use Case: Removing cart entry %s (product %s, quantity %d) for user %s",
		entry.ID, entry.ProductID, entry.Quantity, user.ID)

	restored := false
	product, err := uc.productClient.GetProduct(ctx, entry.ProductID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		uc.log.Warnf("Use Case: Product %s no longer exists, removing cart entry %s without restoring stock", entry.ProductID, entry.ID)
	case err != nil:
		uc.log.Warnf("Use Case: Could not read product %s before restoring stock: %v", entry.ProductID, err)
		return uc.fail(view, domain.ErrRemoveItem, err)
	default:
		newStock := product.Stock + entry.Quantity
		if err := uc.productClient.UpdateStock(ctx, entry.ProductID, newStock); err != nil {
			uc.log.Warnf("Use Case: Failed to restore stock for product %s: %v", entry.ProductID, err)
			return uc.fail(view, domain.ErrRemoveItem, err)
		}
		restored = true
		uc.log.Infof("Use Case: Restored stock for product %s from %d to %d", entry.ProductID, product.Stock, newStock)
	}

	if err := uc.cartClient.Delete(ctx, entry.ID); err != nil {
		uc.log.Errorf("Use Case: Failed to delete cart entry %s: %v", entry.ID, err)
		if restored {
			uc.reconcile(ctx, domain.ReconciliationRecord{
				Operation: "remove",
				UserID:    user.ID,
				CartID:    entry.ID,
				ProductID: entry.ProductID,
				Detail:    fmt.Sprintf("stock of product %s raised by %d but cart entry %s was not deleted", entry.ProductID, entry.Quantity, entry.ID),
				Cause:     err.Error(),
			})
		}
		return uc.fail(view, domain.ErrRemoveItem, err)
	}

	if err := uc.refresh(ctx, user, view); err != nil {
		uc.log.Warnf("Use Case: Re-fetch after removing cart entry %s failed: %v", entry.ID, err)
		return uc.fail(view, domain.ErrRemoveItem, err)
	}
	uc.log.Infof("Use Case: Cart entry %s removed for user %s", entry.ID, user.ID)
	return nil
}

// AddToCart reserves stock for the product and records the reservation as a
// cart entry. An existing entry for the same product is grown instead of
// duplicated.
func (uc *cartUseCase) AddToCart(ctx context.Context, user domain.User, view *domain.CartView, productID string, quantity int) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidInput)
	}

	uc.log.Infof("Use Case: Adding %d of product %s to cart for user %s", quantity, productID, user.ID)

	entries, err := uc.cartClient.ListByUser(ctx, user.ID)
	if err != nil {
		return uc.fail(view, domain.ErrAddToCart, err)
	}
	var existing *domain.CartEntry
	for i := range entries {
		if entries[i].ProductID == productID {
			existing = &entries[i]
			break
		}
	}

	product, err := uc.productClient.GetProduct(ctx, productID)
	if err != nil {
		uc.log.Warnf("Use Case: Inventory check failed for product %s: %v", productID, err)
		return uc.fail(view, domain.ErrAddToCart, err)
	}
	if product.Stock < quantity {
		uc.log.Warnf("Use Case: Insufficient stock for product %s (requested %d, available %d)", productID, quantity, product.Stock)
		return uc.fail(view, domain.ErrAddToCart, fmt.Errorf("%w: product %s has %d left, requested %d",
			domain.ErrInsufficientStock, productID, product.Stock, quantity))
	}

	newStock := product.Stock - quantity
	if err := uc.productClient.UpdateStock(ctx, productID, newStock); err != nil {
		uc.log.Warnf("Use Case: Failed to reserve stock for product %s: %v", productID, err)
		return uc.fail(view, domain.ErrAddToCart, err)
	}
	product.Stock = newStock

	if existing != nil {
		err = uc.cartClient.UpdateQuantity(ctx, existing.ID, existing.Quantity+quantity)
	} else {
		_, err = uc.cartClient.Create(ctx, domain.CartEntry{
			ProductID: productID,
			UserID:    user.ID,
			Quantity:  quantity,
			Product:   *product,
		})
	}
	if err != nil {
		uc.log.Errorf("Use Case: Stock for product %s reserved but cart write failed: %v", productID, err)
		rec := domain.ReconciliationRecord{
			Operation: "add",
			UserID:    user.ID,
			ProductID: productID,
			Detail:    fmt.Sprintf("stock of product %s lowered by %d but no cart entry holds it", productID, quantity),
			Cause:     err.Error(),
		}
		if existing != nil {
			rec.CartID = existing.ID
		}
		uc.reconcile(ctx, rec)
		return uc.fail(view, domain.ErrAddToCart, err)
	}

	if err := uc.refresh(ctx, user, view); err != nil {
		uc.log.Warnf("Use Case: Re-fetch after adding product %s failed: %v", productID, err)
		return uc.fail(view, domain.ErrAddToCart, err)
	}
	uc.log.Infof("Use Case: Product %s added to cart for user %s", productID, user.ID)
	return nil
}

func (uc *cartUseCase) OpenCheckout(view *domain.CartView) error {
	if view.IsEmpty() {
		return fmt.Errorf("%w: cart is empty", domain.ErrInvalidInput)
	}
	next, err := view.Checkout.Open()
	if err != nil {
		return err
	}
	view.Checkout = next
	return nil
}

func (uc *cartUseCase) CancelCheckout(view *domain.CartView) error {
	next, err := view.Checkout.Cancel()
	if err != nil {
		return err
	}
	view.Checkout = next
	return nil
}

// Checkout deletes the view's entries one by one in list order and stops at
// the first failure. An entry that no longer exists counts as removed, so a
// retry after a partial failure can finish without a reload. Stock is not touched; it was reserved when the items
// were added.
func (uc *cartUseCase) Checkout(ctx context.Context, user domain.User, view *domain.CartView) (*domain.CheckoutResult, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	processing, err := view.Checkout.Begin()
	if err != nil {
		return nil, err
	}
	view.Checkout = processing

	uc.log.Infof("Use Case: Checking out %d cart entries for user %s", len(view.Items), user.ID)

	removed := 0
	var failed error
	for _, entry := range view.Items {
		err := uc.cartClient.Delete(ctx, entry.ID)
		if errors.Is(err, domain.ErrNotFound) {
			// deleted by an earlier attempt
			uc.log.Warnf("Use Case: Cart entry %s was already removed, continuing checkout", entry.ID)
			err = nil
		}
		if err != nil {
			uc.log.Errorf("Use Case: Checkout stopped at cart entry %s: %v", entry.ID, err)
			failed = err
			if removed > 0 {
				uc.reconcile(ctx, domain.ReconciliationRecord{
					Operation: "checkout",
					UserID:    user.ID,
					CartID:    entry.ID,
					Detail:    fmt.Sprintf("%d of %d cart entries deleted before the failure", removed, len(view.Items)),
					Cause:     err.Error(),
				})
			}
			break
		}
		removed++
	}

	// Finish cannot fail here, the state was set to processing above.
	view.Checkout, _ = view.Checkout.Finish(failed)
	if failed != nil {
		return &domain.CheckoutResult{Removed: removed}, uc.fail(view, domain.ErrCheckout, failed)
	}

	view.Clear()
	uc.log.Infof("Use Case: Checkout completed for user %s, %d entries removed", user.ID, removed)
	return &domain.CheckoutResult{Removed: removed, NextPath: domain.UserDashboardPath}, nil
}

func (uc *cartUseCase) reconcile(ctx context.Context, rec domain.ReconciliationRecord) {
	uc.log.Errorf("Use Case: CRITICAL! %s for user %s: %s. Manual reconciliation required!", rec.Operation, rec.UserID, rec.Detail)
	if uc.recorder == nil {
		return
	}
	// must outlive a cancelled request
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := uc.recorder.Record(recordCtx, rec); err != nil {
		uc.log.Errorf("Use Case: Failed to record reconciliation entry: %v", err)
	}
}
