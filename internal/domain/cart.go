package domain

import "context"

// CartEntry is one line of a user's cart as stored remotely. Product is a
// snapshot taken when the entry was written and may be stale.
type CartEntry struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	UserID    string  `json:"userId"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

func (e CartEntry) Subtotal() float64 {
	return e.Product.Price * float64(e.Quantity)
}

func TotalPrice(entries []CartEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.Subtotal()
	}
	return total
}

// CartView is the per-session working set of the cart page: the last
// successfully fetched entries, the error banner and the checkout dialog.
// Items are only ever replaced wholesale.
type CartView struct {
	Items    []CartEntry   `json:"items"`
	Banner   string        `json:"error,omitempty"`
	Checkout CheckoutState `json:"checkoutState"`
	Loaded   bool          `json:"loaded"`
}

func NewCartView() *CartView {
	return &CartView{Items: []CartEntry{}, Checkout: CheckoutIdle}
}

func (v *CartView) Find(cartID string) (CartEntry, bool) {
	for _, e := range v.Items {
		if e.ID == cartID {
			return e, true
		}
	}
	return CartEntry{}, false
}

func (v *CartView) Replace(items []CartEntry) {
	fresh := make([]CartEntry, len(items))
	copy(fresh, items)
	v.Items = fresh
	v.Loaded = true
}

// Clear drops the items after a failed load so no partial data is shown.
func (v *CartView) Clear() {
	v.Items = []CartEntry{}
	v.Loaded = false
}

func (v *CartView) Fail(err error) {
	v.Banner = BannerMessage(err)
}

func (v *CartView) Total() float64 { return TotalPrice(v.Items) }

func (v *CartView) IsEmpty() bool { return len(v.Items) == 0 }

// CheckoutResult tells the caller where to go after a completed purchase.
type CheckoutResult struct {
	Removed  int    `json:"removed"`
	NextPath string `json:"nextPath"`
}

// CartUseCase runs the cart page operations. Every call takes the current
// user explicitly and the session's view, which it refreshes from the store
// after each successful mutation.
type CartUseCase interface {
	Load(ctx context.Context, user User, view *CartView) error
	AddToCart(ctx context.Context, user User, view *CartView, productID string, quantity int) error
	UpdateQuantity(ctx context.Context, user User, view *CartView, cartID string, quantity int) error
	Remove(ctx context.Context, user User, view *CartView, cartID string) error
	OpenCheckout(view *CartView) error
	CancelCheckout(view *CartView) error
	Checkout(ctx context.Context, user User, view *CartView) (*CheckoutResult, error)
}
