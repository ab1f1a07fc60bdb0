package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid checkout transition")
	ErrRemote            = errors.New("remote store request failed")
)

// Operation categories. Each one maps to exactly one user-facing banner.
var (
	ErrLoadCart           = errors.New("failed to load cart items")
	ErrUpdateQuantity     = errors.New("failed to update quantity")
	ErrRemoveItem         = errors.New("failed to remove item from cart")
	ErrAddToCart          = errors.New("failed to add item to cart")
	ErrCheckout           = errors.New("failed to process checkout")
	ErrLoadProducts       = errors.New("failed to load products")
	ErrAddProduct         = errors.New("failed to add product")
	ErrUpdateProduct      = errors.New("failed to update product")
	ErrDeleteProduct      = errors.New("failed to delete product")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLogin              = errors.New("login failed")
)

var banners = []struct {
	kind    error
	message string
}{
	{ErrLoadCart, "Failed to load cart items"},
	{ErrUpdateQuantity, "Failed to update quantity"},
	{ErrRemoveItem, "Failed to remove item from cart"},
	{ErrAddToCart, "Failed to add item to cart"},
	{ErrCheckout, "Failed to process checkout"},
	{ErrLoadProducts, "Failed to load products"},
	{ErrAddProduct, "Failed to add product"},
	{ErrUpdateProduct, "Failed to update product"},
	{ErrDeleteProduct, "Failed to delete product"},
	{ErrInvalidCredentials, "Invalid email or password"},
	{ErrLogin, "Login failed. Please try again."},
}

// BannerMessage returns the single message shown for err's operation
// category. Causes are deliberately not exposed.
func BannerMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, b := range banners {
		if errors.Is(err, b.kind) {
			return b.message
		}
	}
	return "Something went wrong"
}
