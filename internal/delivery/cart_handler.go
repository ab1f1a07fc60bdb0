package delivery

import (
	"context"
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CartHandler struct {
	cart  domain.CartUseCase
	users domain.UserUseCase
	log   *logrus.Logger
}

func NewCartHandler(cart domain.CartUseCase, users domain.UserUseCase, logger *logrus.Logger) *CartHandler {
	return &CartHandler{cart: cart, users: users, log: logger}
}

type cartItemView struct {
	domain.CartEntry
	Subtotal        float64 `json:"subtotal"`
	SubtotalDisplay string  `json:"subtotalDisplay"`
}

type CartResponse struct {
	Items         []cartItemView       `json:"items"`
	Total         float64              `json:"total"`
	TotalDisplay  string               `json:"totalDisplay"`
	Error         string               `json:"error,omitempty"`
	CheckoutState domain.CheckoutState `json:"checkoutState"`
	Empty         bool                 `json:"empty"`
}

// NewCartResponse renders the view; the total is derived here on every call.
func NewCartResponse(view *domain.CartView) CartResponse {
	items := make([]cartItemView, 0, len(view.Items))
	for _, e := range view.Items {
		items = append(items, cartItemView{CartEntry: e, Subtotal: e.Subtotal(), SubtotalDisplay: domain.FormatRupiah(e.Subtotal())})
	}
	total := view.Total()
	return CartResponse{
		Items:         items,
		Total:         total,
		TotalDisplay:  domain.FormatRupiah(total),
		Error:         view.Banner,
		CheckoutState: view.Checkout,
		Empty:         view.IsEmpty(),
	}
}

type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *CartHandler) RegisterRoutes(router gin.IRouter) {
	cart := router.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.POST("", h.AddToCart)
		cart.PUT("/:id", h.UpdateQuantity)
		cart.DELETE("/:id", h.RemoveItem)
		cart.POST("/checkout/open", h.OpenCheckout)
		cart.POST("/checkout/cancel", h.CancelCheckout)
		cart.POST("/checkout", h.Checkout)
	}
}

// run executes op on the caller's session under its lock and answers with the
// resulting cart view.
func (h *CartHandler) run(c *gin.Context, successMsg string, op func(ctx context.Context, s *domain.Session) (interface{}, error)) {
	ctx := c.Request.Context()
	var (
		extra interface{}
		view  *domain.CartView
	)
	err := h.users.WithSession(ctx, c.GetString(ctxToken), func(s *domain.Session) error {
		var opErr error
		extra, opErr = op(ctx, s)
		view = s.Cart
		return opErr
	})
	if err != nil {
		h.log.Warnf("Cart operation failed: %v", err)
		if view == nil {
			ErrorResponse(c, mapErrorToStatus(err), userMessage(err))
			return
		}
		FailResponse(c, mapErrorToStatus(err), userMessage(err), NewCartResponse(view))
		return
	}
	if extra != nil {
		SuccessResponse(c, http.StatusOK, successMsg, extra)
		return
	}
	SuccessResponse(c, http.StatusOK, successMsg, NewCartResponse(view))
}

func (h *CartHandler) GetCart(c *gin.Context) {
	h.run(c, "Cart retrieved successfully", func(ctx context.Context, s *domain.Session) (interface{}, error) {
		return nil, h.cart.Load(ctx, s.User, s.Cart)
	})
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	h.run(c, "Item added to cart", func(ctx context.Context, s *domain.Session) (interface{}, error) {
		return nil, h.cart.AddToCart(ctx, s.User, s.Cart, req.ProductID, req.Quantity)
	})
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	cartID := c.Param("id")
	h.run(c, "Quantity updated", func(ctx context.Context, s *domain.Session) (interface{}, error) {
		return nil, h.cart.UpdateQuantity(ctx, s.User, s.Cart, cartID, *req.Quantity)
	})
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	cartID := c.Param("id")
	h.run(c, "Item removed from cart", func(ctx context.Context, s *domain.Session) (interface{}, error) {
		return nil, h.cart.Remove(ctx, s.User, s.Cart, cartID)
	})
}

func (h *CartHandler) OpenCheckout(c *gin.Context) {
	h.run(c, "Confirm your purchase", func(_ context.Context, s *domain.Session) (interface{}, error) {
		return nil, h.cart.OpenCheckout(s.Cart)
	})
}

func (h *CartHandler) CancelCheckout(c *gin.Context) {
	h.run(c, "Checkout cancelled", func(_ context.Context, s *domain.Session) (interface{}, error) {
		return nil, h.cart.CancelCheckout(s.Cart)
	})
}

func (h *CartHandler) Checkout(c *gin.Context) {
	h.run(c, "Checkout completed", func(ctx context.Context, s *domain.Session) (interface{}, error) {
		result, err := h.cart.Checkout(ctx, s.User, s.Cart)
		if err != nil {
			return nil, err
		}
		return gin.H{
			"removed":  result.Removed,
			"redirect": result.NextPath,
			"cart":     NewCartResponse(s.Cart),
		}, nil
	})
}
