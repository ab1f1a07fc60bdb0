package delivery

import (
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CatalogHandler struct {
	useCase domain.CatalogUseCase
	log     *logrus.Logger
}

func NewCatalogHandler(uc domain.CatalogUseCase, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{useCase: uc, log: logger}
}

// productView adds the display price the storefront shows next to each item.
type productView struct {
	domain.Product
	PriceDisplay string `json:"priceDisplay"`
	InStock      bool   `json:"inStock"`
}

func toProductViews(products []domain.Product) []productView {
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, productView{Product: p, PriceDisplay: domain.FormatRupiah(p.Price), InStock: p.InStock()})
	}
	return out
}

func (h *CatalogHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/products", h.ListProducts)
	router.GET("/products/:id", h.GetProduct)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.useCase.ListProducts(c.Request.Context())
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), userMessage(err))
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", toProductViews(products))
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.useCase.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), userMessage(err))
		return
	}
	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", toProductViews([]domain.Product{*product})[0])
}
