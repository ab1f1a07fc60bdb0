package delivery

import (
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	admin   domain.AdminUseCase
	catalog domain.CatalogUseCase
	log     *logrus.Logger
}

func NewAdminHandler(admin domain.AdminUseCase, catalog domain.CatalogUseCase, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, catalog: catalog, log: logger}
}

func (h *AdminHandler) RegisterRoutes(router gin.IRouter) {
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

func (h *AdminHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context())
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), userMessage(err))
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", toProductViews(products))
}

func (h *AdminHandler) bindInput(c *gin.Context) (domain.ProductInput, bool) {
	var in domain.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.log.Warnf("Failed to bind product input: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return in, false
	}
	return in, true
}

func (h *AdminHandler) CreateProduct(c *gin.Context) {
	in, ok := h.bindInput(c)
	if !ok {
		return
	}
	session := currentSession(c)
	products, err := h.admin.CreateProduct(c.Request.Context(), session.User, in)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), userMessage(err))
		return
	}
	SuccessResponse(c, http.StatusCreated, "Product created successfully", toProductViews(products))
}

func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	in, ok := h.bindInput(c)
	if !ok {
		return
	}
	session := currentSession(c)
	products, err := h.admin.UpdateProduct(c.Request.Context(), session.User, c.Param("id"), in)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), userMessage(err))
		return
	}
	SuccessResponse(c, http.StatusOK, "Product updated successfully", toProductViews(products))
}

func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	session := currentSession(c)
	products, err := h.admin.DeleteProduct(c.Request.Context(), session.User, c.Param("id"))
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), userMessage(err))
		return
	}
	SuccessResponse(c, http.StatusOK, "Product deleted successfully", toProductViews(products))
}
