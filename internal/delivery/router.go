package delivery

import (
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Auth    *AuthHandler
	Catalog *CatalogHandler
	Cart    *CartHandler
	Admin   *AdminHandler
}

// NewRouter wires every route with its guard.
func NewRouter(h Handlers, users domain.UserUseCase, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/", h.Auth.Home)
	router.POST("/login", h.Auth.Login)

	authed := router.Group("/")
	authed.Use(SessionAuth(users, logger))
	authed.POST("/logout", h.Auth.Logout)

	userGroup := authed.Group("/user")
	userGroup.Use(RequireRole(domain.RoleUser, logger))
	h.Catalog.RegisterRoutes(userGroup)
	h.Cart.RegisterRoutes(userGroup)

	adminGroup := authed.Group("/admin")
	adminGroup.Use(RequireRole(domain.RoleAdmin, logger))
	h.Admin.RegisterRoutes(adminGroup)

	return router
}
