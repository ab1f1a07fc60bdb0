package delivery

import (
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	useCase domain.UserUseCase
	log     *logrus.Logger
}

func NewAuthHandler(uc domain.UserUseCase, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{useCase: uc, log: logger}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string      `json:"token"`
	User     domain.User `json:"user"`
	Redirect string      `json:"redirect"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind login request: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.useCase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.log.Warnf("Login failed for %s: %v", req.Email, err)
		ErrorResponse(c, mapErrorToStatus(err), userMessage(err))
		return
	}

	SuccessResponse(c, http.StatusOK, "Login successful", LoginResponse{
		Token:    session.Token,
		User:     session.User,
		Redirect: domain.HomePath(&session.User),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(ctxToken)
	if err := h.useCase.Logout(c.Request.Context(), token); err != nil {
		h.log.Errorf("Logout failed: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Logout failed")
		return
	}
	SuccessResponse(c, http.StatusOK, "Logged out", gin.H{"redirect": domain.LoginPath})
}

// Home tells the client where a visitor belongs. A missing or stale token is
// not an error here; it simply leads to the login page.
func (h *AuthHandler) Home(c *gin.Context) {
	var user *domain.User
	if token, ok := bearerToken(c); ok {
		if session, err := h.useCase.CurrentSession(c.Request.Context(), token); err == nil {
			user = &session.User
		}
	}
	SuccessResponse(c, http.StatusOK, "Redirect", gin.H{"redirect": domain.HomePath(user)})
}
