package delivery

import (
	"errors"
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Data    interface{} `json:"Data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

// FailResponse is used when the client still needs the current state, e.g.
// the cart view with its error banner after a failed mutation.
func FailResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
		Data:    data,
	})
}

func abortWithRedirect(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
		Data:    gin.H{"redirect": domain.LoginPath},
	})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRemote):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// userMessage never exposes the wrapped cause.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "Authentication required"
	case errors.Is(err, domain.ErrForbidden):
		return "Access denied"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "Checkout is not awaiting confirmation"
	}
	msg := domain.BannerMessage(err)
	if msg == "Something went wrong" && errors.Is(err, domain.ErrInvalidInput) {
		return err.Error()
	}
	return msg
}
