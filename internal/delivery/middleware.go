package delivery

import (
	"net/http"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	ctxToken   = "rawToken"
	ctxSession = "session"
)

// RequestID tags every response so RequestLogger can correlate both lines.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Next()
	}
}

func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		entry := logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"remote_ip": c.ClientIP(),
		})
		if reqID := c.Writer.Header().Get("X-Request-ID"); reqID != "" {
			entry = entry.WithField("request_id", reqID)
		}
		entry.Debug("Incoming request")

		c.Next()

		completed := entry.WithFields(logrus.Fields{
			"status_code": c.Writer.Status(),
			"latency_ms":  time.Since(startTime).Milliseconds(),
		})
		switch status := c.Writer.Status(); {
		case len(c.Errors) > 0:
			completed.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		case status >= 500:
			completed.Error("Request completed with server error")
		case status >= 400:
			completed.Warn("Request completed with client error")
		default:
			completed.Info("Request completed successfully")
		}
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// SessionAuth resolves the bearer token to a session. Anything missing or
// unknown is sent back to the login page.
func SessionAuth(users domain.UserUseCase, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			log.Warn("Middleware: Authorization header is missing or malformed")
			abortWithRedirect(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		session, err := users.CurrentSession(c.Request.Context(), token)
		if err != nil {
			log.Warnf("Middleware: Session lookup failed: %v", err)
			abortWithRedirect(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		c.Set(ctxToken, token)
		c.Set(ctxSession, session)
		c.Next()
	}
}

// RequireRole lets only sessions of the given role through.
func RequireRole(role domain.Role, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := currentSession(c)
		if session == nil {
			abortWithRedirect(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		if session.User.Role != role {
			log.Warnf("Middleware: User %s with role %q denied access to %s", session.User.ID, session.User.Role, c.Request.URL.Path)
			abortWithRedirect(c, http.StatusForbidden, "Access denied")
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *domain.Session {
	v, ok := c.Get(ctxToken)
	if !ok || v.(string) == "" {
		return nil
	}
	s, ok := c.Get(ctxSession)
	if !ok {
		return nil
	}
	session, _ := s.(*domain.Session)
	return session
}
