package graphql

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/gophcoach/internal/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestLogger tags every request with an id (reusing a client supplied
// X-Request-ID) and logs it once the handler chain has finished.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(common.RequestIDHeaderName, id)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), id))

		c.Next()

		s.logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", id,
		)
	}
}

// authenticate attaches the caller identity to the request context. It never
// rejects a request: a missing or bad token means an anonymous caller.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := s.users.Authenticate(tokenFromHeader(c.GetHeader(common.AuthorizationHeaderName)))
		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func tokenFromHeader(h string) string {
	for _, prefix := range common.AuthorizationPrefixes {
		if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
			return strings.TrimSpace(h[len(prefix):])
		}
	}
	return ""
}
