package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key the request ID is stored under.
// The request logger and the error envelope both read it.
const RequestIDKey = "request_id"

// RequestID stamps every request with an ID, honoring X-Request-ID when
// the caller supplies one, and echoes it back in the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = newRequestID()
		}
		c.Set(RequestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func newRequestID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// A timestamp still gives the logs something to correlate on.
		return time.Now().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(buf)
}
