package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// corsPolicy is the cross-origin policy for the posting API. Origins
// start empty, so browsers get no CORS headers until a deployment
// configures the allowed frontends explicitly.
type corsPolicy struct {
	origins       []string
	methods       string
	headers       string
	exposeHeaders string
	maxAge        string
}

func defaultCORSPolicy() corsPolicy {
	return corsPolicy{
		origins:       nil,
		methods:       "GET, POST, PUT, DELETE, PATCH, OPTIONS",
		headers:       strings.Join([]string{"Content-Type", "Authorization", "X-Request-ID", "Accept", "Origin", "Cache-Control"}, ", "),
		exposeHeaders: "X-Request-ID",
		maxAge:        strconv.Itoa(int((12 * time.Hour).Seconds())),
	}
}

// CORS answers preflight requests and attaches CORS headers for allowed
// origins.
func CORS(origins ...string) gin.HandlerFunc {
	policy := defaultCORSPolicy()
	policy.origins = origins

	return func(c *gin.Context) {
		if origin := policy.allow(c.Request.Header.Get("Origin")); origin != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", policy.methods)
			h.Set("Access-Control-Allow-Headers", policy.headers)
			h.Set("Access-Control-Expose-Headers", policy.exposeHeaders)
			h.Set("Access-Control-Max-Age", policy.maxAge)
			if origin != "*" {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}

		// Preflight requests end here regardless of origin.
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// allow returns the Access-Control-Allow-Origin value for the request
// origin, or "" when the origin is not allowed.
func (p corsPolicy) allow(origin string) string {
	for _, o := range p.origins {
		if o == "*" {
			return "*"
		}
		if o == origin && origin != "" {
			return origin
		}
	}
	return ""
}
