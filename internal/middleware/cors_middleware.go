package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OriginPolicy reports whether a browser origin may talk to the control API.
// A "*" entry allows every origin.
type OriginPolicy struct {
	any     bool
	allowed map[string]struct{}
}

func NewOriginPolicy(origins []string) OriginPolicy {
	policy := OriginPolicy{allowed: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			policy.any = true
		}
		policy.allowed[origin] = struct{}{}
	}
	return policy
}

func (p OriginPolicy) Allows(origin string) bool {
	if p.any {
		return true
	}
	_, ok := p.allowed[origin]
	return ok
}

// CheckOrigin is shaped for websocket upgraders. Requests without an Origin
// header do not come from a browser and are accepted.
func (p OriginPolicy) CheckOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || p.Allows(origin)
}

func CORS(policy OriginPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && policy.Allows(origin) {
			if policy.any {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
		}

		c.Header("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
