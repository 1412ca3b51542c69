package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "jtimer/backend/internal/errors"
	"jtimer/backend/internal/spotify"
)

// RequireCredential rejects playback requests before any upstream call is
// attempted when no bearer credential has been obtained.
func RequireCredential(tokens spotify.TokenSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := tokens.CurrentToken(); !ok {
			writeError(c, apperrors.Unauthenticated(""))
			return
		}
		c.Next()
	}
}

func writeError(c *gin.Context, apiErr *apperrors.APIError) {
	body := gin.H{
		"code":    apiErr.Code,
		"message": apiErr.Message,
	}
	if apiErr.Details != nil {
		body["details"] = apiErr.Details
	}
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": body})
}
