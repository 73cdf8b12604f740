package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the structured rejection body returned to clients.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// BlacklistChecker is the engine-side contract the interceptor consumes.
// The check never returns an error: storage failures degrade to "not
// blacklisted" inside the engine.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, token string) bool
}

// TokenExtractor pulls a candidate token from the request. The second
// return value reports whether a token was extractable at all.
type TokenExtractor func(c *gin.Context) (string, bool)

// BearerTokenExtractor extracts a bearer-scheme credential from the
// Authorization header.
func BearerTokenExtractor() TokenExtractor {
	return func(c *gin.Context) (string, bool) {
		header := c.GetHeader("Authorization")
		if header == "" {
			return "", false
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			return "", false
		}
		return token, true
	}
}

// RejectBlacklisted short-circuits requests presenting a revoked token with
// 401 and a structured body. Requests without an extractable token pass
// through unmodified: enforcing that a token exists is an authentication
// concern that belongs to the host application, not to revocation.
func RejectBlacklisted(checker BlacklistChecker, extract TokenExtractor) gin.HandlerFunc {
	if extract == nil {
		extract = BearerTokenExtractor()
	}

	return func(c *gin.Context) {
		token, ok := extract(c)
		if !ok {
			c.Next()
			return
		}

		if checker.IsBlacklisted(c.Request.Context(), token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:  "token_revoked",
				Error: "token has been revoked",
			})
			return
		}

		c.Next()
	}
}
