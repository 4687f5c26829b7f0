package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	iauth "github.com/charlesng35/bellcenter/internal/auth"
	"github.com/charlesng35/bellcenter/pkg/errors"
	"github.com/charlesng35/bellcenter/pkg/response"
)

const (
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"

	// UserIDHeader carries the caller identity when a trusted gateway authenticates requests.
	UserIDHeader = "X-User-Id"
)

// IdentityOptions configure how the caller identity is established.
type IdentityOptions struct {
	JWT *iauth.JWTService
	// TrustUserHeader accepts UserIDHeader when no bearer token is presented.
	TrustUserHeader bool
}

// Identity resolves the calling user from a bearer token, or from UserIDHeader when
// trusted, and stores it under CtxUserIDKey. Requests without an identity get a 401.
func Identity(opts IdentityOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := resolveIdentity(c, opts)
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		parsed, err := uuid.Parse(userID)
		if err != nil {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, parsed.String())
		c.Next()
	}
}

func resolveIdentity(c *gin.Context, opts IdentityOptions) (string, bool) {
	authz := c.GetHeader("Authorization")
	if len(authz) >= 8 && strings.EqualFold(authz[:7], "Bearer ") {
		if opts.JWT == nil {
			return "", false
		}
		claims, err := opts.JWT.ValidateAccessToken(strings.TrimSpace(authz[7:]))
		if err != nil {
			// a presented but invalid token never falls back to the header
			return "", false
		}
		c.Set(CtxClaimsKey, claims)
		return claims.Identity(), true
	}

	if opts.TrustUserHeader {
		if header := strings.TrimSpace(c.GetHeader(UserIDHeader)); header != "" {
			return header, true
		}
	}
	return "", false
}

// UserID returns the identity stored by Identity.
func UserID(c *gin.Context) (string, bool) {
	userID := c.GetString(CtxUserIDKey)
	return userID, userID != ""
}
