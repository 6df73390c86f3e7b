package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stitchline/backend/internal/infrastructure/auth"
	"github.com/stitchline/backend/internal/infrastructure/logger"
	"github.com/stitchline/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey    = "jwt_claims"
	PrincipalKey    = "principal"
	UserIDKey       = "user_id"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
	adminOnlyReason = "Admin access required"
)

// TokenValidator verifies bearer tokens
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// JWTAuth requires a valid bearer token. A missing token is a 401 and an
// invalid or expired one is a 400.
func JWTAuth(validator TokenValidator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Access token required")
			return
		}
		if err := authenticate(c, validator, token); err != nil {
			log.Debug("JWT authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
			code, message := dto.ErrCodeInvalidToken, "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				code, message = dto.ErrCodeTokenExpired, "Token has expired"
			}
			abortWithError(c, http.StatusBadRequest, code, message)
			return
		}
		c.Next()
	}
}

// OptionalJWTAuth attaches the caller when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalJWTAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			_ = authenticate(c, validator, token)
		}
		c.Next()
	}
}

// RequireAdmin rejects authenticated callers without the admin role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetPrincipal(c).IsAdmin() {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, adminOnlyReason)
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated caller, or the anonymous principal
func GetPrincipal(c *gin.Context) shared.Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(shared.Principal); ok {
			return p
		}
	}
	return shared.Principal{}
}

// GetJWTClaims retrieves the verified claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func authenticate(c *gin.Context, validator TokenValidator, token string) error {
	claims, err := validator.ValidateToken(token)
	if err != nil {
		return err
	}
	principal, err := claims.Principal()
	if err != nil {
		return err
	}

	c.Set(JWTClaimsKey, claims)
	c.Set(PrincipalKey, principal)
	c.Set(UserIDKey, claims.UserID)

	ctx := c.Request.Context()
	ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
	c.Request = c.Request.WithContext(ctx)
	return nil
}
