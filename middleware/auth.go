package middleware

import (
	"errors"
	"net/http"
	"strings"

	"rkive-api/config"
	"rkive-api/models"
	"rkive-api/services"

	"github.com/gin-gonic/gin"
)

// AccessCookie and RefreshCookie carry the tokens for browser clients.
const (
	AccessCookie  = "access"
	RefreshCookie = "refresh"
)

// Context keys set by AuthMiddleware.
const (
	CtxUserID  = "userID"
	CtxEmail   = "email"
	CtxRoles   = "roles"
	CtxAccount = "account"
)

// BearerOrCookie returns the access token from the Authorization header, or
// from the access cookie when no header is sent.
func BearerOrCookie(c *gin.Context) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
			return "", errors.New("Invalid authorization header format")
		}
		return strings.TrimSpace(tokenString), nil
	}
	if cookie, err := c.Cookie(AccessCookie); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", errors.New("Authentication credentials were not provided")
}

// AuthMiddleware validates the access token and loads the account.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := BearerOrCookie(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		tokens := services.NewTokenService(config.DB, services.NewRedisService(nil), config.Current)
		claims, err := tokens.Parse(tokenString, services.AccessToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// Check if user still exists and is active
		account, err := services.NewAccountService(config.DB).Get(claims.UserID)
		if err != nil || !account.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found or inactive"})
			c.Abort()
			return
		}

		c.Set(CtxUserID, account.ID)
		c.Set(CtxEmail, account.Email)
		c.Set(CtxRoles, account.Roles)
		c.Set(CtxAccount, account)

		c.Next()
	}
}

// RequireRole passes accounts holding any of roles. Superusers always pass.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(CtxRoles)
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role not found"})
			c.Abort()
			return
		}

		held, _ := value.(models.Roles)
		if !held.Has(models.RoleSuperuser) && !held.HasAny(roles...) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentAccount returns the account loaded by AuthMiddleware.
func CurrentAccount(c *gin.Context) *models.Account {
	value, ok := c.Get(CtxAccount)
	if !ok {
		return nil
	}
	account, _ := value.(*models.Account)
	return account
}

// CurrentUserID returns the authenticated account id, or nil.
func CurrentUserID(c *gin.Context) *uint {
	value, ok := c.Get(CtxUserID)
	if !ok {
		return nil
	}
	id, ok := value.(uint)
	if !ok {
		return nil
	}
	return &id
}
