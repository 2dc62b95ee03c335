package controllers

import (
	"errors"
	"net/http"
	"strings"

	"rkive-api/config"
	"rkive-api/middleware"
	"rkive-api/models"
	"rkive-api/services"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenRequest struct {
	Token   string `json:"token"`
	Refresh string `json:"refresh"`
}

type ProviderRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

func tokenService() *services.TokenService {
	return services.NewTokenService(config.DB, services.NewRedisService(nil), config.Current)
}

func sameSiteMode(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteDefaultMode
	}
}

func setAuthCookie(c *gin.Context, name, value string, maxAge int) {
	s := config.Current
	c.SetSameSite(sameSiteMode(s.CookieSameSite))
	c.SetCookie(name, value, maxAge, s.CookiePath, s.CookieDomain, s.CookieSecure, s.CookieHTTPOnly)
}

func setTokenCookies(c *gin.Context, tokens *services.TokenService, pair *services.TokenPair) {
	setAuthCookie(c, middleware.AccessCookie, pair.Access, int(tokens.AccessTTL().Seconds()))
	setAuthCookie(c, middleware.RefreshCookie, pair.Refresh, int(tokens.RefreshTTL().Seconds()))
}

func clearTokenCookies(c *gin.Context) {
	setAuthCookie(c, middleware.AccessCookie, "", -1)
	setAuthCookie(c, middleware.RefreshCookie, "", -1)
}

// CreateToken handles password login
// @Summary      Obtain a token pair
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /jwt/create [post]
func CreateToken(c *gin.Context) {
	var req LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	account, err := services.NewAccountService(config.DB).Authenticate(req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tokens := tokenService()
	pair, err := tokens.IssuePair(account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	setTokenCookies(c, tokens, pair)
	c.JSON(http.StatusOK, gin.H{
		"access":  pair.Access,
		"refresh": pair.Refresh,
		"user":    account,
	})
}

// RefreshToken issues a new access token from the refresh cookie or body
// @Summary      Refresh the access token
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /jwt/refresh [post]
func RefreshToken(c *gin.Context) {
	var req TokenRequest
	_ = c.ShouldBindJSON(&req)

	refresh := req.Refresh
	if refresh == "" {
		refresh, _ = c.Cookie(middleware.RefreshCookie)
	}
	if refresh == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token was not provided"})
		return
	}

	tokens := tokenService()
	access, err := tokens.Refresh(refresh, services.NewAccountService(config.DB))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	setAuthCookie(c, middleware.AccessCookie, access, int(tokens.AccessTTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{"access": access})
}

// VerifyToken reports whether the access token is valid
// @Summary      Verify an access token
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /jwt/verify [post]
func VerifyToken(c *gin.Context) {
	var req TokenRequest
	_ = c.ShouldBindJSON(&req)

	token := req.Token
	if token == "" {
		token, _ = c.Cookie(middleware.AccessCookie)
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token was not provided"})
		return
	}

	if _, err := tokenService().Parse(token, services.AccessToken); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Logout clears the auth cookies and revokes the refresh token
// @Summary      Log out
// @Tags         Auth
// @Success      204
// @Router       /logout [post]
func Logout(c *gin.Context) {
	var req TokenRequest
	_ = c.ShouldBindJSON(&req)

	refresh := req.Refresh
	if refresh == "" {
		refresh, _ = c.Cookie(middleware.RefreshCookie)
	}
	if refresh != "" {
		if err := tokenService().Revoke(refresh); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revoke token"})
			return
		}
	}

	clearTokenCookies(c)
	c.Status(http.StatusNoContent)
}

// ProviderAuth signs in through an external identity provider
// @Summary      Sign in with an identity provider
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        provider path string true "Provider name, e.g. google"
// @Param        request body ProviderRequest true "Provider ID token"
// @Success      201  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /o/{provider} [post]
func ProviderAuth(c *gin.Context) {
	var req ProviderRequest
	if !bindAndValidate(c, &req) {
		return
	}

	providers := services.NewProviderService(services.NewAccountService(config.DB), IdentityVerifiers)
	account, created, err := providers.Authenticate(c.Param("provider"), req.IDToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tokens := tokenService()
	pair, err := tokens.IssuePair(account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	setTokenCookies(c, tokens, pair)
	c.JSON(http.StatusCreated, gin.H{
		"access":  pair.Access,
		"refresh": pair.Refresh,
		"user":    account,
		"created": created,
	})
}

// Register creates an active student account
// @Summary      Self-service registration
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body services.AccountInput true "Account"
// @Success      201  {object}  models.Account
// @Failure      400  {object}  map[string]string
// @Router       /register [post]
func Register(c *gin.Context) {
	var input services.AccountInput
	if !bindAndValidate(c, &input) {
		return
	}
	input.Roles = nil
	input.IsActive = nil

	account, err := services.NewAccountService(config.DB).Register(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

// UserRole returns the roles of the signed-in account
// @Summary      Current account roles
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /user-role [get]
func UserRole(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	if account == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":        account.Email,
		"roles":        account.Roles.Names(),
		"is_active":    account.IsActive,
		"is_staff":     account.Roles.HasAny(models.RoleStaff, models.RoleSuperuser),
		"is_superuser": account.Roles.Has(models.RoleSuperuser),
	})
}

// GetProfile returns current user profile
func GetProfile(c *gin.Context) {
	account := middleware.CurrentAccount(c)
	if account == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": account})
}

// ChangePassword handles password change
func ChangePassword(c *gin.Context) {
	var req PasswordChangeRequest
	if !bindAndValidate(c, &req) {
		return
	}

	userID := middleware.CurrentUserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	err := services.NewAccountService(config.DB).ChangePassword(*userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
