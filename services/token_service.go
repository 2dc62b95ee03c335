package services

import (
	"errors"
	"fmt"
	"time"

	"rkive-api/config"
	"rkive-api/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	AccessToken  = "access"
	RefreshToken = "refresh"
)

type Claims struct {
	UserID    uint     `json:"user_id"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	TokenType string   `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type TokenService struct {
	db         *gorm.DB
	cache      *RedisService
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(db *gorm.DB, cache *RedisService, settings *config.Settings) *TokenService {
	if db == nil {
		db = config.DB
	}
	if settings == nil {
		settings = config.Current
	}
	accessTTL := settings.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	refreshTTL := settings.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		db:         db,
		cache:      cache,
		secret:     []byte(settings.JWTSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *TokenService) sign(account *models.Account, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    account.ID,
		Email:     account.Email,
		Roles:     account.Roles.Names(),
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(account.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// IssuePair signs a new access and refresh token for account.
func (s *TokenService) IssuePair(account *models.Account) (*TokenPair, error) {
	access, err := s.sign(account, AccessToken, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(account, RefreshToken, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Parse validates signature, expiry and type of a token.
func (s *TokenService) Parse(tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Refresh exchanges a valid, unrevoked refresh token for a new access token.
func (s *TokenService) Refresh(refreshToken string, accounts *AccountService) (string, error) {
	claims, err := s.Parse(refreshToken, RefreshToken)
	if err != nil {
		return "", err
	}
	revoked, err := s.IsRevoked(claims.ID)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrInvalidToken
	}

	account, err := accounts.Get(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if !account.IsActive {
		return "", ErrInactiveAccount
	}
	return s.sign(account, AccessToken, s.accessTTL)
}

func revokedKey(jti string) string { return "revoked_token:" + jti }

// Revoke blacklists a refresh token until it expires. Invalid tokens are ignored.
func (s *TokenService) Revoke(refreshToken string) error {
	claims, err := s.Parse(refreshToken, RefreshToken)
	if err != nil {
		return nil
	}
	expires := claims.ExpiresAt.Time

	if s.cache.Enabled() {
		ttl := expires.Sub(s.now())
		if ttl <= 0 {
			return nil
		}
		return s.cache.Set(revokedKey(claims.ID), true, ttl)
	}

	return s.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.RevokedToken{JTI: claims.ID, ExpiresAt: expires}).Error
}

func (s *TokenService) IsRevoked(jti string) (bool, error) {
	if s.cache.Enabled() {
		return s.cache.Exists(revokedKey(jti))
	}
	var count int64
	if err := s.db.Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
