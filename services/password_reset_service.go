package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"rkive-api/config"
	"rkive-api/models"

	"gorm.io/gorm"
)

var ErrInvalidResetToken = errors.New("invalid or expired token")

type PasswordResetService struct {
	db       *gorm.DB
	mailer   config.Mailer
	baseURL  string
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

func NewPasswordResetService(db *gorm.DB, mailer config.Mailer, settings *config.Settings) *PasswordResetService {
	if db == nil {
		db = config.DB
	}
	if settings == nil {
		settings = config.Current
	}
	ttl := settings.PasswordResetTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	baseURL := settings.AppBaseURL
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	return &PasswordResetService{db: db, mailer: mailer, baseURL: baseURL, ttl: ttl, now: time.Now, generate: randomToken}
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Request issues a reset link for email. Unknown or inactive accounts succeed
// silently so the endpoint cannot be used to enumerate accounts.
func (s *PasswordResetService) Request(email, ipAddress, userAgent string) error {
	var account models.Account
	err := s.db.Where("email = ?", normalizeEmail(email)).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !account.IsActive {
		return nil
	}

	raw, err := s.generate()
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	now := s.now()
	token := models.PasswordResetToken{
		AccountID: account.ID,
		TokenHash: hashResetToken(raw),
		ExpiresAt: now.Add(s.ttl),
		IPAddress: ipAddress,
		UserAgent: truncate(userAgent, 255),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := revokeResetTokens(tx, account.ID, now); err != nil {
			return err
		}
		return tx.Create(&token).Error
	})
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if s.mailer == nil {
		log.Printf("[mail] password reset for %s not sent: mailer disabled", account.Email)
		return nil
	}
	resetURL, err := buildResetURL(s.baseURL, raw)
	if err != nil {
		return err
	}
	subject, html, err := passwordResetMail(account.FullName(), resetURL, s.ttl)
	if err != nil {
		return err
	}
	return s.mailer.Send([]string{account.Email}, subject, html)
}

// Confirm sets a new password using a token from Request. The token is spent
// even when other reset tokens of the account are still pending.
func (s *PasswordResetService) Confirm(rawToken, password, confirm string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return ErrInvalidResetToken
	}
	if strings.TrimSpace(password) == "" {
		return ErrPasswordRequired
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}

	now := s.now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		var token models.PasswordResetToken
		err := tx.Where("token_hash = ? AND used_at IS NULL AND expires_at > ?", hashResetToken(rawToken), now).
			First(&token).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidResetToken
			}
			return err
		}

		res := tx.Model(&models.Account{}).Where("id = ?", token.AccountID).Update("password", hashed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidResetToken
		}
		return revokeResetTokens(tx, token.AccountID, now)
	})
}

func revokeResetTokens(tx *gorm.DB, accountID uint, now time.Time) error {
	return tx.Model(&models.PasswordResetToken{}).
		Where("account_id = ? AND used_at IS NULL", accountID).
		Update("used_at", now).Error
}

func buildResetURL(baseURL, token string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/reset-password"
	query := parsed.Query()
	query.Set("token", token)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
