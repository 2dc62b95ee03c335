package models

import "time"

// PasswordResetToken is a single-use reset link. Only the SHA-256 of the token
// sent by mail is stored.
type PasswordResetToken struct {
	ID        uint       `gorm:"primaryKey;column:id" json:"id"`
	AccountID uint       `gorm:"column:account_id;not null;index" json:"account_id"`
	TokenHash string     `gorm:"column:token_hash;size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null;index" json:"expires_at"`
	UsedAt    *time.Time `gorm:"column:used_at" json:"used_at,omitempty"`
	IPAddress string     `gorm:"column:ip_address;size:45" json:"ip_address"`
	UserAgent string     `gorm:"column:user_agent;size:255" json:"user_agent"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
