package models

import "time"

// RevokedToken blacklists a refresh token id until it would have expired anyway.
type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;column:jti;size:36" json:"jti"`
	ExpiresAt time.Time `gorm:"column:expires_at;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}

// All returns every model managed by AutoMigrate, parents first.
func All() []interface{} {
	return []interface{}{
		&Account{},
		&Faculty{},
		&Manuscript{},
		&ApplicationDefense{},
		&PanelDefense{},
		&SubmissionReview{},
		&GenerationJob{},
		&RevokedToken{},
		&PasswordResetToken{},
	}
}
