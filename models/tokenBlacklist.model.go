package models

import (
	"time"

	"gorm.io/gorm"
)

// TokenBlacklist stores the jti of access tokens revoked by logout until they expire.
type TokenBlacklist struct {
	gorm.Model
	JTI       string    `gorm:"size:64;uniqueIndex;not null" json:"jti"`
	UserID    uint      `gorm:"index" json:"user_id"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
}
