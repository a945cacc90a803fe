package models

import (
	"time"

	"gorm.io/gorm"
)

const OTPPurposeEmailVerification = "email_verification"

// OTPState is derived from the stored fields on every read and is never persisted.
type OTPState string

const (
	OTPActive    OTPState = "active"
	OTPUsed      OTPState = "used"
	OTPExpired   OTPState = "expired"
	OTPExhausted OTPState = "exhausted"
)

type OTP struct {
	gorm.Model
	UserID      uint      `gorm:"not null;index:idx_otp_user_email" json:"user_id"`
	Email       string    `gorm:"size:254;not null;index:idx_otp_user_email" json:"email"`
	Code        string    `gorm:"size:6;not null" json:"-"`
	ExpiresAt   time.Time `gorm:"not null" json:"expires_at"`
	IsUsed      bool      `gorm:"default:false" json:"is_used"`
	Attempts    int       `gorm:"default:0" json:"attempts"`
	Description string    `gorm:"size:255" json:"description,omitempty"`
	IsDeleted   bool      `gorm:"default:false" json:"-"`
}

// State reports where the challenge sits in its lifecycle at time now.
// Used wins over Expired, and Expired over Exhausted.
func (o OTP) State(now time.Time, maxAttempts int) OTPState {
	switch {
	case o.IsUsed:
		return OTPUsed
	case now.After(o.ExpiresAt):
		return OTPExpired
	case o.Attempts >= maxAttempts:
		return OTPExhausted
	default:
		return OTPActive
	}
}

func (o OTP) IsActive(now time.Time, maxAttempts int) bool {
	return o.State(now, maxAttempts) == OTPActive
}
