// Package otp issues and verifies the one-time passcodes that gate email verification.
package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"strings"
	"time"

	"lms/config"
	"lms/models"
	"lms/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultTTL         = 10 * time.Minute
	DefaultMaxAttempts = 3
	DefaultCodeLength  = 6
)

// Sender delivers a freshly issued code to its recipient
type Sender interface {
	DeliverOTP(ctx context.Context, email, code string, expiresAt time.Time) error
}

type Config struct {
	TTL         time.Duration
	MaxAttempts int
	CodeLength  int
	// ResendCooldown is the minimum gap between two challenges for the same
	// (user, email). Zero disables the check.
	ResendCooldown time.Duration
	Now            func() time.Time
}

func ConfigFrom(c config.OTPConfig) Config {
	return Config{
		TTL:            c.TTL,
		MaxAttempts:    c.MaxAttempts,
		ResendCooldown: c.ResendCooldown,
	}
}

type Manager struct {
	db     *gorm.DB
	sender Sender
	cfg    Config
}

func NewManager(db *gorm.DB, sender Sender, cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = DefaultCodeLength
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{db: db, sender: sender, cfg: cfg}
}

func (m *Manager) MaxAttempts() int { return m.cfg.MaxAttempts }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsVerified reports whether the account has confirmed its email
func IsVerified(user models.User) bool {
	return user.IsVerified
}

// Issue supersedes every unused challenge for (user, email) and stores a new one.
// Delivery happens after commit; a delivery failure is logged and the code is
// printed to the console, but the challenge stays valid.
func (m *Manager) Issue(ctx context.Context, user models.User, email string) (*models.OTP, error) {
	email = normalizeEmail(email)
	now := m.cfg.Now()

	code, err := utils.GenerateOTP(m.cfg.CodeLength)
	if err != nil {
		return nil, err
	}

	challenge := models.OTP{
		UserID:      user.ID,
		Email:       email,
		Code:        code,
		ExpiresAt:   now.Add(m.cfg.TTL),
		Description: models.OTPPurposeEmailVerification,
	}
	challenge.CreatedAt = now

	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialises Issue and Verify for the same account
		var owner models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_deleted = ?", user.ID, false).
			First(&owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if m.cfg.ResendCooldown > 0 {
			var latest models.OTP
			err := tx.Where("user_id = ? AND email = ?", user.ID, email).
				Order("created_at DESC, id DESC").
				First(&latest).Error
			if err == nil {
				if wait := m.cfg.ResendCooldown - now.Sub(latest.CreatedAt); wait > 0 {
					return &CooldownError{RetryAfter: wait}
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if err := tx.Model(&models.OTP{}).
			Where("user_id = ? AND email = ? AND is_used = ?", user.ID, email, false).
			Update("is_used", true).Error; err != nil {
			return err
		}

		return tx.Create(&challenge).Error
	})
	if err != nil {
		return nil, err
	}

	m.deliver(ctx, challenge)
	return &challenge, nil
}

func (m *Manager) deliver(ctx context.Context, challenge models.OTP) {
	if m.sender != nil {
		err := m.sender.DeliverOTP(ctx, challenge.Email, challenge.Code, challenge.ExpiresAt)
		if err == nil {
			return
		}
		log.Printf("[OTP] delivery to %s failed: %v", challenge.Email, err)
	}
	log.Printf("[OTP] ==================================================")
	log.Printf("[OTP] EMAIL VERIFICATION CODE for %s: %s (expires %s)",
		challenge.Email, challenge.Code, challenge.ExpiresAt.UTC().Format(time.RFC3339))
	log.Printf("[OTP] ==================================================")
}

// Resend issues a new challenge for an account that is not yet verified
func (m *Manager) Resend(ctx context.Context, email string) (*models.OTP, error) {
	var user models.User
	if err := m.db.WithContext(ctx).
		Where("email = ? AND is_deleted = ?", normalizeEmail(email), false).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if IsVerified(user) {
		return nil, ErrAlreadyVerified
	}
	return m.Issue(ctx, user, user.Email)
}

// Verify checks code against the most recent unused challenge for email.
// A mismatch is persisted before the error is returned, so the failure
// counter survives even though the caller sees an error.
func (m *Manager) Verify(ctx context.Context, email, code string) (*models.User, error) {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)

	var user models.User
	var outcome error

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("email = ? AND is_deleted = ?", email, false).
			First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var challenge models.OTP
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND email = ? AND is_used = ?", user.ID, email, false).
			Order("created_at DESC, id DESC").
			First(&challenge).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoValidChallenge
			}
			return err
		}

		switch challenge.State(m.cfg.Now(), m.cfg.MaxAttempts) {
		case models.OTPExpired:
			return ErrExpired
		case models.OTPExhausted:
			return ErrAttemptsExhausted
		}

		if subtle.ConstantTimeCompare([]byte(code), []byte(challenge.Code)) != 1 {
			challenge.Attempts++
			if err := tx.Model(&challenge).Update("attempts", challenge.Attempts).Error; err != nil {
				return err
			}
			outcome = &InvalidCodeError{Remaining: m.cfg.MaxAttempts - challenge.Attempts}
			return nil
		}

		if err := tx.Model(&challenge).Update("is_used", true).Error; err != nil {
			return err
		}
		user.IsVerified = true
		return tx.Model(&user).Update("is_verified", true).Error
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		return nil, outcome
	}
	return &user, nil
}

// Latest returns the most recent challenge for (user, email) regardless of state
func (m *Manager) Latest(ctx context.Context, userID uint, email string) (*models.OTP, models.OTPState, error) {
	var challenge models.OTP
	if err := m.db.WithContext(ctx).
		Where("user_id = ? AND email = ?", userID, normalizeEmail(email)).
		Order("created_at DESC, id DESC").
		First(&challenge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrNoValidChallenge
		}
		return nil, "", err
	}
	return &challenge, challenge.State(m.cfg.Now(), m.cfg.MaxAttempts), nil
}
