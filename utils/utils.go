package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// GenerateOTP returns a uniformly random numeric code of the given length.
// Leading zeros are kept.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		length = 6
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

// ClientIP prefers the first X-Forwarded-For hop over the socket address
func ClientIP(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return c.IP()
}

// IsDuplicateKeyError matches unique violations across postgres, mysql and sqlite.
// Handles opened with TranslateError report gorm.ErrDuplicatedKey; the message
// match covers handles opened without it.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "duplicate") || strings.Contains(low, "unique")
}

// Slugify transliterates s to ASCII, lowercases it and joins words with hyphens
func Slugify(s string) string {
	return slug.Make(strings.TrimSpace(s))
}
