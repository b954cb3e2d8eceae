package utils

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"ClinicDesk/cache"
)

// ResetCodeExpiry is how long a mailed reset code stays valid.
const ResetCodeExpiry = 15 * time.Minute

// GenerateResetCode generates a random 6-digit reset code.
func GenerateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ResetCodes keeps pending reset codes in Redis keyed by email.
type ResetCodes struct {
	cache *cache.Cache
}

func NewResetCodes(c *cache.Cache) *ResetCodes {
	return &ResetCodes{cache: c}
}

func resetKey(email string) string {
	return "reset_code:" + strings.ToLower(strings.TrimSpace(email))
}

// Set stores code for email, replacing any earlier one.
func (r *ResetCodes) Set(ctx context.Context, email, code string) error {
	return r.cache.Set(ctx, resetKey(email), code, ResetCodeExpiry)
}

// Consume reports whether code is the pending code for email. A matching
// code is deleted so it cannot be used twice.
func (r *ResetCodes) Consume(ctx context.Context, email, code string) (bool, error) {
	stored, err := r.cache.Get(ctx, resetKey(email))
	if err != nil {
		return false, err
	}
	if stored == "" || stored != code {
		return false, nil
	}
	taken, err := r.cache.Take(ctx, resetKey(email))
	if err != nil {
		return false, err
	}
	return taken == code, nil
}
