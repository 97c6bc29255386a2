// utils/otp.go
package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// OTPValidity is how long a delivered code can be used
const OTPValidity = 10 * time.Minute

const maxOTPAttempts = 5

// GenerateOTP returns a uniformly random 6-digit numeric code
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// OTPExpiry returns the expiry for a code issued at now
func OTPExpiry(now time.Time) time.Time {
	return now.Add(OTPValidity)
}

// ValidOTP reports whether the supplied code matches the stored one exactly
// and now is strictly before the stored expiry. Callers translate false into
// a user-facing "invalid or expired OTP" error.
func ValidOTP(stored string, expiry time.Time, supplied string, now time.Time) bool {
	if stored == "" {
		return false
	}
	return stored == supplied && now.Before(expiry)
}

// ValidateOTPAttempts throttles verification attempts per mobile number.
// A nil Redis client disables the check.
func ValidateOTPAttempts(mobile string, rdb *redis.Client) error {
	if rdb == nil {
		return nil
	}

	key := "otp_attempts:" + mobile
	attempts, err := rdb.Incr(context.Background(), key).Result()
	if err != nil {
		return err
	}

	// Set expiry if first attempt
	if attempts == 1 {
		rdb.Expire(context.Background(), key, 1*time.Hour)
	}

	if attempts > maxOTPAttempts {
		return errors.New("too many OTP attempts")
	}

	return nil
}
