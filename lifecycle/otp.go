package lifecycle

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"educycle/models"
)

const (
	// OtpLength is the number of digits in a handoff code.
	OtpLength = 6
	// OtpTTL is how long a generated code stays valid, independent of the
	// overall transaction deadlines.
	OtpTTL = 15 * time.Minute
)

// GenerateOtp issues a fresh handoff code for a Meeting transaction. Seller
// only. A prior unexpired code is overwritten. The raw code is returned to
// the caller exactly once and must never appear in any other response.
func GenerateOtp(t *models.Transaction, actorID uint, now time.Time) (string, error) {
	if RoleOf(t, actorID) != RoleSeller {
		return "", ErrForbidden
	}
	if t.Status != StatusMeeting {
		return "", ErrInvalidTransition
	}
	code, err := newOtpCode()
	if err != nil {
		return "", err
	}
	exp := now.Add(OtpTTL)
	t.OtpCode = &code
	t.OtpExpiredAt = &exp
	return code, nil
}

// VerifyOtp checks the buyer's code against the stored one. On success the
// buyer confirmation is set and the code is cleared so it cannot be
// replayed.
func VerifyOtp(t *models.Transaction, actorID uint, code string, now time.Time) error {
	if RoleOf(t, actorID) != RoleBuyer {
		return ErrForbidden
	}
	if t.Status != StatusMeeting {
		return ErrInvalidTransition
	}
	if t.OtpCode == nil || t.OtpExpiredAt == nil {
		return ErrInvalidOtp
	}
	if now.After(*t.OtpExpiredAt) {
		return ErrOtpExpired
	}
	if subtle.ConstantTimeCompare([]byte(*t.OtpCode), []byte(code)) != 1 {
		return ErrInvalidOtp
	}
	// Single use: clear the code before anyone can present it again.
	t.OtpCode = nil
	t.OtpExpiredAt = nil
	t.BuyerConfirmed = true
	completeIfConfirmed(t)
	return nil
}

func newOtpCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < OtpLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", OtpLength, n), nil
}
