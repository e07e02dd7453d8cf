package auth

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"authsvc/internal/i18n"
)

type OTPPurpose string

const (
	PurposeVerify OTPPurpose = "verify"
	PurposeReset  OTPPurpose = "reset"
)

// Expiry windows follow the original service: verification codes are
// long-lived, reset codes are tight.
const (
	verifyOTPTTL = 24 * time.Hour
	resetOTPTTL  = 15 * time.Minute
)

// OTPIssuer generates, delivers and validates single-use numeric codes.
// Codes are stored hashed; validation consumes the code atomically so a
// replay or a concurrent second attempt fails.
type OTPIssuer struct {
	Store  UserStore
	Mailer Mailer

	now func() time.Time
}

func NewOTPIssuer(store UserStore, mailer Mailer) *OTPIssuer {
	return &OTPIssuer{Store: store, Mailer: mailer, now: time.Now}
}

func (o *OTPIssuer) clock() time.Time {
	if o.now != nil {
		return o.now()
	}
	return time.Now()
}

// Issue stores a fresh code for the given purpose and emails it to the user.
// The code remains stored even when the email fails; the send error is
// returned so callers can surface it.
func (o *OTPIssuer) Issue(ctx context.Context, user *User, purpose OTPPurpose, locale string) error {
	code, err := GenerateCode()
	if err != nil {
		return err
	}

	ttl := verifyOTPTTL
	if purpose == PurposeReset {
		ttl = resetOTPTTL
	}
	expires := o.clock().Add(ttl)

	if err := o.Store.SaveOTP(ctx, user.ID, purpose, HashString(code), expires); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}

	var content i18n.EmailContent
	switch purpose {
	case PurposeReset:
		content = i18n.PasswordResetEmail(locale, code, int(resetOTPTTL.Minutes()))
	default:
		content = i18n.VerificationEmail(locale, code, int(verifyOTPTTL.Hours()))
	}

	if err := o.Mailer.Send(ctx, user.Email, content.Subject, content.Text, content.HTML); err != nil {
		return fmt.Errorf("%w: send code email: %v", ErrDependencyFailure, err)
	}
	return nil
}

// Validate checks a submitted code against the pending one and consumes it.
// Side effects of a successful validation (marking the account verified,
// replacing the password) belong to the caller.
func (o *OTPIssuer) Validate(ctx context.Context, user *User, purpose OTPPurpose, code string) error {
	storedHash, expiresAt := pendingOTP(user, purpose)
	if storedHash == "" || code == "" {
		return ErrInvalidCode
	}
	if HashString(code) != storedHash {
		return ErrInvalidCode
	}
	if expiresAt == nil || o.clock().After(*expiresAt) {
		_ = o.Store.ClearOTP(ctx, user.ID, purpose)
		return ErrExpired
	}

	consumed, err := o.Store.ConsumeOTP(ctx, user.ID, purpose, storedHash)
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if !consumed {
		// Another request cleared the code first.
		return ErrInvalidCode
	}
	return nil
}

func pendingOTP(user *User, purpose OTPPurpose) (string, *time.Time) {
	if purpose == PurposeReset {
		return user.ResetOTP, user.ResetOTPExpiresAt
	}
	return user.VerifyOTP, user.VerifyOTPExpiresAt
}

// GenerateCode returns a six-digit decimal code from a cryptographically
// secure source.
func GenerateCode() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(b[:]) % 1000000
	return fmt.Sprintf("%06d", n), nil
}
