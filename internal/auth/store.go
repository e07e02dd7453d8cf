package auth

import (
	"context"
	"time"
)

// UserStore is the persistence boundary for user records. All mutations are
// single statements so per-user updates stay atomic under concurrent
// requests.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)

	// SaveOTP stores a hashed one-time code and its expiry under the column
	// matching purpose, replacing any pending code.
	SaveOTP(ctx context.Context, userID string, purpose OTPPurpose, codeHash string, expiresAt time.Time) error

	// ConsumeOTP clears the stored code only if it still equals codeHash.
	// Returns false when the code was already consumed or replaced; this is
	// the serialization point making codes single-use.
	ConsumeOTP(ctx context.Context, userID string, purpose OTPPurpose, codeHash string) (bool, error)

	// ClearOTP unconditionally drops a pending code, e.g. once expired.
	ClearOTP(ctx context.Context, userID string, purpose OTPPurpose) error

	MarkVerified(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// Mailer delivers notification emails. Sends are best-effort from the
// caller's perspective; a failed send never rolls back state already written.
type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}
