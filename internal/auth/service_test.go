package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *memStore, *recordingMailer) {
	t.Helper()

	store := newMemStore()
	mailer := &recordingMailer{}
	tokens := NewTokenService("test-secret", time.Hour)
	svc := NewService(store, NewOTPIssuer(store, mailer), tokens, NewBcryptHasher(), mailer)
	return svc, store, mailer
}

func TestRegister(t *testing.T) {
	t.Parallel()

	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "Alice", "a@x.com", "secret1", "en")
	require.NoError(t, err)
	require.Equal(t, "Alice", user.Name)
	require.Equal(t, "a@x.com", user.Email)
	require.False(t, user.IsAccountVerified)

	userID, err := svc.Tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)

	// Welcome email is best-effort but should have gone out here.
	require.Equal(t, 1, mailer.count())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Alice", "a@x.com", "secret1", "en")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "Mallory", "a@x.com", "secret2", "en")
	require.ErrorIs(t, err, ErrAlreadyExists)

	// Same address, different case.
	_, _, err = svc.Register(ctx, "Mallory", "A@X.com", "secret2", "en")
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"empty name", "", "a@x.com", "secret1"},
		{"blank name", "   ", "a@x.com", "secret1"},
		{"empty email", "Alice", "", "secret1"},
		{"malformed email", "Alice", "not-an-email", "secret1"},
		{"short password", "Alice", "a@x.com", "five5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.userName, tt.email, tt.password, "en")
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestRegisterFailedWelcomeEmailDoesNotFailRegistration(t *testing.T) {
	t.Parallel()

	svc, _, mailer := newTestService(t)
	mailer.err = context.DeadlineExceeded

	_, _, err := svc.Register(context.Background(), "Alice", "a@x.com", "secret1", "en")
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Alice", "a@x.com", "secret1", "en")
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "a@x.com", user.Email)

	// Unverified users may log in.
	require.False(t, user.IsAccountVerified)
}

func TestLoginUniformFailure(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Alice", "a@x.com", "secret1", "en")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "a@x.com", "wrongpass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email reports the exact same failure.
	_, _, err = svc.Login(ctx, "nobody@x.com", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyEmailFlow(t *testing.T) {
	t.Parallel()

	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, "Alice", "a@x.com", "secret1", "en")
	require.NoError(t, err)
	require.False(t, registered.IsAccountVerified)

	require.NoError(t, svc.SendVerifyOtp(ctx, registered.ID, "en"))
	code := mailer.lastCode()
	require.Len(t, code, 6)

	require.NoError(t, svc.VerifyEmail(ctx, registered.ID, code))

	user, _ := store.FindByID(ctx, registered.ID)
	require.True(t, user.IsAccountVerified)
	require.Empty(t, user.VerifyOTP)

	// Replaying the consumed code fails.
	require.ErrorIs(t, svc.VerifyEmail(ctx, registered.ID, code), ErrInvalidCode)

	// A verified account cannot request another verification code.
	require.ErrorIs(t, svc.SendVerifyOtp(ctx, registered.ID, "en"), ErrAlreadyVerified)
}

func TestSendVerifyOtpUnknownUser(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	require.ErrorIs(t, svc.SendVerifyOtp(context.Background(), "missing", "en"), ErrNotFound)
}

func TestResetPasswordFlow(t *testing.T) {
	t.Parallel()

	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Alice", "a@x.com", "secret1", "en")
	require.NoError(t, err)

	require.NoError(t, svc.SendResetOtp(ctx, "a@x.com", "en"))
	code := mailer.lastCode()
	require.Len(t, code, 6)

	require.NoError(t, svc.ResetPassword(ctx, "a@x.com", code, "newpass1"))

	// Old password no longer works; the new one does.
	_, _, err = svc.Login(ctx, "a@x.com", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "a@x.com", "newpass1")
	require.NoError(t, err)

	// The code was consumed by the reset.
	require.ErrorIs(t, svc.ResetPassword(ctx, "a@x.com", code, "anotherpass1"), ErrInvalidCode)
}

func TestSendResetOtpUnknownEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	require.ErrorIs(t, svc.SendResetOtp(context.Background(), "nobody@x.com", "en"), ErrNotFound)
}

func TestResetPasswordErrors(t *testing.T) {
	t.Parallel()

	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Alice", "a@x.com", "secret1", "en")
	require.NoError(t, err)
	require.NoError(t, svc.SendResetOtp(ctx, "a@x.com", "en"))
	code := mailer.lastCode()

	// Too-short replacement password, before any code is consumed.
	require.ErrorIs(t, svc.ResetPassword(ctx, "a@x.com", code, "short"), ErrInvalidInput)

	// Wrong code.
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	require.ErrorIs(t, svc.ResetPassword(ctx, "a@x.com", wrong, "newpass1"), ErrInvalidCode)

	// Unknown email is indistinguishable from a wrong code.
	require.ErrorIs(t, svc.ResetPassword(ctx, "nobody@x.com", code, "newpass1"), ErrInvalidCode)

	// The correct code still works after the failed attempts.
	require.NoError(t, svc.ResetPassword(ctx, "a@x.com", code, "newpass1"))
}

func TestGetAuthDetails(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, "Alice", "a@x.com", "secret1", "en")
	require.NoError(t, err)

	details, err := svc.GetAuthDetails(ctx, registered.ID)
	require.NoError(t, err)
	require.Equal(t, registered, details)

	_, err = svc.GetAuthDetails(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPasswordHashNeverExposed(t *testing.T) {
	t.Parallel()

	svc, store, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "Alice", "a@x.com", "secret1", "en")
	require.NoError(t, err)

	user, _ := store.FindByEmail(ctx, "a@x.com")
	require.NotEqual(t, "secret1", user.PasswordHash)
	require.NotContains(t, user.PasswordHash, "secret1")
}
