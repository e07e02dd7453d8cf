package auth

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"authsvc/internal/i18n"
)

const minPasswordLength = 6

// Service is the auth orchestrator. It composes the user store, the OTP
// issuer, the token service and the password hasher into the account
// lifecycle: register -> (unverified) -> verified, with an independent
// password-reset flow on top.
type Service struct {
	Store  UserStore
	OTP    *OTPIssuer
	Tokens *TokenService
	Hasher PasswordHasher
	Mailer Mailer
}

func NewService(store UserStore, otp *OTPIssuer, tokens *TokenService, hasher PasswordHasher, mailer Mailer) *Service {
	return &Service{Store: store, OTP: otp, Tokens: tokens, Hasher: hasher, Mailer: mailer}
}

// Register creates an unverified account and signs the user in.
// The welcome email is best-effort and never fails the registration.
func (s *Service) Register(ctx context.Context, name, email, password, locale string) (PublicUser, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return PublicUser{}, "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !ValidEmail(email) {
		return PublicUser{}, "", fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return PublicUser{}, "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	existing, err := s.Store.FindByEmail(ctx, email)
	if err != nil {
		return PublicUser{}, "", fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return PublicUser{}, "", ErrAlreadyExists
	}

	hashed, err := s.Hasher.Hash(password)
	if err != nil {
		return PublicUser{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.Store.Create(ctx, name, email, hashed)
	if err != nil {
		return PublicUser{}, "", err
	}

	token, err := s.Tokens.Issue(user.ID)
	if err != nil {
		return PublicUser{}, "", fmt.Errorf("issue token: %w", err)
	}

	content := i18n.WelcomeEmail(locale, user.Name)
	if err := s.Mailer.Send(ctx, user.Email, content.Subject, content.Text, content.HTML); err != nil {
		log.Printf("register: welcome email to %s failed: %v", user.Email, err)
	}

	return user.Public(), token, nil
}

// Login verifies the password and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller. Unverified accounts
// may log in; verification gates nothing but the verify flow itself.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.Store.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !s.Hasher.Compare(user.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return user, token, nil
}

// SendVerifyOtp issues a verification code for an authenticated user.
func (s *Service) SendVerifyOtp(ctx context.Context, userID, locale string) error {
	user, err := s.Store.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}
	if user.IsAccountVerified {
		return ErrAlreadyVerified
	}

	return s.OTP.Issue(ctx, user, PurposeVerify, locale)
}

// VerifyEmail consumes a verification code and marks the account verified.
func (s *Service) VerifyEmail(ctx context.Context, userID, code string) error {
	user, err := s.Store.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}

	if err := s.OTP.Validate(ctx, user, PurposeVerify, code); err != nil {
		return err
	}

	if err := s.Store.MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// SendResetOtp is the password-recovery entry point; it requires no session.
func (s *Service) SendResetOtp(ctx context.Context, email, locale string) error {
	user, err := s.Store.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return ErrNotFound
	}

	return s.OTP.Issue(ctx, user, PurposeReset, locale)
}

// ResetPassword validates and consumes the reset code in one step, then
// replaces the password hash. An unknown email reports ErrInvalidCode, same
// as a wrong code.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	user, err := s.Store.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return ErrInvalidCode
	}

	if err := s.OTP.Validate(ctx, user, PurposeReset, code); err != nil {
		return err
	}

	hashed, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// GetAuthDetails returns the public summary for an authenticated user.
func (s *Service) GetAuthDetails(ctx context.Context, userID string) (PublicUser, error) {
	user, err := s.Store.FindByID(ctx, userID)
	if err != nil {
		return PublicUser{}, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return PublicUser{}, ErrNotFound
	}
	return user.Public(), nil
}

func ValidEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}
