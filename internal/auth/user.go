package auth

import "time"

type User struct {
	ID                 string
	Name               string
	Email              string
	PasswordHash       string
	IsAccountVerified  bool
	VerifyOTP          string
	VerifyOTPExpiresAt *time.Time
	ResetOTP           string
	ResetOTPExpiresAt  *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PublicUser is the subset of a user record safe to return to clients.
type PublicUser struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	IsAccountVerified bool   `json:"isAccountVerified"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		IsAccountVerified: u.IsAccountVerified,
	}
}
