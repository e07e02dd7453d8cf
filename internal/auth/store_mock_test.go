package auth

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

// memStore is an in-memory UserStore with the same atomicity guarantees as
// the SQL implementation: every mutation happens under one lock acquisition.
type memStore struct {
	mu    sync.Mutex
	seq   int
	users map[string]*User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*User)}
}

func (m *memStore) Create(_ context.Context, name, email, passwordHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			return nil, ErrAlreadyExists
		}
	}

	m.seq++
	now := time.Now()
	user := &User{
		ID:           fmt.Sprintf("user-%d", m.seq),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[user.ID] = user
	clone := *user
	return &clone, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (m *memStore) SaveOTP(_ context.Context, userID string, purpose OTPPurpose, codeHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("no such user %s", userID)
	}
	if purpose == PurposeReset {
		u.ResetOTP = codeHash
		u.ResetOTPExpiresAt = &expiresAt
	} else {
		u.VerifyOTP = codeHash
		u.VerifyOTPExpiresAt = &expiresAt
	}
	return nil
}

func (m *memStore) ConsumeOTP(_ context.Context, userID string, purpose OTPPurpose, codeHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return false, nil
	}
	if purpose == PurposeReset {
		if u.ResetOTP == "" || u.ResetOTP != codeHash {
			return false, nil
		}
		u.ResetOTP = ""
		u.ResetOTPExpiresAt = nil
		return true, nil
	}
	if u.VerifyOTP == "" || u.VerifyOTP != codeHash {
		return false, nil
	}
	u.VerifyOTP = ""
	u.VerifyOTPExpiresAt = nil
	return true, nil
}

func (m *memStore) ClearOTP(_ context.Context, userID string, purpose OTPPurpose) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil
	}
	if purpose == PurposeReset {
		u.ResetOTP = ""
		u.ResetOTPExpiresAt = nil
	} else {
		u.VerifyOTP = ""
		u.VerifyOTPExpiresAt = nil
	}
	return nil
}

func (m *memStore) MarkVerified(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[userID]; ok {
		u.IsAccountVerified = true
	}
	return nil
}

func (m *memStore) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[userID]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

// recordingMailer captures sent emails so tests can pull codes out of them.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

type sentEmail struct {
	To      string
	Subject string
	Text    string
}

func (m *recordingMailer) Send(_ context.Context, to, subject, text, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, Text: text})
	return m.err
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

// lastCode returns the six-digit code from the most recent email.
func (m *recordingMailer) lastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if code := codePattern.FindString(m.sent[i].Text); code != "" {
			return code
		}
	}
	return ""
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
