package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository implements UserStore on Postgres.
type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `"id","name","email","password_hash","is_account_verified","verify_otp","verify_otp_expires_at","reset_otp","reset_otp_expires_at","created_at","updated_at"`

func (r *UserRepository) Create(ctx context.Context, name, email, passwordHash string) (*User, error) {
	id := uuid.NewString()

	query := `
		INSERT INTO users ("id","name","email","password_hash")
		VALUES ($1,$2,$3,$4)
		RETURNING ` + userColumns

	row := r.DB.QueryRow(ctx, query, id, name, normalizeEmail(email), passwordHash)
	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE "email"=$1`, normalizeEmail(email))
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE "id"=$1`, id)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (r *UserRepository) SaveOTP(ctx context.Context, userID string, purpose OTPPurpose, codeHash string, expiresAt time.Time) error {
	codeCol, expCol := otpColumns(purpose)
	_, err := r.DB.Exec(ctx, `
		UPDATE users
		SET `+codeCol+`=$1, `+expCol+`=$2, "updated_at"=NOW()
		WHERE "id"=$3
	`, codeHash, expiresAt, userID)
	return err
}

// ConsumeOTP is the single-use guarantee: the conditional WHERE means only
// one of any number of concurrent validators sees an affected row.
func (r *UserRepository) ConsumeOTP(ctx context.Context, userID string, purpose OTPPurpose, codeHash string) (bool, error) {
	codeCol, expCol := otpColumns(purpose)
	tag, err := r.DB.Exec(ctx, `
		UPDATE users
		SET `+codeCol+`='', `+expCol+`=NULL, "updated_at"=NOW()
		WHERE "id"=$1 AND `+codeCol+`=$2 AND `+codeCol+`<>''
	`, userID, codeHash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepository) ClearOTP(ctx context.Context, userID string, purpose OTPPurpose) error {
	codeCol, expCol := otpColumns(purpose)
	_, err := r.DB.Exec(ctx, `
		UPDATE users
		SET `+codeCol+`='', `+expCol+`=NULL, "updated_at"=NOW()
		WHERE "id"=$1
	`, userID)
	return err
}

func (r *UserRepository) MarkVerified(ctx context.Context, userID string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE users
		SET "is_account_verified"=TRUE, "updated_at"=NOW()
		WHERE "id"=$1
	`, userID)
	return err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE users
		SET "password_hash"=$1, "updated_at"=NOW()
		WHERE "id"=$2
	`, passwordHash, userID)
	return err
}

func otpColumns(purpose OTPPurpose) (code string, expires string) {
	if purpose == PurposeReset {
		return `"reset_otp"`, `"reset_otp_expires_at"`
	}
	return `"verify_otp"`, `"verify_otp_expires_at"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		id               string
		name             string
		email            string
		passwordHash     string
		verified         bool
		verifyOTP        sql.NullString
		verifyOTPExpires sql.NullTime
		resetOTP         sql.NullString
		resetOTPExpires  sql.NullTime
		createdAt        time.Time
		updatedAt        time.Time
	)

	if err := row.Scan(
		&id,
		&name,
		&email,
		&passwordHash,
		&verified,
		&verifyOTP,
		&verifyOTPExpires,
		&resetOTP,
		&resetOTPExpires,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	return &User{
		ID:                 id,
		Name:               name,
		Email:              email,
		PasswordHash:       passwordHash,
		IsAccountVerified:  verified,
		VerifyOTP:          verifyOTP.String,
		VerifyOTPExpiresAt: nullTimePtr(verifyOTPExpires),
		ResetOTP:           resetOTP.String,
		ResetOTPExpiresAt:  nullTimePtr(resetOTPExpires),
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}, nil
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}
