package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/food-ordering/internal/model"
)

// UserRepo persists accounts in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, name, email, username, password_hash, role, picture, is_verified,
	verification_token, verification_expires_at, reset_token, reset_expires_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u          model.User
		vTok, rTok sql.NullString
		vExp, rExp sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.Picture, &u.IsVerified,
		&vTok, &vExp, &rTok, &rExp, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if vTok.Valid {
		u.VerificationToken = &vTok.String
	}
	if vExp.Valid {
		u.VerificationExpiresAt = &vExp.Time
	}
	if rTok.Valid {
		u.ResetToken = &rTok.String
	}
	if rExp.Valid {
		u.ResetExpiresAt = &rExp.Time
	}
	return &u, nil
}

// Create inserts u with its verification token. Email is normalized to
// lower case. A clash on email or username yields ErrUserExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	const q = `INSERT INTO users (name, email, username, password_hash, role, picture, verification_token, verification_expires_at)
	           VALUES (?,?,?,?,?,?,?,?)`
	res, err := r.DB.ExecContext(ctx, q, u.Name, u.Email, u.Username, u.PasswordHash, u.Role, u.Picture,
		u.VerificationToken, u.VerificationExpiresAt)
	if err != nil {
		if _, dup := duplicateKey(err); dup {
			return ErrUserExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	saved, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*u = *saved
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username))
}

// SetVerificationToken rotates the email verification token.
func (r *UserRepo) SetVerificationToken(ctx context.Context, email, token string, exp time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET verification_token=?, verification_expires_at=? WHERE email=?",
		token, exp, strings.ToLower(email))
	if err != nil {
		return err
	}
	return requireRow(res, ErrUserNotFound)
}

// Verify marks the account verified when token matches and has not
// expired. It returns false when nothing matched.
func (r *UserRepo) Verify(ctx context.Context, email, token string, now time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET is_verified=1, verification_token=NULL, verification_expires_at=NULL
		 WHERE email=? AND verification_token=? AND verification_expires_at > ?`,
		strings.ToLower(email), token, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SetResetToken stores a password reset token.
func (r *UserRepo) SetResetToken(ctx context.Context, email, token string, exp time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token=?, reset_expires_at=? WHERE email=?",
		token, exp, strings.ToLower(email))
	if err != nil {
		return err
	}
	return requireRow(res, ErrUserNotFound)
}

// ResetPassword swaps the password hash and clears the reset token in one
// conditional update. It returns false when the token does not match or
// has expired.
func (r *UserRepo) ResetPassword(ctx context.Context, email, token, hash string, now time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash=?, reset_token=NULL, reset_expires_at=NULL
		 WHERE email=? AND reset_token=? AND reset_expires_at > ?`,
		hash, strings.ToLower(email), token, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateProfile writes username and picture. A username owned by another
// account yields ErrUsernameTaken.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, username, picture string) (*model.User, error) {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET username=?, picture=? WHERE id=?", username, picture, id)
	if err != nil {
		if _, dup := duplicateKey(err); dup {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
