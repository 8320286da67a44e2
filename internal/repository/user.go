package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/thumbdeck/account-server-go/internal/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, params model.CreateUserParams) (*model.User, error)
	// SetResetToken writes the pending reset token hash and its expiry in one
	// statement, replacing any previous pending token.
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) (*model.User, error)
	// ConsumeResetToken atomically matches an unexpired reset token hash,
	// installs the new password hash and clears both reset fields. A nil
	// result means no row matched: wrong token or expired token, or a
	// concurrent call consumed it first.
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (*model.User, error)
	DeleteExpiredResetTokens(ctx context.Context) (int64, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) UserRepository
}

type userRepo struct {
	db sqlxDB
}

// sqlxDB is an interface satisfied by both *sqlx.DB and *sqlx.Tx
type sqlxDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) WithTx(tx *sqlx.Tx) UserRepository {
	return &userRepo{db: tx}
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE id = $1
	`, id)
	return HandleNotFound(&user, err)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE email = $1
	`, email)
	return HandleNotFound(&user, err)
}

func (r *userRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		INSERT INTO users (id, name, email, password_hash, country)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.ID, params.Name, params.Email, params.PasswordHash, params.Country)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		UPDATE users SET
			reset_token_hash = $2,
			reset_token_expires_at = $3,
			updated_at = $4
		WHERE id = $1
		RETURNING *
	`, id, tokenHash, expiresAt, time.Now())
	return HandleNotFound(&user, err)
}

func (r *userRepo) ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		UPDATE users SET
			password_hash = $2,
			reset_token_hash = NULL,
			reset_token_expires_at = NULL,
			updated_at = $3
		WHERE reset_token_hash = $1 AND reset_token_expires_at > now()
		RETURNING *
	`, tokenHash, newPasswordHash, time.Now())
	return HandleNotFound(&user, err)
}

func (r *userRepo) DeleteExpiredResetTokens(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			reset_token_hash = NULL,
			reset_token_expires_at = NULL
		WHERE reset_token_expires_at IS NOT NULL AND reset_token_expires_at <= now()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
