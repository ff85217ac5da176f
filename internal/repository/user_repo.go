package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"petconnect/internal/model"
)

const userColumns = `id, name, email, phone, password_hash, plan, plan_start, plan_end,
       role, is_verified, verification_token, reset_token, reset_token_expires,
       created_at, updated_at`

// UserRepository is the credential store.
type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*model.User, error)
	// DowngradeToFree clears the plan window and reverts the user to the
	// free plan in a single statement.
	DowngradeToFree(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetResetToken(ctx context.Context, id, resetToken string, expires time.Time) error
	// GetUserByResetToken only matches unexpired tokens.
	GetUserByResetToken(ctx context.Context, resetToken string, now time.Time) (*model.User, error)
	// ResetPassword stores the new hash and consumes the reset token.
	ResetPassword(ctx context.Context, id, passwordHash string) error
	ListUsers(ctx context.Context) ([]model.User, error)
}

type userRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepo creates a new UserRepository backed by postgres.
func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash,
		&u.Plan, &u.PlanStart, &u.PlanEnd, &u.Role, &u.IsVerified,
		&u.VerificationToken, &u.ResetToken, &u.ResetTokenExpires,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) error {
	const q = `
        INSERT INTO users (id, name, email, phone, password_hash, plan, role, is_verified, verification_token)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at, updated_at
    `
	err := r.pool.QueryRow(ctx, q,
		u.ID, u.Name, u.Email, u.Phone, u.PasswordHash,
		u.Plan, u.Role, u.IsVerified, u.VerificationToken,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", id, err)
	}
	return u, nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, q, email))
	if err != nil {
		return nil, fmt.Errorf("fetch user by email: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetUserByPhone(ctx context.Context, phone string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	u, err := scanUser(r.pool.QueryRow(ctx, q, phone))
	if err != nil {
		return nil, fmt.Errorf("fetch user by phone: %w", err)
	}
	return u, nil
}

func (r *userRepo) DowngradeToFree(ctx context.Context, id string) error {
	const q = `
        UPDATE users
        SET plan = 'free', plan_start = NULL, plan_end = NULL, updated_at = NOW()
        WHERE id = $1
    `
	if _, err := r.pool.Exec(ctx, q, id); err != nil {
		return fmt.Errorf("downgrade user %s to free: %w", id, err)
	}
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, id, passwordHash); err != nil {
		return fmt.Errorf("update password for user %s: %w", id, err)
	}
	return nil
}

func (r *userRepo) SetResetToken(ctx context.Context, id, resetToken string, expires time.Time) error {
	const q = `
        UPDATE users
        SET reset_token = $2, reset_token_expires = $3, updated_at = NOW()
        WHERE id = $1
    `
	if _, err := r.pool.Exec(ctx, q, id, resetToken, expires); err != nil {
		return fmt.Errorf("set reset token for user %s: %w", id, err)
	}
	return nil
}

func (r *userRepo) GetUserByResetToken(ctx context.Context, resetToken string, now time.Time) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE reset_token = $1 AND reset_token_expires > $2`
	u, err := scanUser(r.pool.QueryRow(ctx, q, resetToken, now))
	if err != nil {
		return nil, fmt.Errorf("fetch user by reset token: %w", err)
	}
	return u, nil
}

func (r *userRepo) ResetPassword(ctx context.Context, id, passwordHash string) error {
	const q = `
        UPDATE users
        SET password_hash = $2, reset_token = NULL, reset_token_expires = NULL, updated_at = NOW()
        WHERE id = $1
    `
	if _, err := r.pool.Exec(ctx, q, id, passwordHash); err != nil {
		return fmt.Errorf("reset password for user %s: %w", id, err)
	}
	return nil
}

func (r *userRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash,
			&u.Plan, &u.PlanStart, &u.PlanEnd, &u.Role, &u.IsVerified,
			&u.VerificationToken, &u.ResetToken, &u.ResetTokenExpires,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
