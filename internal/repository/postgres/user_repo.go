package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
)

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, display_name, active_token_hash,
	reset_token_hash, reset_token_expires, created_at, updated_at`

// GetByID retrieves an admin user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByEmail retrieves an admin user by email, case-insensitively
func (r *UserRepository) GetByEmail(email string) (*domain.User, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetAll lists every admin user
func (r *UserRepository) GetAll() ([]*domain.User, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY created_at, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Create inserts a new admin user
func (r *UserRepository) Create(user *domain.User) (*domain.User, error) {
	ctx := context.Background()

	id := user.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, display_name)
		VALUES ($1, lower($2), $3, $4)
		RETURNING `+userColumns,
		id, user.Email, user.PasswordHash, user.DisplayName,
	)

	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

// Delete removes an admin user
func (r *UserRepository) Delete(id uuid.UUID) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(id uuid.UUID, passwordHash string) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetActiveTokenHash pins the one session token allowed for this user.
// Nil clears it (logout).
func (r *UserRepository) SetActiveTokenHash(id uuid.UUID, tokenHash *string) error {
	ctx := context.Background()

	hash := pgtype.Text{}
	if tokenHash != nil {
		hash = pgtype.Text{String: *tokenHash, Valid: true}
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET active_token_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SetResetToken stores (or clears, with nils) the password reset token hash
// and its expiry.
func (r *UserRepository) SetResetToken(id uuid.UUID, tokenHash *string, expires *time.Time) error {
	ctx := context.Background()

	hash := pgtype.Text{}
	if tokenHash != nil {
		hash = pgtype.Text{String: *tokenHash, Valid: true}
	}
	exp := pgtype.Timestamptz{}
	if expires != nil {
		exp = pgtype.Timestamptz{Time: *expires, Valid: true}
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET reset_token_hash = $2, reset_token_expires = $3, updated_at = now()
		WHERE id = $1`, id, hash, exp)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user              domain.User
		activeTokenHash   pgtype.Text
		resetTokenHash    pgtype.Text
		resetTokenExpires pgtype.Timestamptz
		createdAt         pgtype.Timestamptz
		updatedAt         pgtype.Timestamptz
	)

	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.DisplayName,
		&activeTokenHash, &resetTokenHash, &resetTokenExpires, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if activeTokenHash.Valid {
		user.ActiveTokenHash = &activeTokenHash.String
	}
	if resetTokenHash.Valid {
		user.ResetTokenHash = &resetTokenHash.String
	}
	if resetTokenExpires.Valid {
		user.ResetTokenExpires = &resetTokenExpires.Time
	}
	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time
	return &user, nil
}
