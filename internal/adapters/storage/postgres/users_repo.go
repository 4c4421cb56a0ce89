package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-adoption-market/internal/domain/identity"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u identity.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, email, name, role, active,
			password_hash, password_salt,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		u.ID,
		u.Email,
		u.Name,
		u.Role,
		u.Active,
		u.PasswordHash,
		u.PasswordSalt,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *UsersRepo) Update(ctx context.Context, u identity.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			email = $2,
			name = $3,
			role = $4,
			active = $5,
			password_hash = $6,
			password_salt = $7,
			updated_at = $8
		WHERE id = $1
	`,
		u.ID,
		u.Email,
		u.Name,
		u.Role,
		u.Active,
		u.PasswordHash,
		u.PasswordSalt,
		u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (identity.User, error) {
	return r.getBy(ctx, `id = $1`, strings.TrimSpace(id))
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (identity.User, error) {
	return r.getBy(ctx, `email = $1`, strings.TrimSpace(email))
}

func (r *UsersRepo) getBy(ctx context.Context, where, arg string) (identity.User, error) {
	if arg == "" {
		return identity.User{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, email, name, role, active,
			password_hash, password_salt,
			created_at, updated_at
		FROM users
		WHERE `+where, arg)

	var u identity.User
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.Active,
		&u.PasswordHash,
		&u.PasswordSalt,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return identity.User{}, ErrNotFound
		}
		return identity.User{}, err
	}
	return u, nil
}
