package psql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gurbetbiz/account-service/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, password_hash, first_name, last_name, country_code, phone,
	birth_day, birth_month, birth_year, gender, identity_number, is_foreigner, status,
	created_at, updated_at`

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

var _ domain.AccountRepository = (*AccountRepository)(nil)

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CountryCode, &u.Phone,
		&u.BirthDay, &u.BirthMonth, &u.BirthYear, &u.Gender, &u.IdentityNumber, &u.IsForeigner, &u.Status,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail retrieves the account for a session email
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return u, nil
}

// Create inserts the user and its account-owner passenger in one transaction
func (r *AccountRepository) Create(ctx context.Context, user *domain.User, owner *domain.Passenger) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO users (id, email, password_hash, first_name, last_name, country_code, phone,
				birth_day, birth_month, birth_year, gender, identity_number, is_foreigner, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING created_at, updated_at
		`, user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.CountryCode, user.Phone,
			user.BirthDay, user.BirthMonth, user.BirthYear, user.Gender, user.IdentityNumber, user.IsForeigner, user.Status)
		if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("create user %q: %w", user.Email, domain.ErrEmailTaken)
			}
			return fmt.Errorf("insert user: %w", err)
		}

		owner.UserID = user.ID
		if err := insertPassenger(ctx, tx, owner); err != nil {
			return fmt.Errorf("insert account owner passenger: %w", err)
		}
		return nil
	})
}

// UpdateProfile updates the user and mirrors the same fields onto the
// account-owner passenger. Either both rows change or neither does.
func (r *AccountRepository) UpdateProfile(ctx context.Context, userID string, upd domain.ProfileUpdate) (*domain.User, error) {
	args := []any{
		userID,
		upd.FirstName, upd.LastName, upd.CountryCode, upd.Phone,
		upd.BirthDay, upd.BirthMonth, upd.BirthYear, upd.Gender,
		upd.IdentityNumber, upd.ClearIdentity, upd.IsForeigner,
	}
	const assignments = `
		first_name      = COALESCE($2, first_name),
		last_name       = COALESCE($3, last_name),
		country_code    = COALESCE($4, country_code),
		phone           = COALESCE($5, phone),
		birth_day       = COALESCE($6, birth_day),
		birth_month     = COALESCE($7, birth_month),
		birth_year      = COALESCE($8, birth_year),
		gender          = COALESCE($9, gender),
		identity_number = CASE WHEN $11 THEN NULL ELSE COALESCE($10, identity_number) END,
		is_foreigner    = COALESCE($12, is_foreigner),
		updated_at      = now()`

	var updated *domain.User
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `UPDATE users SET `+assignments+` WHERE id = $1 RETURNING `+userColumns, args...)
		u, err := scanUser(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrAccountNotFound
			}
			return fmt.Errorf("update user profile: %w", err)
		}

		if _, err := tx.Exec(ctx, `UPDATE passengers SET `+assignments+` WHERE user_id = $1 AND is_account_owner`, args...); err != nil {
			return fmt.Errorf("mirror profile onto owner passenger: %w", err)
		}

		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
