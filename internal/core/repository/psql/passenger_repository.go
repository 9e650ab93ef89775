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

const passengerColumns = `id, user_id, first_name, last_name, identity_number, is_foreigner,
	birth_day, birth_month, birth_year, gender, country_code, phone,
	has_mil_card, has_passport, is_account_owner, status, created_at, updated_at`

// PassengerRepository implements domain.PassengerRepository using PostgreSQL
type PassengerRepository struct {
	pool *pgxpool.Pool
}

// NewPassengerRepository creates a new PostgreSQL passenger repository
func NewPassengerRepository(pool *pgxpool.Pool) *PassengerRepository {
	return &PassengerRepository{pool: pool}
}

var _ domain.PassengerRepository = (*PassengerRepository)(nil)

func scanPassenger(row pgx.Row) (*domain.Passenger, error) {
	var p domain.Passenger
	err := row.Scan(
		&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.IdentityNumber, &p.IsForeigner,
		&p.BirthDay, &p.BirthMonth, &p.BirthYear, &p.Gender, &p.CountryCode, &p.Phone,
		&p.HasMilCard, &p.HasPassport, &p.IsAccountOwner, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func insertPassenger(ctx context.Context, q querier, p *domain.Passenger) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = domain.StatusActive
	}
	return q.QueryRow(ctx, `
		INSERT INTO passengers (id, user_id, first_name, last_name, identity_number, is_foreigner,
			birth_day, birth_month, birth_year, gender, country_code, phone,
			has_mil_card, has_passport, is_account_owner, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING created_at, updated_at
	`, p.ID, p.UserID, p.FirstName, p.LastName, p.IdentityNumber, p.IsForeigner,
		p.BirthDay, p.BirthMonth, p.BirthYear, p.Gender, p.CountryCode, p.Phone,
		p.HasMilCard, p.HasPassport, p.IsAccountOwner, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// ListActive returns the owner's active passengers, newest first
func (r *PassengerRepository) ListActive(ctx context.Context, ownerID string) ([]domain.Passenger, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+passengerColumns+` FROM passengers
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC`, ownerID, domain.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("query passengers: %w", err)
	}
	defer rows.Close()

	passengers := []domain.Passenger{}
	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan passenger: %w", err)
		}
		passengers = append(passengers, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passengers: %w", err)
	}
	return passengers, nil
}

// Get returns an active passenger of the owner
func (r *PassengerRepository) Get(ctx context.Context, id, ownerID string) (*domain.Passenger, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+passengerColumns+` FROM passengers
		WHERE id = $1 AND user_id = $2 AND status = $3`, id, ownerID, domain.StatusActive)
	p, err := scanPassenger(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPassengerNotFound
		}
		return nil, fmt.Errorf("query passenger: %w", err)
	}
	return p, nil
}

// Create inserts a passenger
func (r *PassengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	if err := insertPassenger(ctx, r.pool, p); err != nil {
		return fmt.Errorf("insert passenger: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of an active passenger of the owner
func (r *PassengerRepository) Update(ctx context.Context, p *domain.Passenger) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE passengers SET
			first_name = $3, last_name = $4, identity_number = $5, is_foreigner = $6,
			birth_day = $7, birth_month = $8, birth_year = $9, gender = $10,
			country_code = $11, phone = $12, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND status = 'active'
		RETURNING `+passengerColumns,
		p.ID, p.UserID, p.FirstName, p.LastName, p.IdentityNumber, p.IsForeigner,
		p.BirthDay, p.BirthMonth, p.BirthYear, p.Gender, p.CountryCode, p.Phone,
	).Scan(
		&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.IdentityNumber, &p.IsForeigner,
		&p.BirthDay, &p.BirthMonth, &p.BirthYear, &p.Gender, &p.CountryCode, &p.Phone,
		&p.HasMilCard, &p.HasPassport, &p.IsAccountOwner, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrPassengerNotFound
		}
		return fmt.Errorf("update passenger: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a passenger by flipping its status
func (r *PassengerRepository) Deactivate(ctx context.Context, id, ownerID string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE passengers SET status = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND status = $4`,
		id, ownerID, domain.StatusInactive, domain.StatusActive)
	if err != nil {
		return fmt.Errorf("deactivate passenger: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrPassengerNotFound
	}
	return nil
}
