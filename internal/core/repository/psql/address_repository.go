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

const addressColumns = `id, user_id, type, title, name, tc_no, company_name, tax_office, tax_no,
	address, city, district, created_at, updated_at`

// AddressRepository implements domain.AddressRepository using PostgreSQL
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository creates a new PostgreSQL address repository
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

var _ domain.AddressRepository = (*AddressRepository)(nil)

func scanAddress(row pgx.Row, a *domain.Address) error {
	return row.Scan(
		&a.ID, &a.UserID, &a.Type, &a.Title, &a.Name, &a.TcNo, &a.CompanyName, &a.TaxOffice, &a.TaxNo,
		&a.Address, &a.City, &a.District, &a.CreatedAt, &a.UpdatedAt,
	)
}

// List returns every address of the owner, newest first
func (r *AddressRepository) List(ctx context.Context, ownerID string) ([]domain.Address, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+addressColumns+` FROM addresses
		WHERE user_id = $1
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query addresses: %w", err)
	}
	defer rows.Close()

	addresses := []domain.Address{}
	for rows.Next() {
		var a domain.Address
		if err := scanAddress(rows, &a); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate addresses: %w", err)
	}
	return addresses, nil
}

// Get returns an address of the owner
func (r *AddressRepository) Get(ctx context.Context, id, ownerID string) (*domain.Address, error) {
	var a domain.Address
	row := r.pool.QueryRow(ctx, `SELECT `+addressColumns+` FROM addresses WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err := scanAddress(row, &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAddressNotFound
		}
		return nil, fmt.Errorf("query address: %w", err)
	}
	return &a, nil
}

// Create inserts an address
func (r *AddressRepository) Create(ctx context.Context, a *domain.Address) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO addresses (id, user_id, type, title, name, tc_no, company_name, tax_office, tax_no,
			address, city, district)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`, a.ID, a.UserID, a.Type, a.Title, a.Name, a.TcNo, a.CompanyName, a.TaxOffice, a.TaxNo,
		a.Address, a.City, a.District,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

// Update overwrites an address of the owner
func (r *AddressRepository) Update(ctx context.Context, a *domain.Address) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE addresses SET
			type = $3, title = $4, name = $5, tc_no = $6, company_name = $7, tax_office = $8, tax_no = $9,
			address = $10, city = $11, district = $12, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+addressColumns,
		a.ID, a.UserID, a.Type, a.Title, a.Name, a.TcNo, a.CompanyName, a.TaxOffice, a.TaxNo,
		a.Address, a.City, a.District,
	)
	if err := scanAddress(row, a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAddressNotFound
		}
		return fmt.Errorf("update address: %w", err)
	}
	return nil
}

// Delete removes an address of the owner
func (r *AddressRepository) Delete(ctx context.Context, id, ownerID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrAddressNotFound
	}
	return nil
}
