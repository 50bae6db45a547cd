package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"inventario-backend/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrAddressNotFound = errors.New("address not found")
)

// AddressRepository defines the interface for address data access. Addresses
// are owned by a user and removed with it via ON DELETE CASCADE.
type AddressRepository interface {
	Create(ctx context.Context, address *domain.Address) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error)
	Delete(ctx context.Context, id int64, userID uuid.UUID) error
}

type addressRepository struct {
	db *sql.DB
}

// NewAddressRepository creates a new instance of AddressRepository
func NewAddressRepository(db *sql.DB) AddressRepository {
	return &addressRepository{db: db}
}

// Create inserts a new address and fills in the assigned id
func (r *addressRepository) Create(ctx context.Context, address *domain.Address) error {
	query := `
		INSERT INTO direcciones (usuario_id, ciudad, pais, direccion, codigo_postal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		address.UserID,
		address.City,
		address.Country,
		address.Street,
		address.PostalCode,
	).Scan(&address.ID)

	if err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}

	return nil
}

// ListByUser retrieves all addresses owned by a user
func (r *addressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	query := `
		SELECT id, usuario_id, ciudad, pais, direccion, codigo_postal
		FROM direcciones
		WHERE usuario_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	addresses := []*domain.Address{}
	for rows.Next() {
		address := &domain.Address{}
		err := rows.Scan(
			&address.ID,
			&address.UserID,
			&address.City,
			&address.Country,
			&address.Street,
			&address.PostalCode,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, address)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addresses, nil
}

// Delete removes an address, scoped to its owner so users cannot delete
// someone else's address by guessing ids.
func (r *addressRepository) Delete(ctx context.Context, id int64, userID uuid.UUID) error {
	query := `DELETE FROM direcciones WHERE id = $1 AND usuario_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAddressNotFound
	}

	return nil
}
