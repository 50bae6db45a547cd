package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a sellable inventory item. Price and stock are decimals
// because the persisted columns are NUMERIC(20,2).
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"nombre"`
	Description string          `json:"description" db:"descripcion"`
	Price       decimal.Decimal `json:"price" db:"precio"`
	Stock       decimal.Decimal `json:"stock" db:"stock"`
	CategoryID  int64           `json:"category_id" db:"categoria_id"`
	ImageURL    string          `json:"image_url,omitempty" db:"url_foto"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Category groups products. Name is unique and doubles as the lookup key for
// the category filter endpoint.
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"nombre"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
