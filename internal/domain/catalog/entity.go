package catalog

import (
	"database/sql"
	"time"
)

type Service struct {
	ID          int64          `json:"id" db:"id"`
	Enable      bool           `json:"enable" db:"enable"`
	Title       string         `json:"title" db:"title"`
	Slug        string         `json:"slug" db:"slug"`
	Description sql.NullString `json:"description,omitempty" db:"description"`
	CategoryID  sql.NullInt64  `json:"category_id,omitempty" db:"category_id"`
	SortOrder   int            `json:"sort_order" db:"sort_order"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

type Category struct {
	ID        int64     `json:"id" db:"id"`
	Enable    bool      `json:"enable" db:"enable"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Price is a one-off display price option of a service, independent of the
// subscription plan catalog. A service keeps at least one price option at
// all times and exactly one of them is the default.
type Price struct {
	ID        int64     `json:"id" db:"id"`
	ServiceID int64     `json:"service_id" db:"service_id"`
	Name      string    `json:"name" db:"name"`
	Price     float64   `json:"price" db:"price"`
	IsDefault bool      `json:"is_default" db:"is_default"`
	Enable    bool      `json:"enable" db:"enable"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
