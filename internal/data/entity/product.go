package entity

import (
	"github.com/google/uuid"
)

type Product struct {
	Base
	CompanyID   uuid.UUID `db:"company_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Price       float64   `db:"price"`
	IsActive    bool      `db:"is_active"`
}
