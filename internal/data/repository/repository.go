package repository

import (
	"agenda-booking/pkg/database"

	"go.uber.org/zap"
)

// Repository groups every data access component behind one struct so
// services can take a single dependency.
type Repository struct {
	Booking BookingRepository
	Payment PaymentRepository
	Client  ClientRepository
	Product ProductRepository
	Company CompanyRepository
}

func NewRepository(db database.PgxIface, logger *zap.Logger) *Repository {
	return &Repository{
		Booking: NewBookingRepository(db, logger),
		Payment: NewPaymentRepository(db, logger),
		Client:  NewClientRepository(db, logger),
		Product: NewProductRepository(db, logger),
		Company: NewCompanyRepository(db, logger),
	}
}
