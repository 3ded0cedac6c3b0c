package usecase

import (
	"context"
	"fmt"
	"sync"

	"agenda-booking/internal/data/entity"
	"agenda-booking/internal/data/repository"
	"agenda-booking/internal/gateway"

	"github.com/google/uuid"
)

// memBookingRepo mirrors the booking ledger's SQL guards in memory so
// service tests exercise the same transition rules the database enforces.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings []*entity.Booking
}

func (m *memBookingRepo) CreateBatch(_ context.Context, bookings []*entity.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range bookings {
		copied := *b
		m.bookings = append(m.bookings, &copied)
	}
	return nil
}

func (m *memBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID == id {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memBookingRepo) FindByPaymentID(_ context.Context, paymentID uuid.UUID) ([]*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Booking
	for _, b := range m.bookings {
		if b.PaymentID != nil && *b.PaymentID == paymentID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memBookingRepo) FindByClientID(_ context.Context, clientID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Booking
	for _, b := range m.bookings {
		if b.ClientID != nil && *b.ClientID == clientID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memBookingRepo) AttachPayment(_ context.Context, bookingIDs []uuid.UUID, paymentID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		for _, id := range bookingIDs {
			if b.ID == id && (b.PaymentID == nil || *b.PaymentID == paymentID) {
				pid := paymentID
				b.PaymentID = &pid
			}
		}
	}
	return nil
}

func (m *memBookingRepo) ReassignPayment(_ context.Context, fromPaymentID, toPaymentID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var moved int64
	for _, b := range m.bookings {
		if b.PaymentID != nil && *b.PaymentID == fromPaymentID && b.PaymentStatus != entity.BookingPaymentApproved {
			pid := toPaymentID
			b.PaymentID = &pid
			moved++
		}
	}
	return moved, nil
}

func (m *memBookingRepo) SetStatusByPaymentID(_ context.Context, paymentID uuid.UUID, status entity.BookingStatus, paymentStatus entity.BookingPaymentStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	for _, b := range m.bookings {
		if b.PaymentID != nil && *b.PaymentID == paymentID && b.PaymentStatus != entity.BookingPaymentApproved {
			b.Status = status
			b.PaymentStatus = paymentStatus
			updated++
		}
	}
	return updated, nil
}

func (m *memBookingRepo) SetPaymentStatus(_ context.Context, bookingIDs []uuid.UUID, paymentStatus entity.BookingPaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		for _, id := range bookingIDs {
			if b.ID == id && b.PaymentStatus != entity.BookingPaymentApproved {
				b.PaymentStatus = paymentStatus
			}
		}
	}
	return nil
}

func (m *memBookingRepo) Cancel(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID == id && b.PaymentStatus != entity.BookingPaymentApproved {
			b.Status = entity.BookingStatusCancelled
			return nil
		}
	}
	return fmt.Errorf("booking %s cannot be cancelled", id.String())
}

func (m *memBookingRepo) all() []*entity.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Booking, len(m.bookings))
	for i, b := range m.bookings {
		copied := *b
		out[i] = &copied
	}
	return out
}

// memPaymentRepo mirrors the payment ledger: unique transaction ids and
// precedence-guarded status advancement.
type memPaymentRepo struct {
	mu       sync.Mutex
	payments []*entity.Payment
}

func (m *memPaymentRepo) Create(_ context.Context, payment *entity.Payment) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.TransactionID == payment.TransactionID {
			return false, nil
		}
	}
	copied := *payment
	m.payments = append(m.payments, &copied)
	return true, nil
}

func (m *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memPaymentRepo) FindByTransactionID(_ context.Context, transactionID string) (*entity.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.TransactionID == transactionID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memPaymentRepo) AdvanceStatus(_ context.Context, transactionID string, update repository.PaymentUpdate) (*repository.AdvanceResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.TransactionID != transactionID {
			continue
		}

		result := &repository.AdvanceResult{PreviousStatus: p.Status}
		if entity.PaymentStatusRank(update.Status) <= entity.PaymentStatusRank(p.Status) {
			copied := *p
			result.Payment = &copied
			return result, nil
		}

		result.FirstApproval = update.Status == entity.PaymentStatusApproved &&
			p.Status != entity.PaymentStatusApproved

		p.Status = update.Status
		if update.StatusDetail != nil {
			p.StatusDetail = update.StatusDetail
		}
		if update.TransactionAmount != nil {
			p.TransactionAmount = *update.TransactionAmount
		}
		if update.PayerEmail != nil {
			p.PayerEmail = *update.PayerEmail
		}
		if update.PaymentMethod != nil {
			p.PaymentMethod = *update.PaymentMethod
		}
		if update.DateApproved != nil {
			p.DateApproved = update.DateApproved
		}

		result.Applied = true
		copied := *p
		result.Payment = &copied
		return result, nil
	}
	return nil, nil
}

func (m *memPaymentRepo) MarkError(_ context.Context, transactionID string, details string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.TransactionID == transactionID {
			switch p.Status {
			case entity.PaymentStatusPending, entity.PaymentStatusInProcess, entity.PaymentStatusError:
				p.Status = entity.PaymentStatusError
				p.ErrorDetails = &details
			}
		}
	}
	return nil
}

func (m *memPaymentRepo) all() []*entity.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Payment, len(m.payments))
	for i, p := range m.payments {
		copied := *p
		out[i] = &copied
	}
	return out
}

type memClientRepo struct {
	clients map[uuid.UUID]*entity.Client
}

func (m *memClientRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Client, error) {
	return m.clients[id], nil
}

func (m *memClientRepo) FindByEmail(_ context.Context, email string) (*entity.Client, error) {
	for _, c := range m.clients {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

type memProductRepo struct {
	products map[uuid.UUID]*entity.Product
}

func (m *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	return m.products[id], nil
}

type memCompanyRepo struct {
	companies map[uuid.UUID]*entity.Company
}

func (m *memCompanyRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Company, error) {
	return m.companies[id], nil
}

// fakeGateway scripts gateway answers and records every idempotency key.
type fakeGateway struct {
	mu       sync.Mutex
	chargeFn func(req *gateway.ChargeRequest) (*gateway.PaymentResult, error)
	fetchFn  func(transactionID string) (*gateway.PaymentResult, error)
	keys     []string
	fetches  []string
}

func (f *fakeGateway) Charge(_ context.Context, req *gateway.ChargeRequest, key gateway.IdempotencyKey) (*gateway.PaymentResult, error) {
	f.mu.Lock()
	f.keys = append(f.keys, key.String())
	f.mu.Unlock()
	return f.chargeFn(req)
}

func (f *fakeGateway) FetchStatus(_ context.Context, transactionID string) (*gateway.PaymentResult, error) {
	f.mu.Lock()
	f.fetches = append(f.fetches, transactionID)
	f.mu.Unlock()
	return f.fetchFn(transactionID)
}

// fakeNotifier counts fan-out calls.
type fakeNotifier struct {
	mu            sync.Mutex
	approved      []string
	statusChanges []string
}

func (f *fakeNotifier) PaymentApproved(_ context.Context, payment *entity.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approved = append(f.approved, payment.TransactionID)
	return nil
}

func (f *fakeNotifier) PaymentStatusChanged(_ context.Context, transactionID string, status entity.PaymentStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusChanges = append(f.statusChanges, transactionID+":"+string(status))
}

func newTestRepo(bookings *memBookingRepo, payments *memPaymentRepo, clients *memClientRepo) *repository.Repository {
	if clients == nil {
		clients = &memClientRepo{clients: map[uuid.UUID]*entity.Client{}}
	}
	return &repository.Repository{
		Booking: bookings,
		Payment: payments,
		Client:  clients,
		Product: &memProductRepo{products: map[uuid.UUID]*entity.Product{}},
		Company: &memCompanyRepo{companies: map[uuid.UUID]*entity.Company{}},
	}
}
