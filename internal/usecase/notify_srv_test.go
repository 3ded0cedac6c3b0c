package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"agenda-booking/internal/data/entity"
	"agenda-booking/internal/notify"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRenderer struct {
	rendered []notify.VoucherData
}

func (s *stubRenderer) Render(data notify.VoucherData) ([]byte, error) {
	s.rendered = append(s.rendered, data)
	return []byte("%PDF-stub"), nil
}

type stubMailer struct {
	failFor string
	sent    []string
}

func (s *stubMailer) SendVoucher(to string, _ []byte) error {
	if to == s.failFor {
		return errors.New("smtp refused")
	}
	s.sent = append(s.sent, to)
	return nil
}

type stubPusher struct {
	confirmed []string
	changed   []string
}

func (s *stubPusher) PaymentConfirmed(_ context.Context, transactionID, status string) error {
	s.confirmed = append(s.confirmed, transactionID+":"+status)
	return nil
}

func (s *stubPusher) PaymentStatusChanged(_ context.Context, transactionID, status string) error {
	s.changed = append(s.changed, transactionID+":"+status)
	return nil
}

func seedApprovedPurchase(t *testing.T, bookings *memBookingRepo, clients map[uuid.UUID]*entity.Client, products map[uuid.UUID]*entity.Product, companies map[uuid.UUID]*entity.Company, paymentID uuid.UUID, clientEmail string) {
	t.Helper()

	clientID := uuid.New()
	productID := uuid.New()
	companyID := uuid.New()

	clients[clientID] = &entity.Client{Base: entity.Base{ID: clientID}, Name: "Ana", Email: clientEmail, CPF: "52998224725"}
	products[productID] = &entity.Product{Base: entity.Base{ID: productID}, Title: "Passeio de barco", Price: 120}
	companies[companyID] = &entity.Company{Base: entity.Base{ID: companyID}, Name: "Mar Azul"}

	pid := paymentID
	cid := clientID
	require.NoError(t, bookings.CreateBatch(context.Background(), []*entity.Booking{{
		Base:          entity.Base{ID: uuid.New()},
		ProductID:     productID,
		CompanyID:     companyID,
		ClientID:      &cid,
		PaymentID:     &pid,
		Date:          time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		TimeSlot:      "14:00",
		Quantity:      2,
		UnitPrice:     120,
		Status:        entity.BookingStatusConfirmed,
		PaymentStatus: entity.BookingPaymentApproved,
	}}))
}

func TestPaymentApprovedDeliversVouchers(t *testing.T) {
	bookings := &memBookingRepo{}
	clients := map[uuid.UUID]*entity.Client{}
	products := map[uuid.UUID]*entity.Product{}
	companies := map[uuid.UUID]*entity.Company{}

	paymentID := uuid.New()
	seedApprovedPurchase(t, bookings, clients, products, companies, paymentID, "ana@example.com")
	seedApprovedPurchase(t, bookings, clients, products, companies, paymentID, "bia@example.com")

	repo := newTestRepo(bookings, &memPaymentRepo{}, &memClientRepo{clients: clients})
	repo.Product = &memProductRepo{products: products}
	repo.Company = &memCompanyRepo{companies: companies}

	renderer := &stubRenderer{}
	mailer := &stubMailer{}
	pusher := &stubPusher{}
	svc := NewNotificationService(repo, renderer, mailer, pusher, zap.NewNop())

	err := svc.PaymentApproved(context.Background(), &entity.Payment{
		Base:          entity.Base{ID: paymentID},
		TransactionID: "555",
		Status:        entity.PaymentStatusApproved,
		PayerEmail:    "payer@example.com",
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ana@example.com", "bia@example.com"}, mailer.sent)
	require.Len(t, renderer.rendered, 2)
	assert.Equal(t, "Passeio de barco", renderer.rendered[0].ProductTitle)
	assert.Equal(t, 240.0, renderer.rendered[0].Total)
	assert.Equal(t, []string{"555:approved"}, pusher.confirmed)
}

func TestPaymentApprovedPartialDeliveryFailure(t *testing.T) {
	bookings := &memBookingRepo{}
	clients := map[uuid.UUID]*entity.Client{}
	products := map[uuid.UUID]*entity.Product{}
	companies := map[uuid.UUID]*entity.Company{}

	paymentID := uuid.New()
	seedApprovedPurchase(t, bookings, clients, products, companies, paymentID, "ana@example.com")
	seedApprovedPurchase(t, bookings, clients, products, companies, paymentID, "broken@example.com")

	repo := newTestRepo(bookings, &memPaymentRepo{}, &memClientRepo{clients: clients})
	repo.Product = &memProductRepo{products: products}
	repo.Company = &memCompanyRepo{companies: companies}

	mailer := &stubMailer{failFor: "broken@example.com"}
	pusher := &stubPusher{}
	svc := NewNotificationService(repo, &stubRenderer{}, mailer, pusher, zap.NewNop())

	err := svc.PaymentApproved(context.Background(), &entity.Payment{
		Base:          entity.Base{ID: paymentID},
		TransactionID: "556",
		Status:        entity.PaymentStatusApproved,
	})

	// The failure is reported, but the other booking still got its
	// voucher and the push still went out.
	require.Error(t, err)
	assert.Equal(t, []string{"ana@example.com"}, mailer.sent)
	assert.Equal(t, []string{"556:approved"}, pusher.confirmed)
}

func TestPaymentStatusChangedPushesEvent(t *testing.T) {
	pusher := &stubPusher{}
	repo := newTestRepo(&memBookingRepo{}, &memPaymentRepo{}, nil)
	svc := NewNotificationService(repo, &stubRenderer{}, &stubMailer{}, pusher, zap.NewNop())

	svc.PaymentStatusChanged(context.Background(), "557", entity.PaymentStatusRejected)

	assert.Equal(t, []string{"557:rejected"}, pusher.changed)
}
