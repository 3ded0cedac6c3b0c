package response

import (
	"time"
)

// PixPresentment is what the frontend needs to display a Pix charge:
// the QR image payload, the copyable link and when the code expires.
type PixPresentment struct {
	QRCodeBase64   string     `json:"pixQRCode"`
	PixLink        string     `json:"pixLink"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
}

type CheckoutResponse struct {
	PaymentID     string          `json:"id"`
	TransactionID string          `json:"transactionId"`
	Status        string          `json:"status"`
	StatusDetail  string          `json:"statusDetail,omitempty"`
	BookingIDs    []string        `json:"bookingIds"`
	Pix           *PixPresentment `json:"pix,omitempty"`
	PixAttemptID  string          `json:"attemptId,omitempty"`
}

// PixAttemptResponse is the QR lifecycle state the frontend polls.
type PixAttemptResponse struct {
	AttemptID      string     `json:"attemptId"`
	State          string     `json:"state"`
	TransactionID  string     `json:"transactionId,omitempty"`
	PaymentID      string     `json:"paymentId,omitempty"`
	QRCodeBase64   string     `json:"pixQRCode,omitempty"`
	PixLink        string     `json:"pixLink,omitempty"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
	SecondsLeft    int        `json:"secondsLeft"`
	FailureMessage string     `json:"failureMessage,omitempty"`
}
