package request

// CheckoutItem is one cart line: a product, a date/slot and how many.
type CheckoutItem struct {
	ProductID string  `json:"productId" validate:"required,uuid"`
	CompanyID string  `json:"companyId" validate:"required,uuid"`
	Date      string  `json:"date" validate:"required"`
	Time      string  `json:"time"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	Price     float64 `json:"price" validate:"gte=0"`
}

// CheckoutRequest starts a charge attempt for a cart. Token,
// installments and issuer apply to card payments; the payer document
// (CPF) is required for pix.
type CheckoutRequest struct {
	ClientID        string         `json:"clientId" validate:"required,uuid"`
	PaymentMethodID string         `json:"payment_method_id" validate:"required"`
	Token           string         `json:"token"`
	Installments    int            `json:"installments"`
	IssuerID        string         `json:"issuer_id"`
	PayerEmail      string         `json:"payerEmail"`
	PayerDocument   string         `json:"payerDocument"`
	Description     string         `json:"description"`
	Items           []CheckoutItem `json:"items" validate:"required,min=1,dive"`
}

// IsPix reports whether this checkout uses the asynchronous QR flow.
func (r *CheckoutRequest) IsPix() bool {
	return r.PaymentMethodID == "pix"
}
