package notify

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// VoucherData is everything the proof-of-purchase document shows.
type VoucherData struct {
	ProductTitle string
	CompanyName  string
	Date         time.Time
	TimeSlot     string
	Quantity     int
	Total        float64
}

// PDFRenderer renders the voucher emailed to the payer after approval.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Render(data VoucherData) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Times", "B", 20)
	pdf.Text(50, 60, tr("Voucher do Agendamento"))

	pdf.SetFont("Times", "", 15)
	pdf.Text(50, 110, tr(fmt.Sprintf("Produto: %s", data.ProductTitle)))

	pdf.SetFont("Times", "", 12)
	pdf.Text(50, 130, tr(fmt.Sprintf("Empresa: %s", data.CompanyName)))
	pdf.Text(50, 150, tr(fmt.Sprintf("Data: %s", data.Date.Format("02/01/2006"))))
	if data.TimeSlot != "" {
		pdf.Text(50, 170, tr(fmt.Sprintf("Horário: %s", data.TimeSlot)))
	}
	pdf.Text(50, 190, tr(fmt.Sprintf("Quantidade: %d", data.Quantity)))
	pdf.Text(50, 210, tr(fmt.Sprintf("Total: R$ %.2f", data.Total)))
	pdf.Text(50, 240, tr("Cancelamento permitido até 48 horas antes do evento."))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render voucher pdf: %w", err)
	}
	return buf.Bytes(), nil
}
