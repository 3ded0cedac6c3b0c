package notify

import (
	"fmt"
	"io"

	"agenda-booking/pkg/utils"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers voucher emails over SMTP.
type Mailer struct {
	cfg utils.EmailConfig
	log *zap.Logger
}

func NewMailer(cfg utils.EmailConfig, log *zap.Logger) *Mailer {
	return &Mailer{
		cfg: cfg,
		log: log.With(zap.String("component", "mailer")),
	}
}

func (m *Mailer) SendVoucher(to string, pdf []byte) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Seu Voucher")
	msg.SetBody("text/plain", "Aqui está o seu voucher para o evento!")
	msg.Attach("voucher.pdf",
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(pdf)
			return err
		}),
		gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
	)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		m.log.Error("Failed to send voucher email",
			zap.Error(err),
			zap.String("to", to),
		)
		return fmt.Errorf("send voucher email to %s: %w", to, err)
	}

	m.log.Info("Voucher email sent", zap.String("to", to))
	return nil
}
