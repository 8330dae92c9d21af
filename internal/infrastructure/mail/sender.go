package mail

import (
	"fmt"
	"path/filepath"

	gomail "gopkg.in/gomail.v2"

	"github.com/jhoicas/gestor-facturas/pkg/config"
)

// Sender despacho de notificaciones por SMTP: envía el comprimido de la
// factura como adjunto al destinatario configurado.
type Sender struct {
	cfg config.SMTPConfig
}

// NewSender construye el despachador.
func NewSender(cfg config.SMTPConfig) *Sender {
	return &Sender{cfg: cfg}
}

// SendInvoice envía el ZIP adjunto. Un error deja el comprimido sin mover
// para que la próxima corrida lo reintente.
func (s *Sender) SendInvoice(recipient, zipPath string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", s.cfg.Subject)
	m.SetBody("text/plain", " ")
	m.Attach(zipPath, gomail.Rename(filepath.Base(zipPath)))

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("enviar correo a %s: %w", recipient, err)
	}
	return nil
}
