// Package notify envía avisos por email al dueño de una identidad cuando
// alguien le pide acceso. Todo es best-effort: un SMTP caído nunca bloquea
// ni falla la creación del request.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	mail "github.com/go-mail/mail"
	"go.uber.org/zap"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
)

// SMTPConfig parámetros de conexión al servidor de correo.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled indica si hay suficiente configuración para enviar.
func (c SMTPConfig) Enabled() bool { return c.Host != "" && c.From != "" }

// Mailer notifica por SMTP. Resuelve el email del target contra el repo de
// usuarios y despacha en una goroutine.
type Mailer struct {
	cfg   SMTPConfig
	users repository.UserRepository
	log   *zap.Logger
}

func NewMailer(cfg SMTPConfig, users repository.UserRepository, log *zap.Logger) *Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mailer{cfg: cfg, users: users, log: log}
}

// ConsentRequested avisa al target que tiene un request pendiente.
func (m *Mailer) ConsentRequested(ctx context.Context, req *repository.ConsentRequest) {
	target, err := m.users.Get(ctx, req.TargetUserID)
	if err != nil {
		m.log.Warn("notify: target lookup failed",
			zap.String("consent_request_id", req.ID), zap.Error(err))
		return
	}

	subject := "Nueva solicitud de acceso a una de tus identidades"
	body := fmt.Sprintf(
		"Tenés una solicitud de acceso pendiente.\n\n"+
			"Scopes pedidos: %s\nContexto: %s\n\n"+
			"Entrá a tu cuenta para aprobarla o rechazarla.",
		strings.Join(req.RequestedScopes, ", "), req.ContextDescription,
	)

	// No bloquear el request HTTP por el SMTP.
	go func() {
		if err := m.send(target.Email, subject, body); err != nil {
			m.log.Warn("notify: smtp send failed",
				zap.String("consent_request_id", req.ID),
				zap.String("to", maskEmail(target.Email)),
				zap.Error(err))
		}
	}()
}

// maskEmail enmascara el email para logs: "a…@e….com".
func maskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	i := strings.IndexByte(s, '@')
	if i <= 0 {
		return "***"
	}
	user, dom := s[:i], s[i+1:]
	if len(user) > 1 {
		user = user[:1] + "…"
	}
	parts := strings.Split(dom, ".")
	if len(parts) > 0 && len(parts[0]) > 1 {
		parts[0] = parts[0][:1] + "…"
	}
	return user + "@" + strings.Join(parts, ".")
}

func (m *Mailer) send(to, subject, textBody string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", textBody)

	d := mail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	d.Timeout = 10 * time.Second
	d.TLSConfig = &tls.Config{ServerName: m.cfg.Host}

	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// Nop descarta las notificaciones. Para tests y despliegues sin SMTP.
type Nop struct{}

func (Nop) ConsentRequested(context.Context, *repository.ConsentRequest) {}
