package mail

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"os"
	"text/template"

	"github.com/phrazzld/habanero-api/internal/config"
)

// certificationSubject is the subject line of the certification mail.
const certificationSubject = "Please complete your registration"

// templateData is what the certification mail template is rendered with.
type templateData struct {
	ScreenName        string
	CertificationLink string
}

// SMTPSender implements Sender over SMTP with STARTTLS and plain
// authentication. The mail body comes from a text template loaded once at
// construction time.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	from string
	tmpl *template.Template
}

// Ensure SMTPSender implements the Sender interface
var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender creates an SMTPSender from the mail configuration, loading
// and parsing the certification mail template. Returns an error if the
// template cannot be read or parsed.
func NewSMTPSender(cfg config.MailConfig) (*SMTPSender, error) {
	raw, err := os.ReadFile(cfg.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read mail template: %w", err)
	}

	tmpl, err := template.New("certification").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse mail template: %w", err)
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
		from: cfg.From,
		tmpl: tmpl,
	}, nil
}

// SendCertification renders the template and sends the mail. The context is
// accepted for interface symmetry; net/smtp does not support cancellation
// mid-send.
func (s *SMTPSender) SendCertification(ctx context.Context, recipient, screenName, certificationLink string) error {
	var body bytes.Buffer
	err := s.tmpl.Execute(&body, templateData{
		ScreenName:        screenName,
		CertificationLink: certificationLink,
	})
	if err != nil {
		return fmt.Errorf("failed to render certification mail: %w", err)
	}

	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s",
		s.from, recipient, certificationSubject, body.String(),
	)

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send certification mail: %w", err)
	}

	return nil
}
