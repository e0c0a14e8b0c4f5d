package mailer

import (
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"

	"workorders/internal/model"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer delivers onboarding codes by e-mail.
type SMTPMailer struct {
	from   string
	dialer dialer
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

func (m *SMTPMailer) SendAccessCode(c *model.AccessCode) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", c.Email)
	msg.SetHeader("Subject", "Your access code")
	msg.SetBody("text/html", accessCodeBody(c))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send access code to %s: %w", c.Email, err)
	}
	return nil
}

func accessCodeBody(c *model.AccessCode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hello %s,</p>\n", html.EscapeString(c.CustomName))
	fmt.Fprintf(&b, "<p>Your access code for contract %s is <b>%s</b>.</p>\n",
		html.EscapeString(c.ContractNumber), html.EscapeString(c.SecretCode))
	fmt.Fprintf(&b, "<p>It grants the %s role and expires on %s.</p>",
		html.EscapeString(c.Role), c.ExpirationDate.UTC().Format("2006-01-02 15:04 MST"))
	return b.String()
}
