// Package mail sends receipt emails over SMTP.
package mail

import (
	"bytes"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// Config is the SMTP account used to send mail.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Mailer sends messages with a single PDF attachment.
type Mailer struct {
	cfg  Config
	addr string
	send func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewMailer creates a mailer. From defaults to User.
func NewMailer(cfg Config) *Mailer {
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	return &Mailer{
		cfg:  cfg,
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		send: func(e *email.Email, addr string, auth smtp.Auth) error { return e.Send(addr, auth) },
	}
}

// Attachment is an in-memory file.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message builds the email without sending it.
func (m *Mailer) Message(to, subject, body string, att *Attachment) (*email.Email, error) {
	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if att != nil {
		if _, err := e.Attach(bytes.NewReader(att.Data), att.Name, att.ContentType); err != nil {
			return nil, fmt.Errorf("attach %s: %w", att.Name, err)
		}
	}
	return e, nil
}

// Send delivers one message.
func (m *Mailer) Send(to, subject, body string, att *Attachment) error {
	e, err := m.Message(to, subject, body, att)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	if err := m.send(e, m.addr, auth); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
