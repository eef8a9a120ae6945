package mail

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/jordan-wright/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailer_MessageCarriesAttachment(t *testing.T) {
	m := NewMailer(Config{Host: "smtp.local", Port: 587, User: "pos@shop.test"})

	e, err := m.Message("buyer@example.com", "Your receipt", "Thanks", &Attachment{
		Name: "receipt-INV-000001.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3"),
	})
	require.NoError(t, err)

	assert.Equal(t, "pos@shop.test", e.From)
	assert.Equal(t, []string{"buyer@example.com"}, e.To)
	require.Len(t, e.Attachments, 1)
	assert.Equal(t, "receipt-INV-000001.pdf", e.Attachments[0].Filename)

	raw, err := e.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Subject: Your receipt")
}

func TestMailer_SendUsesAddressAndWrapsError(t *testing.T) {
	m := NewMailer(Config{Host: "smtp.local", Port: 2525, From: "noreply@shop.test"})

	var gotAddr string
	m.send = func(_ *email.Email, addr string, auth smtp.Auth) error {
		gotAddr = addr
		assert.Nil(t, auth)
		return errors.New("connection refused")
	}

	err := m.Send("buyer@example.com", "s", "b", nil)
	require.Error(t, err)
	assert.Equal(t, "smtp.local:2525", gotAddr)
	assert.Contains(t, err.Error(), "buyer@example.com")
}
