package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailJSConfigured(t *testing.T) {
	err := NewEmailJS(EmailJSConfig{ServiceID: "svc"}).Configured()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template id, public key")

	assert.NoError(t, NewEmailJS(EmailJSConfig{ServiceID: "svc", TemplateID: "tpl", PublicKey: "pk"}).Configured())
}

func TestEmailJSSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1.0/email/send", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	relay := NewEmailJS(EmailJSConfig{ServiceID: "svc", TemplateID: "tpl", PublicKey: "pk", Endpoint: srv.URL})
	err := relay.Send(context.Background(), Params{FromName: "A", ReplyTo: "a@b.com", Message: "hi"})
	require.NoError(t, err)

	assert.Equal(t, "svc", got["service_id"])
	assert.Equal(t, "tpl", got["template_id"])
	assert.Equal(t, "pk", got["user_id"])
	assert.NotContains(t, got, "accessToken")
	assert.Equal(t, map[string]any{"from_name": "A", "reply_to": "a@b.com", "message": "hi"}, got["template_params"])
}

func TestEmailJSRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "The Public Key is invalid", http.StatusBadRequest)
	}))
	defer srv.Close()

	relay := NewEmailJS(EmailJSConfig{ServiceID: "svc", TemplateID: "tpl", PublicKey: "bad", Endpoint: srv.URL})
	err := relay.Send(context.Background(), valid.Params())

	require.Error(t, err)
	assert.True(t, IsRejected(err))
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, http.StatusBadRequest, rej.StatusCode)
	assert.Equal(t, "The Public Key is invalid", rej.Body)
}

func TestEmailJSTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	relay := NewEmailJS(EmailJSConfig{ServiceID: "svc", TemplateID: "tpl", PublicKey: "pk", Endpoint: srv.URL, Timeout: 50 * time.Millisecond})
	err := relay.Send(context.Background(), valid.Params())
	require.Error(t, err)
	assert.False(t, IsRejected(err))
}

func TestControllerWithEmailJSRejectionKeepsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewController(NewEmailJS(EmailJSConfig{ServiceID: "svc", TemplateID: "tpl", PublicKey: "pk", Endpoint: srv.URL}))
	c.SetForm(valid)

	err := c.Submit(context.Background())
	assert.True(t, IsRejected(err))
	assert.Equal(t, Error, c.Status())
	assert.Equal(t, valid, c.Form())
}

func TestSMTPSend(t *testing.T) {
	relay := NewSMTP(SMTPConfig{User: "me@example.com", Password: "secret", Recipient: "inbox@example.com"})

	var addr string
	var to []string
	var msg []byte
	relay.send = func(a string, _ smtp.Auth, from string, rcpt []string, m []byte) error {
		addr, to, msg = a, rcpt, m
		assert.Equal(t, "me@example.com", from)
		return nil
	}

	require.NoError(t, relay.Send(context.Background(), Params{FromName: "Eve\r\nBcc: x@y.z", ReplyTo: "eve@example.com", Message: "hello"}))
	assert.Equal(t, "smtp.gmail.com:587", addr)
	assert.Equal(t, []string{"inbox@example.com"}, to)
	assert.Contains(t, string(msg), "Subject: Portfolio Contact: Eve  Bcc: x@y.z\r\n")
	assert.Contains(t, string(msg), "Reply-To: eve@example.com\r\n")
	assert.NotContains(t, string(msg), "\r\nBcc:")
}

func TestSMTPNotConfigured(t *testing.T) {
	relay := NewSMTP(SMTPConfig{})
	assert.Error(t, relay.Configured())

	c := NewController(relay)
	c.SetForm(valid)
	assert.ErrorIs(t, c.Submit(context.Background()), ErrNotConfigured)
}

func TestSMTPFailure(t *testing.T) {
	relay := NewSMTP(SMTPConfig{User: "u", Password: "p"})
	relay.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("535 authentication failed")
	}
	err := relay.Send(context.Background(), valid.Params())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "535")
}
