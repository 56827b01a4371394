package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/contact"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "emailjs", cfg.ContactRelay)
	assert.Equal(t, 15*time.Second, cfg.RelayTimeout)
	assert.Equal(t, 30*time.Minute, cfg.ContactSessionTTL)
	assert.Equal(t, "https://api.emailjs.com", cfg.EmailJS.Endpoint)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
}

func TestMissingCredentialsAreNotFatal(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)

	relay := cfg.Relay()
	require.IsType(t, &contact.EmailJS{}, relay)
	assert.Error(t, relay.Configured())
}

func TestEmailJSFromEnv(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"EMAILJS_SERVICE_ID":  "service_x",
		"EMAILJS_TEMPLATE_ID": "template_y",
		"EMAILJS_PUBLIC_KEY":  "pk",
		"RELAY_TIMEOUT":       "3s",
	})
	require.NoError(t, err)

	assert.Equal(t, "service_x", cfg.EmailJS.ServiceID)
	assert.Equal(t, 3*time.Second, cfg.RelayTimeout)
	assert.NoError(t, cfg.Relay().Configured())
}

func TestSMTPRelay(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"CONTACT_RELAY": "smtp",
		"SMTP_USER":     "me@example.com",
		"SMTP_PASS":     "app-password",
		"TO_EMAIL":      "inbox@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "inbox@example.com", cfg.Recipient)
	relay := cfg.Relay()
	require.IsType(t, &contact.SMTP{}, relay)
	assert.NoError(t, relay.Configured())
}

func TestInvalid(t *testing.T) {
	_, err := LoadFrom(map[string]string{"CONTACT_RELAY": "carrier-pigeon"})
	assert.Error(t, err)

	_, err = LoadFrom(map[string]string{"RELAY_TIMEOUT": "0s"})
	assert.Error(t, err)

	_, err = LoadFrom(map[string]string{"RELAY_TIMEOUT": "soon"})
	assert.Error(t, err)
}
