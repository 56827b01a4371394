// Package config reads the server's settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/Zachkp/portfolio/internal/contact"
)

// Config is everything the server reads at startup. Missing relay
// credentials are allowed; the contact form reports them per submit.
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	GinMode      string `env:"GIN_MODE" envDefault:"debug"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/portfolio.db"`

	ContactRelay      string        `env:"CONTACT_RELAY" envDefault:"emailjs"`
	RelayTimeout      time.Duration `env:"RELAY_TIMEOUT" envDefault:"15s"`
	ContactSessionTTL time.Duration `env:"CONTACT_SESSION_TTL" envDefault:"30m"`

	EmailJS EmailJS `envPrefix:"EMAILJS_"`
	SMTP    SMTP    `envPrefix:"SMTP_"`

	// Recipient is the owner's inbox for the SMTP relay.
	Recipient string `env:"TO_EMAIL"`

	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

type EmailJS struct {
	ServiceID  string `env:"SERVICE_ID"`
	TemplateID string `env:"TEMPLATE_ID"`
	PublicKey  string `env:"PUBLIC_KEY"`
	PrivateKey string `env:"PRIVATE_KEY"`
	Endpoint   string `env:"ENDPOINT" envDefault:"https://api.emailjs.com"`
}

type SMTP struct {
	Host     string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port     string `env:"PORT" envDefault:"587"`
	User     string `env:"USER"`
	Password string `env:"PASS"`
}

// Load parses the process environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.ContactRelay {
	case "emailjs", "smtp":
	default:
		return fmt.Errorf("CONTACT_RELAY must be emailjs or smtp, got %q", c.ContactRelay)
	}
	if c.RelayTimeout <= 0 {
		return fmt.Errorf("RELAY_TIMEOUT must be positive")
	}
	return nil
}

// Relay builds the configured relay.
func (c *Config) Relay() contact.Relay {
	if c.ContactRelay == "smtp" {
		return contact.NewSMTP(contact.SMTPConfig{
			Host:      c.SMTP.Host,
			Port:      c.SMTP.Port,
			User:      c.SMTP.User,
			Password:  c.SMTP.Password,
			Recipient: c.Recipient,
		})
	}
	return contact.NewEmailJS(contact.EmailJSConfig{
		ServiceID:  c.EmailJS.ServiceID,
		TemplateID: c.EmailJS.TemplateID,
		PublicKey:  c.EmailJS.PublicKey,
		PrivateKey: c.EmailJS.PrivateKey,
		Endpoint:   c.EmailJS.Endpoint,
		Timeout:    c.RelayTimeout,
	})
}
