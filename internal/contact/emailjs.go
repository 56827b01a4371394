package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultEmailJSEndpoint = "https://api.emailjs.com"

// EmailJSConfig holds the credentials the hosted relay needs. PrivateKey is
// optional and only sent when the account requires it.
type EmailJSConfig struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
	Endpoint   string
	Timeout    time.Duration
}

// EmailJS sends template messages through the EmailJS REST API.
type EmailJS struct {
	cfg    EmailJSConfig
	client *http.Client
}

func NewEmailJS(cfg EmailJSConfig) *EmailJS {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEmailJSEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &EmailJS{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (e *EmailJS) Configured() error {
	var missing []string
	if e.cfg.ServiceID == "" {
		missing = append(missing, "service id")
	}
	if e.cfg.TemplateID == "" {
		missing = append(missing, "template id")
	}
	if e.cfg.PublicKey == "" {
		missing = append(missing, "public key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("emailjs: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

type emailJSRequest struct {
	ServiceID      string `json:"service_id"`
	TemplateID     string `json:"template_id"`
	UserID         string `json:"user_id"`
	AccessToken    string `json:"accessToken,omitempty"`
	TemplateParams Params `json:"template_params"`
}

func (e *EmailJS) Send(ctx context.Context, p Params) error {
	if err := e.Configured(); err != nil {
		return err
	}

	body, err := json.Marshal(emailJSRequest{
		ServiceID:      e.cfg.ServiceID,
		TemplateID:     e.cfg.TemplateID,
		UserID:         e.cfg.PublicKey,
		AccessToken:    e.cfg.PrivateKey,
		TemplateParams: p,
	})
	if err != nil {
		return fmt.Errorf("emailjs: encoding request: %w", err)
	}

	url := strings.TrimRight(e.cfg.Endpoint, "/") + "/api/v1.0/email/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("emailjs: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs: %w", err)
	}
	defer resp.Body.Close()

	text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RejectedError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}
	return nil
}

// RejectedError carries the relay's answer when it refuses a message.
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("relay rejected message (%d): %s", e.StatusCode, e.Body)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRelayRejected
}

// IsRejected reports whether err came from the relay refusing the message
// rather than from the network.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRelayRejected)
}
