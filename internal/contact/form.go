// Package contact runs the contact form's submission state machine and the
// relays that deliver a message as email.
package contact

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidForm means a required field was empty or only whitespace.
	ErrInvalidForm = errors.New("contact: required field is empty")
	// ErrNotConfigured means the relay is missing its credentials.
	ErrNotConfigured = errors.New("contact: relay not configured")
	// ErrInFlight is returned when a submit arrives while one is sending.
	ErrInFlight = errors.New("contact: submission already in flight")
	// ErrRelayRejected means the relay answered but refused the message.
	ErrRelayRejected = errors.New("contact: relay rejected message")
)

// Form holds the three user-editable fields.
type Form struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Message string `json:"message" form:"message"`
}

// Validate only checks that every field has non-blank content. The email
// format is deliberately not checked.
func (f Form) Validate() error {
	for _, field := range []struct{ name, value string }{
		{"name", f.Name},
		{"email", f.Email},
		{"message", f.Message},
	} {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: %s", ErrInvalidForm, field.name)
		}
	}
	return nil
}

// Params are the template variables the relay receives.
type Params struct {
	FromName string `json:"from_name"`
	ReplyTo  string `json:"reply_to"`
	Message  string `json:"message"`
}

// Params maps the form onto relay template variables, untrimmed.
func (f Form) Params() Params {
	return Params{FromName: f.Name, ReplyTo: f.Email, Message: f.Message}
}

// Status is the submission state shown next to the form.
type Status int

const (
	Idle Status = iota
	Sending
	Success
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}
