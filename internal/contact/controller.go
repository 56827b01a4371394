package contact

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Relay delivers a message. Configured reports missing credentials before
// anything is sent.
type Relay interface {
	Configured() error
	Send(ctx context.Context, p Params) error
}

// Controller is the idle → sending → success | error state machine for one
// visitor's form. Editing fields never changes the status; only the next
// submit does.
type Controller struct {
	relay Relay

	mu     sync.Mutex
	form   Form
	status Status
	sends  int
}

func NewController(relay Relay) *Controller {
	return &Controller{relay: relay}
}

func (c *Controller) SetName(v string)    { c.edit(func(f *Form) { f.Name = v }) }
func (c *Controller) SetEmail(v string)   { c.edit(func(f *Form) { f.Email = v }) }
func (c *Controller) SetMessage(v string) { c.edit(func(f *Form) { f.Message = v }) }

// SetForm replaces all three fields at once.
func (c *Controller) SetForm(f Form) { c.edit(func(cur *Form) { *cur = f }) }

func (c *Controller) edit(fn func(*Form)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.form)
}

func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Sends counts relay calls made by this controller.
func (c *Controller) Sends() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sends
}

// Submit validates and sends the current form. It blocks while the relay
// call is in flight; a concurrent Submit during that time returns
// ErrInFlight without touching state. The returned error tells the caller
// why the status became Error; visitors only ever see the status.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.status == Sending {
		c.mu.Unlock()
		return ErrInFlight
	}
	return c.submitLocked(ctx)
}

// SubmitForm replaces the fields and submits in one step. While a send is
// in flight it returns ErrInFlight and the fields being sent stay as they
// are.
func (c *Controller) SubmitForm(ctx context.Context, f Form) error {
	c.mu.Lock()
	if c.status == Sending {
		c.mu.Unlock()
		return ErrInFlight
	}
	c.form = f
	return c.submitLocked(ctx)
}

// submitLocked runs with c.mu held and releases it.
func (c *Controller) submitLocked(ctx context.Context) error {
	form := c.form
	c.status = Idle

	if err := form.Validate(); err != nil {
		c.status = Error
		c.mu.Unlock()
		return err
	}
	if err := c.relay.Configured(); err != nil {
		c.status = Error
		c.mu.Unlock()
		log.Printf("contact: relay is not configured: %v", err)
		return fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}

	c.status = Sending
	c.sends++
	c.mu.Unlock()

	err := c.relay.Send(ctx, form.Params())

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = Error
		log.Printf("contact: send failed: %v", err)
		return fmt.Errorf("sending contact message: %w", err)
	}
	c.form = Form{}
	c.status = Success
	return nil
}
