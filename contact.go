package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/store"
)

const contactSessionCookie = "contact_session"

var statusMessages = map[contact.Status]string{
	contact.Idle:    "",
	contact.Sending: "Sending your message…",
	contact.Success: "Thank you for your message! I'll get back to you soon.",
	contact.Error:   "Sorry, there was an error sending your message. Please try again later.",
}

// contactController returns the visitor's controller and refreshes the
// session cookie.
func (s *server) contactController(c *gin.Context) *contact.Controller {
	id, _ := c.Cookie(contactSessionCookie)
	id, ctrl := s.sessions.Get(id)
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(contactSessionCookie, id, int(s.cfg.ContactSessionTTL.Seconds()), "/", "", false, true)
	return ctrl
}

func contactView(ctrl *contact.Controller) gin.H {
	status := ctrl.Status()
	return gin.H{
		"title":   "Contact Me",
		"form":    ctrl.Form(),
		"status":  status.String(),
		"message": statusMessages[status],
		"sending": status == contact.Sending,
	}
}

func (s *server) handleContactForm(c *gin.Context) {
	c.HTML(http.StatusOK, "contact-form.html", contactView(s.contactController(c)))
}

// handleContact runs one submit. The relay call is detached from the
// request so a visitor leaving mid-send does not cancel it; the outcome is
// simply not shown to anyone.
func (s *server) handleContact(c *gin.Context) {
	ctrl := s.contactController(c)

	var form contact.Form
	if err := c.ShouldBind(&form); err != nil {
		log.Printf("contact: binding form: %v", err)
	}

	err := ctrl.SubmitForm(context.WithoutCancel(c.Request.Context()), form)
	if errors.Is(err, contact.ErrInFlight) {
		c.HTML(http.StatusConflict, "contact-form.html", contactView(ctrl))
		return
	}
	s.recordSubmission(c.Request.Context(), form, err)

	c.HTML(http.StatusOK, "contact-form.html", contactView(ctrl))
}

func (s *server) recordSubmission(ctx context.Context, form contact.Form, err error) {
	sub := store.Submission{Name: form.Name, Email: form.Email, Message: form.Message, Status: contact.Success.String()}
	if err != nil {
		sub.Status = contact.Error.String()
		sub.Error = err.Error()
	}
	if _, err := s.store.RecordSubmission(context.WithoutCancel(ctx), sub); err != nil {
		log.Printf("Error recording contact submission: %v", err)
	}
}
