package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRelay struct {
	mu        sync.Mutex
	configErr error
	sendErr   error
	block     chan struct{}
	started   chan struct{}
	calls     int
}

func (r *stubRelay) Configured() error { return r.configErr }

func (r *stubRelay) Send(ctx context.Context, p contact.Params) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.started != nil {
		close(r.started)
	}
	if r.block != nil {
		<-r.block
	}
	return r.sendErr
}

func (r *stubRelay) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func newTestServer(t *testing.T, relay contact.Relay) (*server, http.Handler) {
	t.Helper()
	site, err := content.Default()
	require.NoError(t, err)
	return newTestServerWithSite(t, relay, site)
}

func newTestServerWithSite(t *testing.T, relay contact.Relay, site *content.Site) (*server, http.Handler) {
	t.Helper()
	cfg, err := config.LoadFrom(map[string]string{
		"ADMIN_USERNAME": "owner",
		"ADMIN_PASSWORD": "hunter2",
	})
	require.NoError(t, err)
	st, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	s := newServer(cfg, site, st)
	if relay != nil {
		s.relay = relay
		s.sessions = contact.NewSessions(relay, time.Minute)
	}
	return s, s.routes()
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func postForm(path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestIndexTheme(t *testing.T) {
	_, h := newTestServer(t, nil)

	tests := []struct {
		name      string
		cookie    string
		hint      string
		wantClass string
	}{
		{"no preference", "", "", `class=""`},
		{"os prefers dark", "", "dark", `class="dark"`},
		{"cookie wins over os", "light", "dark", `class=""`},
		{"dark cookie", "dark", "", `class="dark"`},
		{"invalid cookie falls back", "neon", "dark", `class="dark"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("DNT", "1")
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: themeCookie, Value: tt.cookie})
			}
			if tt.hint != "" {
				req.Header.Set(colorSchemeHint, tt.hint)
			}
			w := do(h, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `<html lang="en" `+tt.wantClass)
			assert.Equal(t, colorSchemeHint, w.Header().Get("Accept-CH"))
			assert.Nil(t, cookieNamed(w, themeCookie), "rendering never persists")
		})
	}
}

func TestIndexRendersHiddenRevealsAndChrome(t *testing.T) {
	_, h := newTestServer(t, nil)
	w := do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	body := w.Body.String()

	assert.Contains(t, body, `data-reveal="about" data-reveal-index="0" style="opacity:0;transform:translateY(18px);filter:blur(6px);"`)
	assert.Contains(t, body, `style="background-color:rgba(255, 255, 255, 0);backdrop-filter:blur(0px);"`)
	assert.Contains(t, body, `href="#projects" data-nav="projects"`)
}

func TestIndexHidesEveryTimelineEntry(t *testing.T) {
	site, err := content.Default()
	require.NoError(t, err)
	site.Timeline = append(site.Timeline, content.TimelineEntry{Kind: "work", Title: "Intern", Org: "Acme"})
	n := len(site.Timeline)

	_, h := newTestServerWithSite(t, nil, site)
	body := do(h, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()

	last := fmt.Sprintf(`data-reveal="experience" data-reveal-index="%d" style="opacity:0;`, n-1)
	assert.Contains(t, body, last)
	assert.NotContains(t, body, `style=""`)

	sec, ok := site.Section("experience")
	require.True(t, ok)
	assert.Len(t, newRevealMessage(sec).Frames, n)
}

func TestThemeToggle(t *testing.T) {
	_, h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/theme/toggle", nil)
	req.AddCookie(&http.Cookie{Name: themeCookie, Value: "dark"})
	w := do(h, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"theme":"light"}`, w.Body.String())
	assert.JSONEq(t, `{"themeChanged":{"theme":"light"}}`, w.Header().Get("HX-Trigger"))

	c := cookieNamed(w, themeCookie)
	require.NotNil(t, c)
	assert.Equal(t, "light", c.Value)
	assert.False(t, c.HttpOnly)

	// toggling back from the persisted value restores the original
	req = httptest.NewRequest(http.MethodPost, "/theme/toggle", nil)
	req.AddCookie(c)
	w = do(h, req)
	assert.JSONEq(t, `{"theme":"dark"}`, w.Body.String())
}

func TestThemeToggleWithoutCookieUsesHint(t *testing.T) {
	_, h := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/theme/toggle", nil)
	req.Header.Set(colorSchemeHint, "dark")
	w := do(h, req)
	assert.JSONEq(t, `{"theme":"light"}`, w.Body.String())
}

func TestChromeEndpoint(t *testing.T) {
	_, h := newTestServer(t, nil)

	w := do(h, httptest.NewRequest(http.MethodGet, "/chrome?offset=150", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var msg chromeMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, 1.0, msg.BackgroundAlpha)
	assert.Equal(t, 12.0, msg.BlurPx)
	assert.True(t, msg.Scrolled)
	assert.Equal(t, "rgba(255, 255, 255, 0.95)", msg.Background)

	for _, bad := range []string{"abc", "NaN", "Inf"} {
		w = do(h, httptest.NewRequest(http.MethodGet, "/chrome?offset="+bad, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

var validForm = url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "message": {"Hello there"}}

func TestContactSuccessClearsFields(t *testing.T) {
	relay := &stubRelay{}
	s, h := newTestServer(t, relay)

	w := do(h, postForm("/contact", validForm))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `data-status="success"`)
	assert.Contains(t, body, "Thank you for your message!")
	assert.Contains(t, body, `name="name" value=""`)
	assert.Contains(t, body, `hx-disabled-elt="find button"`)
	assert.Equal(t, 1, relay.count())
	require.NotNil(t, cookieNamed(w, contactSessionCookie))

	subs, err := s.store.ListSubmissions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "success", subs[0].Status)
	assert.Equal(t, "Ada", subs[0].Name)
}

func TestContactInvalidNeverSends(t *testing.T) {
	relay := &stubRelay{}
	_, h := newTestServer(t, relay)

	form := url.Values{"name": {"  "}, "email": {"ada@example.com"}, "message": {"hi"}}
	w := do(h, postForm("/contact", form))

	assert.Contains(t, w.Body.String(), `data-status="error"`)
	assert.Contains(t, w.Body.String(), `value="ada@example.com"`)
	assert.Zero(t, relay.count())
}

func TestContactMissingCredentialsLooksLikeAnyError(t *testing.T) {
	relay := &stubRelay{configErr: errors.New("missing public key")}
	s, h := newTestServer(t, relay)

	w := do(h, postForm("/contact", validForm))
	assert.Contains(t, w.Body.String(), `data-status="error"`)
	assert.Contains(t, w.Body.String(), "Sorry, there was an error sending your message.")
	assert.Zero(t, relay.count())

	subs, err := s.store.ListSubmissions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Contains(t, subs[0].Error, "not configured")
}

func TestContactFailurePreservesFields(t *testing.T) {
	relay := &stubRelay{sendErr: errors.New("relay unreachable")}
	_, h := newTestServer(t, relay)

	w := do(h, postForm("/contact", validForm))
	body := w.Body.String()
	assert.Contains(t, body, `data-status="error"`)
	assert.Contains(t, body, `name="name" value="Ada"`)
	assert.Contains(t, body, `value="ada@example.com"`)
	assert.Contains(t, body, ">Hello there</textarea>")
	assert.Equal(t, 1, relay.count())
}

func TestContactNoDoubleSend(t *testing.T) {
	relay := &stubRelay{block: make(chan struct{}), started: make(chan struct{})}
	_, h := newTestServer(t, relay)

	w := do(h, httptest.NewRequest(http.MethodGet, "/contact-form", nil))
	session := cookieNamed(w, contactSessionCookie)
	require.NotNil(t, session)
	assert.Contains(t, w.Body.String(), `data-status="idle"`)

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- do(h, postForm("/contact", validForm, session)) }()

	select {
	case <-relay.started:
	case <-time.After(2 * time.Second):
		t.Fatal("relay was never called")
	}

	second := url.Values{"name": {"Mallory"}, "email": {"m@example.com"}, "message": {"overwrite"}}
	w = do(h, postForm("/contact", second, session))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "disabled>")
	assert.Contains(t, w.Body.String(), `name="name" value="Ada"`)
	assert.NotContains(t, w.Body.String(), "Mallory")
	assert.Equal(t, 1, relay.count())

	close(relay.block)
	w = <-first
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-status="success"`)
	assert.Equal(t, 1, relay.count())
}

func TestAdminLogin(t *testing.T) {
	_, h := newTestServer(t, nil)

	w := do(h, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))

	w = do(h, postForm("/admin/login", url.Values{"username": {"owner"}, "password": {"wrong"}}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(h, postForm("/admin/login", url.Values{"username": {"owner"}, "password": {"hunter2"}}))
	require.Equal(t, http.StatusFound, w.Code)
	token := cookieNamed(w, "admin_token")
	require.NotNil(t, token)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(token)
	w = do(h, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Contact attempts")

	req = httptest.NewRequest(http.MethodDelete, "/admin/submissions/nope", nil)
	req.AddCookie(token)
	w = do(h, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminWithoutCredentialsRejectsEveryone(t *testing.T) {
	a := newAdminAuth(&config.Config{})
	assert.False(t, a.validLogin("", ""))
	assert.False(t, a.validLogin("admin", "admin123"))
	assert.Equal(t, a.hashIP("10.0.0.1"), a.hashIP("10.0.0.1"))
	assert.Len(t, a.hashIP("10.0.0.1"), 16)
}
