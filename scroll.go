package main

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Zachkp/portfolio/internal/chrome"
	"github.com/Zachkp/portfolio/internal/reveal"
	"github.com/Zachkp/portfolio/internal/theme"
)

// maxFrameBytes bounds one client frame; a page has a handful of regions.
const maxFrameBytes = 16 << 10

var (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// scrollFrame is what the browser sends: "hello" once, "theme" after a
// toggle, "scroll" on every scroll or resize.
type scrollFrame struct {
	Type     string                 `json:"type"`
	Observe  *bool                  `json:"observe,omitempty"`
	Theme    string                 `json:"theme,omitempty"`
	Offset   float64                `json:"offset"`
	Viewport reveal.Viewport        `json:"viewport"`
	Regions  map[string]reveal.Rect `json:"regions"`
}

type chromeMessage struct {
	Type            string  `json:"type"`
	Offset          float64 `json:"offset"`
	BackgroundAlpha float64 `json:"background_alpha"`
	BlurPx          float64 `json:"blur_px"`
	Scrolled        bool    `json:"scrolled"`
	Background      string  `json:"background"`
	Backdrop        string  `json:"backdrop"`
}

func newChromeMessage(snap chrome.Snapshot, t theme.Theme) chromeMessage {
	return chromeMessage{
		Type:            "chrome",
		Offset:          snap.Offset,
		BackgroundAlpha: snap.Style.BackgroundAlpha,
		BlurPx:          snap.Style.BlurPx,
		Scrolled:        snap.Scrolled,
		Background:      snap.Style.Background(t),
		Backdrop:        snap.Style.Backdrop(),
	}
}

type revealMessage struct {
	Type    string        `json:"type"`
	Section string        `json:"section"`
	Frames  []revealFrame `json:"frames"`
}

type revealFrame struct {
	Index      int    `json:"index"`
	Style      string `json:"style"`
	Transition string `json:"transition"`
	DelayMs    int64  `json:"delay_ms"`
	DurationMs int64  `json:"duration_ms"`
}

func newRevealMessage(sec reveal.Section) revealMessage {
	msg := revealMessage{Type: "reveal", Section: sec.ID}
	for _, f := range sec.Plan(true) {
		msg.Frames = append(msg.Frames, revealFrame{
			Index:      f.Index,
			Style:      f.Style.CSS(),
			Transition: f.Transition(),
			DelayMs:    f.Start.Milliseconds(),
			DurationMs: f.Duration.Milliseconds(),
		})
	}
	return msg
}

// scrollSession is the server side of one page view. It is driven by a
// single goroutine; handle is not safe for concurrent use. Chrome messages
// come from subscriptions to the session's chrome controller and theme
// store, so every sample and every theme change produces exactly one.
type scrollSession struct {
	sections []reveal.Section
	theme    *theme.Store
	chrome   *chrome.Controller
	registry *reveal.Registry
	releases []func()
	cancels  []func()
	revealed map[string]bool
	outbox   []any
}

func newScrollSession(sections []reveal.Section, t theme.Theme) *scrollSession {
	ss := &scrollSession{
		sections: sections,
		theme:    theme.NewStore(theme.NewMemoryPersister(t.String()), nil, nil),
		chrome:   chrome.NewController(),
		revealed: make(map[string]bool),
	}
	ss.theme.Init()
	ss.cancels = append(ss.cancels,
		ss.chrome.Subscribe(func(snap chrome.Snapshot) {
			ss.outbox = append(ss.outbox, newChromeMessage(snap, ss.theme.Get()))
		}),
		ss.theme.Subscribe(func(t theme.Theme) {
			ss.outbox = append(ss.outbox, newChromeMessage(ss.chrome.Latest(), t))
		}),
	)
	ss.observe(true)
	return ss
}

// observe (re)registers every section. Latches that already fired stay
// fired through revealed.
func (ss *scrollSession) observe(supported bool) {
	ss.release()
	ss.registry = reveal.NewRegistry(supported)
	for _, sec := range ss.sections {
		_, release := ss.registry.Register(sec.ID, reveal.DefaultMargin)
		ss.releases = append(ss.releases, release)
	}
}

func (ss *scrollSession) release() {
	for _, release := range ss.releases {
		release()
	}
	ss.releases = nil
	if ss.registry != nil {
		ss.registry.Close()
	}
}

// close drops every observer registration and subscription.
func (ss *scrollSession) close() {
	ss.release()
	for _, cancel := range ss.cancels {
		cancel()
	}
	ss.cancels = nil
}

// handle applies one frame and returns the messages to send back.
func (ss *scrollSession) handle(f scrollFrame) []any {
	switch f.Type {
	case "hello":
		ss.setTheme(f.Theme)
		if len(ss.outbox) == 0 {
			ss.outbox = append(ss.outbox, newChromeMessage(ss.chrome.Latest(), ss.theme.Get()))
		}
		if f.Observe != nil && !*f.Observe {
			ss.observe(false)
			ss.outbox = append(ss.outbox, ss.reveals(ss.registry.Entered())...)
		}
	case "theme":
		ss.setTheme(f.Theme)
	case "scroll":
		ss.chrome.Sample(f.Offset)
		ss.outbox = append(ss.outbox, ss.reveals(ss.registry.Update(f.Viewport, f.Regions))...)
	}
	out := ss.outbox
	ss.outbox = nil
	return out
}

// setTheme toggles the session's theme when the client reports a
// different one. Unknown values are ignored.
func (ss *scrollSession) setTheme(raw string) {
	if t, ok := theme.Parse(raw); ok && t != ss.theme.Get() {
		ss.theme.Toggle()
	}
}

func (ss *scrollSession) reveals(ids []string) []any {
	var out []any
	for _, id := range ids {
		if ss.revealed[id] {
			continue
		}
		for _, sec := range ss.sections {
			if sec.ID == id {
				ss.revealed[id] = true
				out = append(out, newRevealMessage(sec))
				break
			}
		}
	}
	return out
}

// latestFrame is a one-slot mailbox: a newer scroll sample replaces one
// the writer has not picked up yet.
type latestFrame struct {
	mu    sync.Mutex
	frame *scrollFrame
	ready chan struct{}
}

func newLatestFrame() *latestFrame {
	return &latestFrame{ready: make(chan struct{}, 1)}
}

func (l *latestFrame) put(f scrollFrame) {
	l.mu.Lock()
	l.frame = &f
	l.mu.Unlock()
	select {
	case l.ready <- struct{}{}:
	default:
	}
}

func (l *latestFrame) take() (scrollFrame, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.frame == nil {
		return scrollFrame{}, false
	}
	f := *l.frame
	l.frame = nil
	return f, true
}

func (s *server) handleScroll(c *gin.Context) {
	store, _ := themeStore(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("scroll: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxFrameBytes)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	session := newScrollSession(s.site.Sections(), store.Get())
	defer session.close()

	scrolls := newLatestFrame()
	control := make(chan scrollFrame, 8)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("scroll: websocket read: %v", err)
				}
				return
			}
			conn.SetReadDeadline(time.Now().Add(pongWait))

			var f scrollFrame
			if err := json.Unmarshal(msg, &f); err != nil {
				continue
			}
			if f.Type == "scroll" {
				scrolls.put(f)
				continue
			}
			select {
			case control <- f:
			default:
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		var f scrollFrame
		select {
		case <-done:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
			continue
		case f = <-control:
		case <-scrolls.ready:
			var ok bool
			if f, ok = scrolls.take(); !ok {
				continue
			}
		}
		for _, out := range session.handle(f) {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(out); err != nil {
				log.Printf("scroll: websocket write: %v", err)
				return
			}
		}
	}
}
