package main

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/chrome"
	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/reveal"
	"github.com/Zachkp/portfolio/internal/store"
	"github.com/Zachkp/portfolio/internal/theme"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

type server struct {
	cfg      *config.Config
	site     *content.Site
	sections map[string]reveal.Section
	store    *store.Store
	relay    contact.Relay
	sessions *contact.Sessions
	admin    *adminAuth
}

func newServer(cfg *config.Config, site *content.Site, st *store.Store) *server {
	relay := cfg.Relay()
	sections := make(map[string]reveal.Section)
	for _, sec := range site.Sections() {
		sections[sec.ID] = sec
	}
	return &server{
		cfg:      cfg,
		site:     site,
		sections: sections,
		store:    st,
		relay:    relay,
		sessions: contact.NewSessions(relay, cfg.ContactSessionTTL),
		admin:    newAdminAuth(cfg),
	}
}

func (s *server) templates() *template.Template {
	funcs := template.FuncMap{
		// hidden style of a section child, as rendered before any reveal
		"revealStyle": func(section string, index int) template.CSS {
			sec, ok := s.sections[section]
			if !ok || index >= len(sec.Items) {
				return ""
			}
			return template.CSS(sec.Target(false, index).Style.CSS())
		},
		"chromeStyle": func(t theme.Theme, offset float64) template.CSS {
			snap := chrome.At(offset)
			return template.CSS("background-color:" + snap.Style.Background(t) + ";backdrop-filter:" + snap.Style.Backdrop() + ";")
		},
		"dateTime": func(t time.Time) string { return t.Local().Format(time.DateTime) },
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))
}

func (s *server) routes() *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(s.templates())

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatal("Failed to load static assets:", err)
	}
	r.StaticFS("/static", http.FS(static))
	r.Static("/images", "./images")

	r.Use(s.visitorTrackingMiddleware())

	r.GET("/", s.handleIndex)
	r.POST("/theme/toggle", s.handleThemeToggle)
	r.GET("/chrome", s.handleChrome)
	r.GET("/ws/scroll", s.handleScroll)

	r.GET("/contact-form", s.handleContactForm)
	r.POST("/contact", s.handleContact)

	s.setupAdminRoutes(r)
	return r
}

// janitor evicts idle contact sessions and ages out visitor records until
// ctx is done.
func (s *server) janitor(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	s.cleanupOldVisitorData(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Evict(); n > 0 {
				log.Printf("Evicted %d idle contact sessions", n)
			}
		}
	}
}
