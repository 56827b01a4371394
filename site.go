package main

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Zachkp/portfolio/internal/chrome"
	"github.com/Zachkp/portfolio/internal/theme"
)

const (
	themeCookie     = "theme"
	themeCookieAge  = 365 * 24 * 60 * 60
	colorSchemeHint = "Sec-CH-Prefers-Color-Scheme"
)

// cookiePersister stores the theme in a cookie the anti-flash script can
// read, so it is not HttpOnly.
type cookiePersister struct {
	c *gin.Context
}

func (p cookiePersister) Load() (string, error) {
	v, err := p.c.Cookie(themeCookie)
	if errors.Is(err, http.ErrNoCookie) {
		return "", nil
	}
	return v, err
}

func (p cookiePersister) Save(v string) error {
	p.c.SetSameSite(http.SameSiteLaxMode)
	p.c.SetCookie(themeCookie, v, themeCookieAge, "/", "", false, false)
	return nil
}

// themeStore builds the store for one page view: cookie first, then the
// browser's color-scheme client hint.
func themeStore(c *gin.Context) (*theme.Store, *theme.RootClass) {
	root := &theme.RootClass{}
	s := theme.NewStore(cookiePersister{c}, root, func() bool {
		return c.GetHeader(colorSchemeHint) == "dark"
	})
	s.Init()
	return s, root
}

func (s *server) handleIndex(c *gin.Context) {
	store, root := themeStore(c)

	c.Header("Accept-CH", colorSchemeHint)
	c.Header("Critical-CH", colorSchemeHint)
	c.Header("Vary", colorSchemeHint)

	c.HTML(http.StatusOK, "index.html", gin.H{
		"site":      s.site,
		"theme":     store.Get(),
		"rootClass": root.Class(),
		"scrolled":  chrome.IsScrolled(0),
	})
}

func (s *server) handleThemeToggle(c *gin.Context) {
	store, _ := themeStore(c)
	t := store.Toggle()

	trigger, _ := json.Marshal(map[string]any{
		"themeChanged": map[string]string{"theme": t.String()},
	})
	c.Header("HX-Trigger", string(trigger))
	c.JSON(http.StatusOK, gin.H{"theme": t})
}

// handleChrome serves the chrome snapshot for clients without websockets.
func (s *server) handleChrome(c *gin.Context) {
	offset, err := strconv.ParseFloat(c.DefaultQuery("offset", "0"), 64)
	if err != nil || math.IsNaN(offset) || math.IsInf(offset, 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a number"})
		return
	}
	store, _ := themeStore(c)
	c.JSON(http.StatusOK, newChromeMessage(chrome.At(offset), store.Get()))
}
