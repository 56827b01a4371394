// Package content loads the site's static copy: biography, skills,
// timeline, projects, navigation anchors and per-section reveal settings.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/Zachkp/portfolio/internal/reveal"
)

//go:embed content.yaml
var defaultYAML []byte

type Site struct {
	Profile  Profile         `yaml:"profile"`
	Nav      []NavItem       `yaml:"nav"`
	Social   []Link          `yaml:"social"`
	Skills   []SkillGroup    `yaml:"skills"`
	Timeline []TimelineEntry `yaml:"timeline"`
	Projects []Project       `yaml:"projects"`
	Reveal   []SectionConfig `yaml:"sections"`

	BioHTML template.HTML `yaml:"-"`
}

type Profile struct {
	Name      string `yaml:"name"`
	Role      string `yaml:"role"`
	Tagline   string `yaml:"tagline"`
	Location  string `yaml:"location"`
	ResumeURL string `yaml:"resume_url"`
	Bio       string `yaml:"bio"`
}

// NavItem is a named anchor the navigation bar scrolls to.
type NavItem struct {
	Anchor string `yaml:"anchor"`
	Label  string `yaml:"label"`
}

type Link struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

type SkillGroup struct {
	Group string   `yaml:"group"`
	Items []string `yaml:"items"`
}

type TimelineEntry struct {
	Kind   string   `yaml:"kind"`
	Title  string   `yaml:"title"`
	Org    string   `yaml:"org"`
	Start  string   `yaml:"start"`
	End    string   `yaml:"end"`
	Logo   string   `yaml:"logo"`
	Points []string `yaml:"points"`
}

type Project struct {
	Title   string   `yaml:"title"`
	Summary string   `yaml:"summary"`
	Tags    []string `yaml:"tags"`

	SummaryHTML template.HTML `yaml:"-"`
}

// SectionConfig describes how a section's children reveal. Hidden, Visible
// and Duration apply to every item; unset values use the reveal defaults.
// Items is only read for sections not backed by a content list; skills,
// experience and projects always have one item per entry.
type SectionConfig struct {
	ID        string        `yaml:"id"`
	BaseDelay time.Duration `yaml:"base_delay"`
	Stagger   time.Duration `yaml:"stagger"`
	Items     int           `yaml:"items"`
	Duration  time.Duration `yaml:"duration"`
	Hidden    *reveal.Style `yaml:"hidden"`
	Visible   *reveal.Style `yaml:"visible"`
}

const defaultDuration = 800 * time.Millisecond

// Default returns the embedded site content.
func Default() (*Site, error) {
	return Parse(defaultYAML)
}

// Parse decodes, validates and renders site content.
func Parse(data []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding content: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Typographer))
	bio, err := render(md, s.Profile.Bio)
	if err != nil {
		return nil, fmt.Errorf("rendering bio: %w", err)
	}
	s.BioHTML = bio
	for i := range s.Projects {
		html, err := render(md, s.Projects[i].Summary)
		if err != nil {
			return nil, fmt.Errorf("rendering project %q: %w", s.Projects[i].Title, err)
		}
		s.Projects[i].SummaryHTML = html
	}
	return &s, nil
}

func render(md goldmark.Markdown, src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	// goldmark escapes raw HTML unless WithUnsafe is set.
	return template.HTML(buf.String()), nil
}

func (s *Site) validate() error {
	seen := make(map[string]bool)
	for _, n := range s.Nav {
		if n.Anchor == "" {
			return fmt.Errorf("nav item %q has no anchor", n.Label)
		}
		if seen[n.Anchor] {
			return fmt.Errorf("duplicate nav anchor %q", n.Anchor)
		}
		seen[n.Anchor] = true
	}

	ids := make(map[string]bool)
	for _, sec := range s.Reveal {
		if sec.ID == "" {
			return fmt.Errorf("section without id")
		}
		if ids[sec.ID] {
			return fmt.Errorf("duplicate section %q", sec.ID)
		}
		ids[sec.ID] = true
		if sec.Stagger < 0 || sec.Stagger > time.Second {
			return fmt.Errorf("section %q: stagger %s out of range", sec.ID, sec.Stagger)
		}
		if sec.BaseDelay < 0 || sec.Items < 0 {
			return fmt.Errorf("section %q: negative delay or item count", sec.ID)
		}
		if n, ok := s.listLen(sec.ID); ok && sec.Items != 0 && sec.Items != n {
			return fmt.Errorf("section %q: items is %d but the section renders %d entries", sec.ID, sec.Items, n)
		}
	}
	return nil
}

// listLen reports how many children a list-backed section renders.
func (s *Site) listLen(id string) (int, bool) {
	switch id {
	case "skills":
		return len(s.Skills), true
	case "experience":
		return len(s.Timeline), true
	case "projects":
		return len(s.Projects), true
	}
	return 0, false
}

func (s *Site) itemCount(c SectionConfig) int {
	if n, ok := s.listLen(c.ID); ok {
		return n
	}
	return c.Items
}

// Sections converts the configuration into reveal sections in declared order.
func (s *Site) Sections() []reveal.Section {
	out := make([]reveal.Section, 0, len(s.Reveal))
	for _, cfg := range s.Reveal {
		out = append(out, cfg.section(s.itemCount(cfg)))
	}
	return out
}

func (c SectionConfig) section(items int) reveal.Section {
	hidden, visible, dur := reveal.Hidden, reveal.Visible, c.Duration
	if c.Hidden != nil {
		hidden = *c.Hidden
	}
	if c.Visible != nil {
		visible = *c.Visible
	}
	if dur <= 0 {
		dur = defaultDuration
	}
	sec := reveal.Section{ID: c.ID, BaseDelay: c.BaseDelay, Stagger: c.Stagger}
	for i := 0; i < items; i++ {
		sec.Items = append(sec.Items, reveal.Item{Hidden: hidden, Visible: visible, Duration: dur})
	}
	return sec
}

// Section looks a section up by id.
func (s *Site) Section(id string) (reveal.Section, bool) {
	for _, cfg := range s.Reveal {
		if cfg.ID == id {
			return cfg.section(s.itemCount(cfg)), true
		}
	}
	return reveal.Section{}, false
}
