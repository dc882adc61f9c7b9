package site

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content/site.yaml
var embeddedContent embed.FS

const defaultContentPath = "content/site.yaml"

// DefaultFooterHeading is used when the content file leaves it empty.
const DefaultFooterHeading = "Follow us on our social networks"

// Content is everything the pages render besides the forms.
type Content struct {
	Event    Event    `yaml:"event"`
	Schedule Schedule `yaml:"schedule"`
	Footer   Footer   `yaml:"footer"`
	Theme    Theme    `yaml:"theme"`
}

// Event holds the hero copy.
type Event struct {
	Title        string `yaml:"title"`
	Tagline      string `yaml:"tagline"`
	About        string `yaml:"about"`
	RegisterPath string `yaml:"register_path"`
	ContactPath  string `yaml:"contact_path"`
}

// Schedule is the timeline section.
type Schedule struct {
	Heading string `yaml:"heading"`
	Days    []Day  `yaml:"days"`
}

// Day groups the entries of one event day.
type Day struct {
	Name    string  `yaml:"name"`
	Entries []Entry `yaml:"entries"`
}

// Entry is one slot in a day.
type Entry struct {
	Time    string `yaml:"time"`
	Title   string `yaml:"title"`
	Details string `yaml:"details"`
}

// Footer holds the social links.
type Footer struct {
	Heading string       `yaml:"heading"`
	Links   []SocialLink `yaml:"links"`
}

// SocialLink is one external profile. Icon is inline SVG markup.
type SocialLink struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Alt  string `yaml:"alt"`
	Icon string `yaml:"icon"`
}

// Default returns the embedded content.
func Default() (*Content, error) {
	return LoadFS(embeddedContent, defaultContentPath)
}

// LoadFile reads content from a file on disk.
func LoadFile(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("site: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS reads content from fsys.
func LoadFS(fsys fs.FS, path string) (*Content, error) {
	if fsys == nil {
		return nil, errors.New("site: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("site: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes, normalises and validates YAML content. name is used in
// error messages only.
func Parse(data []byte, name string) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("site: parse %s: %w", name, err)
	}
	if err := c.normalise(); err != nil {
		return nil, fmt.Errorf("site: %s: %w", name, err)
	}
	return &c, nil
}

func (c *Content) normalise() error {
	c.Event.Title = strings.TrimSpace(c.Event.Title)
	if c.Event.Title == "" {
		return errors.New("event title is required")
	}
	c.Event.Tagline = strings.TrimSpace(c.Event.Tagline)
	c.Event.About = sanitizeRichText(c.Event.About)
	c.Event.RegisterPath = defaultPath(c.Event.RegisterPath, "/register")
	c.Event.ContactPath = defaultPath(c.Event.ContactPath, "/contact")

	c.Schedule.Heading = strings.TrimSpace(c.Schedule.Heading)
	if c.Schedule.Heading == "" {
		c.Schedule.Heading = "Timeline"
	}
	for i := range c.Schedule.Days {
		day := &c.Schedule.Days[i]
		day.Name = strings.TrimSpace(day.Name)
		if day.Name == "" {
			return fmt.Errorf("schedule day %d has no name", i+1)
		}
		if len(day.Entries) == 0 {
			return fmt.Errorf("schedule day %q has no entries", day.Name)
		}
		for j := range day.Entries {
			entry := &day.Entries[j]
			entry.Time = strings.TrimSpace(entry.Time)
			entry.Title = strings.TrimSpace(entry.Title)
			if entry.Title == "" {
				return fmt.Errorf("schedule day %q entry %d has no title", day.Name, j+1)
			}
			entry.Details = sanitizeRichText(entry.Details)
		}
	}

	c.Footer.Heading = strings.TrimSpace(c.Footer.Heading)
	if c.Footer.Heading == "" {
		c.Footer.Heading = DefaultFooterHeading
	}
	for i := range c.Footer.Links {
		link := &c.Footer.Links[i]
		link.Name = strings.TrimSpace(link.Name)
		link.URL = strings.TrimSpace(link.URL)
		if link.Name == "" || link.URL == "" {
			return fmt.Errorf("footer link %d needs a name and url", i+1)
		}
		if !strings.HasPrefix(link.URL, "https://") && !strings.HasPrefix(link.URL, "http://") {
			return fmt.Errorf("footer link %q must be an absolute http(s) url", link.Name)
		}
		if strings.TrimSpace(link.Alt) == "" {
			link.Alt = link.Name + " logo"
		}
		link.Icon = sanitizeIconMarkup(link.Icon)
	}

	return c.Theme.normalise()
}

func defaultPath(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" || !strings.HasPrefix(value, "/") {
		return fallback
	}
	return value
}
