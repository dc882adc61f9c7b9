package render

import (
	"errors"
	"fmt"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-hacksite/pkg/site"
)

// PagesOption customises a Pages value.
type PagesOption func(*Pages)

// WithRenderer replaces the embedded template engine.
func WithRenderer(renderer TemplateRenderer) PagesOption {
	return func(p *Pages) {
		if renderer != nil {
			p.renderer = renderer
		}
	}
}

// WithTheme sets the resolved theme used for CSS variables and asset URLs.
func WithTheme(cfg *theme.RendererConfig) PagesOption {
	return func(p *Pages) {
		p.theme = cfg
	}
}

// Pages renders the site pages.
type Pages struct {
	renderer TemplateRenderer
	content  *site.Content
	theme    *theme.RendererConfig
}

// NewPages builds the page renderer for content. Without WithRenderer the
// embedded templates are used; without WithTheme the content's default
// variant is resolved.
func NewPages(content *site.Content, options ...PagesOption) (*Pages, error) {
	if content == nil {
		return nil, errors.New("render: content is nil")
	}
	p := &Pages{content: content}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}

	if p.theme == nil {
		cfg, err := content.Theme.RendererConfig("")
		if err != nil {
			return nil, fmt.Errorf("render: resolve theme: %w", err)
		}
		p.theme = cfg
	}

	if p.renderer == nil {
		engine, err := NewEngine(WithFS(Templates()))
		if err != nil {
			return nil, err
		}
		p.renderer = engine
	}

	if err := p.renderer.GlobalContext(p.globals()); err != nil {
		return nil, fmt.Errorf("render: apply globals: %w", err)
	}
	return p, nil
}

func (p *Pages) globals() map[string]any {
	stylesheet := ""
	if p.theme.AssetURL != nil {
		stylesheet = p.theme.AssetURL("stylesheet")
	}
	return map[string]any{
		"event": map[string]any{
			"title":         p.content.Event.Title,
			"tagline":       p.content.Event.Tagline,
			"about":         p.content.Event.About,
			"register_path": p.content.Event.RegisterPath,
			"contact_path":  p.content.Event.ContactPath,
		},
		"footer": footerData(p.content.Footer),
		"theme": map[string]any{
			"name":       p.theme.Theme,
			"variant":    p.theme.Variant,
			"style":      site.CSSVarsStyle(p.theme.CSSVars),
			"stylesheet": stylesheet,
		},
	}
}

// Home renders the landing page with the schedule and the contact form.
func (p *Pages) Home(view ContactView) ([]byte, error) {
	return p.render("home", map[string]any{
		"page":     "home",
		"schedule": scheduleData(p.content.Schedule),
		"contact":  contactData(view),
	})
}

// Register renders the registration page.
func (p *Pages) Register(view RegisterView) ([]byte, error) {
	return p.render("register", map[string]any{
		"page": "register",
		"form": registerData(view),
	})
}

// Contact renders the standalone contact page.
func (p *Pages) Contact(view ContactView) ([]byte, error) {
	return p.render("contact", map[string]any{
		"page":    "contact",
		"contact": contactData(view),
	})
}

func (p *Pages) render(name string, data map[string]any) ([]byte, error) {
	out, err := p.renderer.RenderTemplate(name, data)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}
