package site

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// Theme is the YAML shape of the site theme. It is converted into a go-theme
// manifest so the renderer receives a theme.RendererConfig.
type Theme struct {
	Name     string                  `yaml:"name"`
	Version  string                  `yaml:"version"`
	Variant  string                  `yaml:"variant"`
	Tokens   map[string]string       `yaml:"tokens"`
	Assets   ThemeAssets             `yaml:"assets"`
	Variants map[string]ThemeVariant `yaml:"variants"`
}

// ThemeAssets maps asset keys to files below Prefix.
type ThemeAssets struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

// ThemeVariant overrides tokens and assets of the base theme.
type ThemeVariant struct {
	Tokens map[string]string `yaml:"tokens"`
	Assets ThemeAssets       `yaml:"assets"`
}

func (t *Theme) normalise() error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		t.Name = "hacksite"
	}
	if strings.TrimSpace(t.Version) == "" {
		t.Version = "0.0.0"
	}
	t.Variant = strings.TrimSpace(t.Variant)
	if t.Variant != "" {
		if _, ok := t.Variants[t.Variant]; !ok {
			return fmt.Errorf("theme variant %q is not defined", t.Variant)
		}
	}
	if _, err := t.register(); err != nil {
		return err
	}
	return nil
}

// Manifest converts the theme into a go-theme manifest.
func (t Theme) Manifest() *theme.Manifest {
	manifest := &theme.Manifest{
		Name:    t.Name,
		Version: t.Version,
		Tokens:  copyStrings(t.Tokens),
		Assets: theme.Assets{
			Prefix: t.Assets.Prefix,
			Files:  copyStrings(t.Assets.Files),
		},
	}
	if len(t.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(t.Variants))
		for name, v := range t.Variants {
			manifest.Variants[name] = theme.Variant{
				Tokens: copyStrings(v.Tokens),
				Assets: theme.Assets{
					Prefix: v.Assets.Prefix,
					Files:  copyStrings(v.Assets.Files),
				},
			}
		}
	}
	return manifest
}

func (t Theme) register() (*theme.Manifest, error) {
	manifest := t.Manifest()
	registry := theme.NewRegistry()
	if err := registry.Register(manifest); err != nil {
		return nil, fmt.Errorf("theme %q: %w", t.Name, err)
	}
	return manifest, nil
}

// RendererConfig resolves the theme for variant into the configuration the
// page renderer consumes. An empty variant falls back to the one named in
// the content file; an unknown variant is an error.
func (t Theme) RendererConfig(variant string) (*theme.RendererConfig, error) {
	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = t.Variant
	}
	manifest := t.Manifest()

	tokens := copyStrings(manifest.Tokens)
	prefix := manifest.Assets.Prefix
	files := copyStrings(manifest.Assets.Files)

	if variant != "" {
		v, ok := manifest.Variants[variant]
		if !ok {
			return nil, errors.New("site: unknown theme variant " + variant)
		}
		tokens = mergeStrings(tokens, v.Tokens)
		files = mergeStrings(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &theme.RendererConfig{
		Theme:   manifest.Name,
		Variant: variant,
		Tokens:  tokens,
		CSSVars: cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
				return file
			}
			return path.Join("/", prefix, file)
		},
	}, nil
}

// CSSVarsStyle renders CSS custom properties as a declaration list in a
// stable order.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(cssValue(vars[key]))
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}

func cssValue(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '"', '\'':
			return -1
		}
		return r
	}, v)
}

func copyStrings(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func mergeStrings(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
