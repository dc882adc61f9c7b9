// Package render turns site content and form state into HTML pages using a
// pongo2 template set. The default templates are embedded; Pages resolves the
// theme once and exposes it to every template as CSS custom properties.
package render
