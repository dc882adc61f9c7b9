// Package config loads the site configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime settings for the site and the terminal client.
type Config struct {
	Addr             string        `env:"HACKSITE_ADDR"               envDefault:":8080"`
	RegisterEndpoint string        `env:"HACKSITE_REGISTER_ENDPOINT"  envDefault:"http://regestrationrenion.atwebpages.com/register.php"`
	ContactEndpoint  string        `env:"HACKSITE_CONTACT_ENDPOINT"   envDefault:"https://brahimkedjarstore.epizy.com/send-contact-message.php"`
	RequestTimeout   time.Duration `env:"HACKSITE_REQUEST_TIMEOUT"    envDefault:"0s"`
	RedirectDelay    time.Duration `env:"HACKSITE_REDIRECT_DELAY"     envDefault:"2s"`
	RedirectTo       string        `env:"HACKSITE_REDIRECT_TO"        envDefault:"/"`
	ContentFile      string        `env:"HACKSITE_CONTENT_FILE"`
	ThemeVariant     string        `env:"HACKSITE_THEME_VARIANT"      envDefault:"dark"`
	ValidateContract bool          `env:"HACKSITE_VALIDATE_CONTRACT"  envDefault:"true"`
	LogLevel         string        `env:"LOG_LEVEL"                   envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT"                  envDefault:"text"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that would make the site unusable.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("config: HACKSITE_ADDR is empty"))
	}
	if err := checkEndpoint("HACKSITE_REGISTER_ENDPOINT", c.RegisterEndpoint); err != nil {
		errs = append(errs, err)
	}
	if err := checkEndpoint("HACKSITE_CONTACT_ENDPOINT", c.ContactEndpoint); err != nil {
		errs = append(errs, err)
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, errors.New("config: HACKSITE_REQUEST_TIMEOUT must not be negative"))
	}
	if c.RedirectDelay < 0 {
		errs = append(errs, errors.New("config: HACKSITE_REDIRECT_DELAY must not be negative"))
	}
	if !strings.HasPrefix(c.RedirectTo, "/") {
		errs = append(errs, fmt.Errorf("config: HACKSITE_REDIRECT_TO must be a site path, got %q", c.RedirectTo))
	}
	return errors.Join(errs...)
}

func checkEndpoint(name, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("config: %s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: %s must be an http(s) URL, got %q", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("config: %s is missing a host", name)
	}
	return nil
}
