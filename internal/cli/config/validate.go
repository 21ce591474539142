package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/Grainular-Nord/nord.dev/internal/emit"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Output == "" {
		errs = append(errs, fmt.Errorf("output is required"))
	}
	if _, err := emit.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	if u, err := url.Parse(c.Registry.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("registry.url must be an absolute http(s) URL, got %q", c.Registry.URL))
	}
	if c.Registry.Timeout < 0 {
		errs = append(errs, fmt.Errorf("registry.timeout must not be negative"))
	}
	if c.Registry.Rate < 0 {
		errs = append(errs, fmt.Errorf("registry.rate must not be negative"))
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		errs = append(errs, fmt.Errorf("serve.port out of range: %d", c.Serve.Port))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// OutputFormat returns the configured format, or the one implied by the
// output file extension when format was left at its default.
func (c *Config) OutputFormat() emit.Format {
	f, err := emit.ParseFormat(c.Format)
	if err != nil {
		f = emit.FormatJSON
	}
	if c.Format == "" || c.Format == DefaultFormat {
		return emit.FormatForPath(c.Output, f)
	}
	return f
}
