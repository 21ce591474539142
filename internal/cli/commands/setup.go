package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Grainular-Nord/nord.dev/internal/cli/config"
	"github.com/Grainular-Nord/nord.dev/internal/registry"
	"github.com/Grainular-Nord/nord.dev/internal/site"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Registry *registry.Client
}

// NewCommandContext creates a CommandContext from the loaded configuration
// and the logger stored on the command.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Registry: newRegistryClient(cfg, logger),
	}
}

// getConfig returns the current configuration, or the defaults when the
// command runs without the root command's pre-run.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// userAgent identifies nordsite to the registry.
var userAgent = "nordsite"

// SetVersion records the running version for the registry User-Agent.
func SetVersion(v string) {
	userAgent = "nordsite/" + v
}

func newRegistryClient(cfg *config.Config, logger *slog.Logger) *registry.Client {
	return registry.New(
		registry.WithBaseURL(cfg.Registry.URL),
		registry.WithScope(cfg.Registry.Scope),
		registry.WithTimeout(cfg.Registry.Timeout),
		registry.WithRateLimit(cfg.Registry.Rate),
		registry.WithUserAgent(userAgent),
		registry.WithLogger(logger),
	)
}

// siteFile picks the site definition path: the command flag when given,
// otherwise the configured one.
func (c *CommandContext) siteFile(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return c.Cfg.SiteFile
}

// loadSite loads and validates the site definition at path, or the built-in
// nord.dev site when path is empty.
func (c *CommandContext) loadSite(path string) (*site.Site, error) {
	s, err := site.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if path == "" {
		c.Logger.Debug("using built-in site definition")
	} else {
		c.Logger.Debug("loaded site definition", "path", path)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("site definition is invalid:\n%w", err)
	}
	return s, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}
