package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Grainular-Nord/nord.dev/internal/cli/config"
	"github.com/Grainular-Nord/nord.dev/internal/emit"
	"github.com/Grainular-Nord/nord.dev/internal/site"
)

// offlineVersion replaces every placeholder when building with --offline.
const offlineVersion = "latest"

// BuildOptions holds options for the build command.
type BuildOptions struct {
	SiteFile string
	Out      string
	Format   string
	Offline  bool
	Stdout   bool
}

// NewBuildCommand creates the build command.
func NewBuildCommand() *cobra.Command {
	opts := &BuildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the site configuration",
		Long: `Load the site definition, validate it, resolve ${npm:<package>} version
placeholders against the npm registry and write the resulting configuration.

Without --site the built-in nord.dev definition is used. The output format
follows --format, or the extension of the output file.`,
		Example: `  # Build the built-in nord.dev configuration
  nordsite build

  # Build a custom definition as YAML
  nordsite build --site docs/site.yaml --out docs/.vitepress/config.yaml

  # Build without network access
  nordsite build --offline

  # Print the configuration instead of writing it
  nordsite build --stdout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.SiteFile, "site", "", "Site definition file (default: built-in nord.dev site)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output file (default: "+config.DefaultOutput+")")
	cmd.Flags().StringVar(&opts.Format, "format", "", "Output format (json|yaml)")
	cmd.Flags().BoolVar(&opts.Offline, "offline", false, "Use \""+offlineVersion+"\" for every version placeholder")
	cmd.Flags().BoolVar(&opts.Stdout, "stdout", false, "Write the configuration to stdout instead of a file")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(emit.FormatJSON), string(emit.FormatYAML)}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runBuild(cmd *cobra.Command, opts *BuildOptions) error {
	cc := NewCommandContext(cmd)

	s, err := cc.loadSite(cc.siteFile(opts.SiteFile))
	if err != nil {
		return err
	}

	var src site.VersionSource = cc.Registry
	if opts.Offline {
		src = site.Fixed(offlineVersion)
	}
	resolved, err := s.Resolve(cmd.Context(), src)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	out := opts.Out
	if out == "" {
		out = cc.Cfg.Output
	}
	format := cc.Cfg.OutputFormat()
	if opts.Format != "" {
		if format, err = emit.ParseFormat(opts.Format); err != nil {
			return err
		}
	} else if opts.Out != "" {
		format = emit.FormatForPath(out, format)
	}

	if opts.Stdout {
		return emit.Encode(cmd.OutOrStdout(), resolved, format)
	}

	if !filepath.IsAbs(out) {
		if abs, err := filepath.Abs(out); err == nil {
			out = abs
		}
	}
	if err := emit.Write(out, resolved, format); err != nil {
		return err
	}

	cc.Logger.Info("configuration written", "path", out, "format", format, "packages", len(s.Packages()))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", out, format)
	return nil
}
