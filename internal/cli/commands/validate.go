package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var siteFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a site definition without building it",
		Long: `Validate the site definition and report every problem found.

Checks links, sidebar bases, nesting depth, social links, the search provider
and the package names used in ${npm:<package>} placeholders. No network
access is needed.`,
		Example: `  # Validate the built-in definition
  nordsite validate

  # Validate a custom definition
  nordsite validate --site docs/site.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			s, err := cc.loadSite(cc.siteFile(siteFile))
			if err != nil {
				return err
			}

			sections := 0
			for _, secs := range s.ThemeConfig.Sidebar {
				sections += len(secs)
			}
			pkgs := s.Packages()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "✓ %s is valid\n", s.Title)
			_, _ = fmt.Fprintf(out, "  nav entries:      %d\n", len(s.ThemeConfig.Nav))
			_, _ = fmt.Fprintf(out, "  sidebar sections: %d\n", sections)
			if len(pkgs) > 0 {
				_, _ = fmt.Fprintf(out, "  packages:         %s\n", strings.Join(pkgs, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&siteFile, "site", "", "Site definition file (default: built-in nord.dev site)")

	return cmd
}
