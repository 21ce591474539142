package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Grainular-Nord/nord.dev/internal/registry"
)

// maxManifestFetches bounds concurrent registry requests.
const maxManifestFetches = 4

// packageInfo is one row of the versions listing.
type packageInfo struct {
	Package     string `json:"package"`
	Version     string `json:"version,omitempty"`
	License     string `json:"license,omitempty"`
	Description string `json:"description,omitempty"`
	Error       string `json:"error,omitempty"`
}

// NewVersionsCommand creates the versions command.
func NewVersionsCommand() *cobra.Command {
	var siteFile string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "versions [package...]",
		Short: "Show the latest published versions of packages",
		Long: `Query the npm registry for the latest published version of each package.

Without arguments the packages referenced by ${npm:<package>} placeholders in
the site definition are listed. Package names are resolved inside the
configured scope.

Output adapts to environment:
  - Terminal: table
  - Piped/Scripted: Markdown table
Use --json for machine-readable output.`,
		Example: `  # Packages used by the site
  nordsite versions

  # Specific packages
  nordsite versions nord nord-cli

  # JSON output
  nordsite versions --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)

			pkgs := args
			if len(pkgs) == 0 {
				s, err := cc.loadSite(cc.siteFile(siteFile))
				if err != nil {
					return err
				}
				pkgs = s.Packages()
			}
			if len(pkgs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No packages referenced.")
				return nil
			}

			infos := fetchPackageInfo(cmd.Context(), cc.Registry, pkgs)

			var err error
			if jsonOut {
				err = versionsJSON(cmd.OutOrStdout(), infos)
			} else {
				versionsTable(cmd.OutOrStdout(), infos)
			}
			if err != nil {
				return err
			}

			failed := 0
			for _, info := range infos {
				if info.Error != "" {
					cc.Logger.Warn("package lookup failed", "package", info.Package, "error", info.Error)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d package(s) could not be resolved", failed, len(infos))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&siteFile, "site", "", "Site definition file (default: built-in nord.dev site)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}

// fetchPackageInfo looks up every package concurrently; results keep the
// order of pkgs and failures are recorded per row.
func fetchPackageInfo(ctx context.Context, client *registry.Client, pkgs []string) []packageInfo {
	infos := make([]packageInfo, len(pkgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxManifestFetches)
	for i, pkg := range pkgs {
		g.Go(func() error {
			infos[i].Package = pkg
			m, err := client.Manifest(gctx, pkg)
			if err != nil {
				infos[i].Error = err.Error()
				return nil
			}
			infos[i].Version = m.Version
			infos[i].License = m.License
			infos[i].Description = m.Description
			return nil
		})
	}
	_ = g.Wait()

	return infos
}

func versionsTable(w io.Writer, infos []packageInfo) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Package", "Version", "License", "Description"})
	for _, info := range infos {
		version, desc := info.Version, info.Description
		if info.Error != "" {
			version, desc = "-", info.Error
		}
		t.AppendRow(table.Row{info.Package, version, info.License, desc})
	}

	if isTerminal(w) {
		t.Render()
		return
	}
	t.RenderMarkdown()
}

func versionsJSON(w io.Writer, infos []packageInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(infos)
}
