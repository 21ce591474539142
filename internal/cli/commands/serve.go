package commands

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Grainular-Nord/nord.dev/internal/preview"
	"github.com/Grainular-Nord/nord.dev/internal/site"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var siteFile string
	var port int
	var offline bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolved configuration with live reload",
		Long: `Start a local preview server for the resolved site configuration.

Endpoints:
  /config.json   resolved configuration as JSON
  /config.yaml   resolved configuration as YAML
  /__reload      server-sent events, one "reload" per rebuild
  /healthz       liveness

When a site file is given it is watched and rebuilt on change. A failed
rebuild is logged and the previous configuration keeps being served.`,
		Example: `  # Serve the built-in definition
  nordsite serve

  # Serve and watch a custom definition on another port
  nordsite serve --site docs/site.yaml --port 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)

			if !cmd.Flags().Changed("port") {
				port = cc.Cfg.Serve.Port
			}

			var src site.VersionSource = cc.Registry
			if offline {
				src = site.Fixed(offlineVersion)
			}

			srv := preview.NewServer(preview.Config{
				SiteFile: cc.siteFile(siteFile),
				Source:   src,
				Logger:   cc.Logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.Reload(ctx); err != nil {
				return err
			}

			var lc net.ListenConfig
			ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort("localhost", strconv.Itoa(port)))
			if err != nil {
				return fmt.Errorf("failed to listen on port %d: %w", port, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving site configuration at http://%s/config.json\n", ln.Addr())
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

			return srv.Serve(ctx, ln)
		},
	}

	cmd.Flags().StringVar(&siteFile, "site", "", "Site definition file (default: built-in nord.dev site)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use \""+offlineVersion+"\" for every version placeholder")

	return cmd
}
