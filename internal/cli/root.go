// Package cli provides the command-line interface for nordsite.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Grainular-Nord/nord.dev/internal/cli/commands"
	"github.com/Grainular-Nord/nord.dev/internal/cli/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nordsite",
		Short: "nordsite - site configuration builder for nord.dev",
		Long: `nordsite builds the documentation-site configuration for nord.dev.

It loads a site definition (navigation, sidebars, social links, search and
footer), validates it, resolves ${npm:<package>} placeholders to the latest
published versions on the npm registry and writes the configuration consumed
by the static-site generator.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// Local flags (site, out, format, port) are merged into cmd.Flags().
			cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cmd.ErrOrStderr(), cfg)
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", "path", configFile)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} {{.Version}}\nbuilt %s from %s\n", BuildDate, GitCommit))

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./nordsite.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("registry-url", "", "npm registry base URL")
	rootCmd.PersistentFlags().String("scope", "", "npm scope of unqualified package names")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Timeout per registry request")
	rootCmd.PersistentFlags().Float64("rate", 0, "Maximum registry requests per second (0 = unlimited)")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	commands.SetVersion(Version)

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewBuildCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionsCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for nordsite.

To load completions:

Bash:
  $ source <(nordsite completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ nordsite completion bash > /etc/bash_completion.d/nordsite
  # macOS:
  $ nordsite completion bash > $(brew --prefix)/etc/bash_completion.d/nordsite

Zsh:
  $ nordsite completion zsh > "${fpath[1]}/_nordsite"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ nordsite completion fish > ~/.config/fish/completions/nordsite.fish

PowerShell:
  PS> nordsite completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}

