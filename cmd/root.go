package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"edharness/internal/app"
	"edharness/pkg/logging"
)

var (
	// configPath names an explicit configuration file layered over the
	// user and project configuration.
	configPath string
	// logLevel overrides logging.level from the configuration.
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "edharness",
	Short: "Run editor end-to-end test suites",
	Long: `edharness launches the editor against a level and a test script, watches
its output for expected and forbidden lines and compares captured screenshots
with golden images.

Suites are YAML files; the Atom component suites are built in and run when no
suites path is configured.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. failed tests, missing levels)
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logging.InitForCLI(level, cmd.ErrOrStderr())
		return nil
	},
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "edharness version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

// newApplication bootstraps the application with the persistent flags and the
// command specific settings in cfg.
func newApplication(cmd *cobra.Command, cfg *app.Config) (*app.Application, error) {
	cfg.ConfigPath = configPath
	if cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}
	if cfg.Out == nil {
		cfg.Out = cmd.OutOrStdout()
	}
	return app.NewApplication(cfg)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file layered over ~/.config/edharness and ./.edharness")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newCleanCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
