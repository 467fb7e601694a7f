package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/BradenHooton/teamup-users/internal/config"
	pkglogger "github.com/BradenHooton/teamup-users/pkg/logger"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "teamup-users",
	Short: "TeamUp user profile service",
	Long: `TeamUp user profile service stores user profiles, authenticates users by
password or Google single sign-on, and publishes user change notifications.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if driver, _ := cmd.Flags().GetString("store"); driver != "" {
			os.Setenv("STORE_DRIVER", driver)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		level := cfg.Server.LogLevel
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			level = "debug"
		}
		logger = pkglogger.New(level)
		slog.SetDefault(logger)
		return nil
	},
	// Running the binary with no subcommand starts the server
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: LOG_LEVEL)")
	rootCmd.PersistentFlags().String("store", "", "Store backend, postgres or mongo (env: STORE_DRIVER)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
