package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memohai/scholarbot/internal/config"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "scholarbot",
		Short:         "Telegram bot for the scholarship application workflow",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().String("config", "", "Config file path (default $CONFIG_PATH or config.toml).")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newWebhookCmd())
	cmd.AddCommand(newLookupCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// configPath resolves --config, then CONFIG_PATH.
func configPath(cmd *cobra.Command) string {
	if f := cmd.Flag("config"); f != nil && strings.TrimSpace(f.Value.String()) != "" {
		return f.Value.String()
	}
	return os.Getenv("CONFIG_PATH")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
