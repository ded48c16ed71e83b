package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/memohai/scholarbot/internal/config"
	"github.com/memohai/scholarbot/internal/logger"
	"github.com/memohai/scholarbot/internal/telegram"
)

func newWebhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Inspect or register the Telegram webhook",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show the current webhook registration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _, err := webhookClient(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			info, err := client.WebhookInfo(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "bot: @%s\nurl: %s\npending: %d\n", client.Username(), info.URL, info.PendingUpdateCount)
			if info.LastErrorMessage != "" {
				_, _ = fmt.Fprintf(out, "last error: %s (%s)\n", info.LastErrorMessage, info.LastErrorDate.Format(time.RFC3339))
			}
			return nil
		},
	})
	var drop bool
	set := &cobra.Command{
		Use:   "set",
		Short: "Register the configured webhook url",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, cfg, err := webhookClient(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if drop {
				if err := client.DeleteWebhook(ctx, true); err != nil {
					return err
				}
			}
			if err := client.SetWebhook(ctx, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "webhook set to %s\n", cfg.Telegram.WebhookURL)
			return err
		},
	}
	set.Flags().BoolVar(&drop, "drop-pending", false, "Delete the webhook and drop pending updates first.")
	cmd.AddCommand(set)
	return cmd
}

func webhookClient(cmd *cobra.Command) (*telegram.Client, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, err
	}
	if cfg.Telegram.Token == "" {
		return nil, cfg, errors.New("TELEGRAM_TOKEN is required")
	}
	if cmd.Name() == "set" && cfg.Telegram.WebhookURL == "" {
		return nil, cfg, errors.New("WEBHOOK_URL is required")
	}
	log := logger.Init(cfg.Log.Level, cfg.Log.Format)
	client, err := telegram.NewClient(log, telegram.Options{Token: cfg.Telegram.Token})
	if err != nil {
		return nil, cfg, err
	}
	return client, cfg, nil
}
