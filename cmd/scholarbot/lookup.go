package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/memohai/scholarbot/internal/cache"
	"github.com/memohai/scholarbot/internal/db"
	dbsqlc "github.com/memohai/scholarbot/internal/db/sqlc"
	"github.com/memohai/scholarbot/internal/eligibility"
	"github.com/memohai/scholarbot/internal/logger"
)

func newLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Manage the cached eligibility list",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Reload the eligibility list from Postgres into the cache",
		Long:  "Run after the lookup table was changed so the bot sees new names without waiting for the cache to expire.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logger.Init(cfg.Log.Level, cfg.Log.Format)
			ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
			defer cancel()

			pool, err := db.Open(ctx, cfg.Postgres)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer pool.Close()
			client, err := cache.Open(ctx, cfg.Redis)
			if err != nil {
				return fmt.Errorf("redis connect: %w", err)
			}
			defer client.Close()

			index := eligibility.NewIndex(log, dbsqlc.New(pool), eligibility.NewRedisCache(client), cfg.Cache.EligibilityTTL.Duration)
			return refreshLookup(ctx, index, cmd.OutOrStdout())
		},
	})
	return cmd
}

type lookupRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

func refreshLookup(ctx context.Context, index lookupRefresher, out io.Writer) error {
	n, err := index.Refresh(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "eligibility list reloaded: %d names\n", n)
	return err
}
