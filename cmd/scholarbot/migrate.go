package main

import (
	"github.com/spf13/cobra"

	dbembed "github.com/memohai/scholarbot/db"
	"github.com/memohai/scholarbot/internal/db"
	"github.com/memohai/scholarbot/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate {up|down|version|force N}",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"up", "down", "version", "force"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logger.Init(cfg.Log.Level, cfg.Log.Format)
			return db.RunMigrate(log, cfg.Postgres, dbembed.MigrationsFS, args[0], args[1:])
		},
	}
}
