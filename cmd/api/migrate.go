package main

import (
	"dealforge-calc/internal/adapter/repository/mysql"
	"dealforge-calc/internal/infrastructure/db"
	"dealforge-calc/internal/infrastructure/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the analyses table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), logging.ParseLevel(cfg.LogLevel))
		if err != nil {
			return err
		}
		if sqlDB, err := gdb.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := mysql.Migrate(gdb); err != nil {
			return err
		}
		log.Info("migrated", zap.String("db_driver", cfg.DBDriver))
		return nil
	},
}
