package cmd

import (
	"github.com/Erkezh/studypoint-edu/pkg/database"
	"github.com/Erkezh/studypoint-edu/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "只执行数据库迁移，完成后退出",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		logger.Log.Info("数据库迁移完成", zap.Int("tables", len(database.Models)))
		return nil
	},
}

func openDB(cmd *cobra.Command) (*gorm.DB, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == database.DriverMemory {
		return nil, errMemoryDriver
	}
	return database.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
}
