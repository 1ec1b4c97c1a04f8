package cmd

import (
	"errors"

	"github.com/Erkezh/studypoint-edu/internal/app"
	"github.com/Erkezh/studypoint-edu/pkg/database"
	"github.com/Erkezh/studypoint-edu/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errMemoryDriver = errors.New("database driver is memory, nothing to persist (serve seeds the in-memory store itself)")

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "写入演示技能、题目和生成器技能",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd)
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		skills, err := app.SeedDemo(cmd.Context(), app.NewGormContent(db))
		if err != nil {
			return err
		}
		for _, sk := range skills {
			logger.Log.Info("Created skill", zap.Uint("id", sk.ID), zap.String("code", sk.Code))
		}
		if len(skills) == 0 {
			logger.Log.Info("Demo content already present")
		}
		return nil
	},
}
