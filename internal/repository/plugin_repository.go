package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Erkezh/studypoint-edu/internal/evaluator"
	"github.com/Erkezh/studypoint-edu/internal/model"
	"gorm.io/gorm"
)

type PluginRepository struct {
	DB *gorm.DB
}

func NewPluginRepository(db *gorm.DB) *PluginRepository {
	return &PluginRepository{DB: db}
}

var _ evaluator.PluginLookup = (*PluginRepository)(nil)

func (r *PluginRepository) FindPlugin(ctx context.Context, pluginID string) (*model.Plugin, error) {
	var p model.Plugin
	err := r.DB.WithContext(ctx).Where("plugin_id = ?", pluginID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", evaluator.ErrPluginNotFound, pluginID)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PluginRepository) Create(ctx context.Context, p *model.Plugin) error {
	return translate(r.DB.WithContext(ctx).Create(p).Error, "plugin %s", p.PluginID)
}
