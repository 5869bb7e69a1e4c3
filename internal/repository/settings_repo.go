package repository

import (
	"context"

	"classsync/internal/model"
	"classsync/pkg/kvstore"
)

// SettingsRepository 全局设置数据访问接口
// Get 在未初始化时返回 kvstore.ErrNotFound
type SettingsRepository interface {
	Get(ctx context.Context) (*model.AppSettings, error)
	Save(ctx context.Context, settings *model.AppSettings) error
	Clear(ctx context.Context) error
}

type settingsRepo struct {
	store kvstore.Store
}

// NewSettingsRepo 创建 SettingsRepository 实例
func NewSettingsRepo(store kvstore.Store) SettingsRepository {
	return &settingsRepo{store: store}
}

func (r *settingsRepo) Get(ctx context.Context) (*model.AppSettings, error) {
	return kvstore.GetJSON[model.AppSettings](ctx, r.store, model.SettingsKey)
}

func (r *settingsRepo) Save(ctx context.Context, settings *model.AppSettings) error {
	return kvstore.SetJSON(ctx, r.store, model.SettingsKey, settings)
}

func (r *settingsRepo) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, model.SettingsKey)
}
