// Package bootstrap 组装存储与外部连接，供 server 与 kiosk 两个入口共用
package bootstrap

import (
	"fmt"

	"go.uber.org/zap"

	"classsync/config"
	"classsync/pkg/database"
	"classsync/pkg/kvstore"
	"classsync/pkg/redis"
)

// Infra 已打开的基础设施
type Infra struct {
	Store kvstore.Store
	// Redis 未启用或连接失败时为 nil（黑名单与限流降级为不启用）
	Redis *redis.Client

	closers []func() error
	logger  *zap.Logger
}

// Open 按 store.driver 打开集合存储，并按需连接 Redis
func Open(cfg *config.Config, logger *zap.Logger) (*Infra, error) {
	in := &Infra{logger: logger}

	// Redis 可选：连接失败时降级运行，除非它本身就是存储后端
	if cfg.Redis.Enabled || cfg.Store.Driver == config.StoreDriverRedis {
		rdb, err := redis.NewClient(&cfg.Redis, cfg.Store.KeyPrefix, logger)
		if err != nil {
			if cfg.Store.Driver == config.StoreDriverRedis {
				return nil, err
			}
			logger.Warn("Redis 连接失败，Token 黑名单与登录限流将不可用", zap.Error(err))
		} else {
			in.Redis = rdb
			in.closers = append(in.closers, rdb.Close)
		}
	}

	store, err := in.openStore(cfg)
	if err != nil {
		in.Close()
		return nil, err
	}
	in.Store = store

	logger.Info("存储已就绪", zap.String("driver", cfg.Store.Driver))
	return in, nil
}

func (in *Infra) openStore(cfg *config.Config) (kvstore.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		return kvstore.NewMemoryStore(), nil

	case config.StoreDriverBolt:
		s, err := kvstore.OpenBolt(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, s.Close)
		return s, nil

	case config.StoreDriverSQLite:
		s, err := kvstore.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, s.Close)
		return s, nil

	case config.StoreDriverRedis:
		return in.Redis, nil

	case config.StoreDriverPostgres:
		db, err := database.NewDB(&cfg.Database, cfg.Log.Level, in.logger)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
		}
		in.closers = append(in.closers, sqlDB.Close)
		if err := database.RunMigrations(sqlDB, in.logger); err != nil {
			return nil, err
		}
		return database.NewKVStore(db), nil
	}
	return nil, fmt.Errorf("不支持的存储后端 %q", cfg.Store.Driver)
}

// Close 按打开的逆序关闭
func (in *Infra) Close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		if err := in.closers[i](); err != nil {
			in.logger.Warn("关闭资源失败", zap.Error(err))
		}
	}
	in.closers = nil
}
