package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"classsync/pkg/kvstore"
)

// loadCollection 读取整个集合；键不存在视为空集合
func loadCollection[T any](ctx context.Context, store kvstore.Store, key string) ([]T, error) {
	data, err := store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", key, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("解析 %s 失败: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// saveCollection 整体覆盖写入集合
func saveCollection[T any](ctx context.Context, store kvstore.Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	if err := kvstore.SetJSON(ctx, store, key, items); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", key, err)
	}
	return nil
}
