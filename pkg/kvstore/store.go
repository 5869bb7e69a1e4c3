// Package kvstore 提供按键存取 JSON 文档的存储能力。
//
// 上层按 "{collection}_{grade}_{classId}" 拼出键，整集合读写，不依赖事务或枚举。
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound 键不存在
var ErrNotFound = errors.New("kvstore: key not found")

// Store 键值存储接口
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// GetJSON 读取并解码 key 对应的文档；键不存在时返回 ErrNotFound
func GetJSON[T any](ctx context.Context, s Store, key string) (*T, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("kvstore: decode %s: %w", key, err)
	}
	return &out, nil
}

// SetJSON 编码 value 并整体覆盖写入 key
func SetJSON[T any](ctx context.Context, s Store, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kvstore: encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
