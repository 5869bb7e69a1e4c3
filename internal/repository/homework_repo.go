package repository

import (
	"context"
	"encoding/json"
	"time"

	"classsync/internal/model"
	"classsync/pkg/kvstore"
)

// HomeworkRepository 宿题数据访问接口
type HomeworkRepository interface {
	List(ctx context.Context, t model.Tenant) ([]model.Homework, error)
	Save(ctx context.Context, t model.Tenant, homework []model.Homework) error
	Clear(ctx context.Context, t model.Tenant) error
}

type homeworkRepo struct {
	store kvstore.Store
}

// NewHomeworkRepo 创建 HomeworkRepository 实例
func NewHomeworkRepo(store kvstore.Store) HomeworkRepository {
	return &homeworkRepo{store: store}
}

// storedHomework 读取时的宽松结构
// 旧数据的重复规则可能存放在 dayOfWeek 字段，且可能是单个值而非数组
type storedHomework struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Recurrence  json.RawMessage `json:"recurrence"`
	DayOfWeek   json.RawMessage `json:"dayOfWeek,omitempty"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (r *homeworkRepo) List(ctx context.Context, t model.Tenant) ([]model.Homework, error) {
	stored, err := loadCollection[storedHomework](ctx, r.store, t.Key(model.CollectionHomework))
	if err != nil {
		return nil, err
	}

	homework := make([]model.Homework, 0, len(stored))
	for _, h := range stored {
		raw := h.Recurrence
		if len(raw) == 0 || string(raw) == "null" {
			raw = h.DayOfWeek
		}
		homework = append(homework, model.Homework{
			ID:          h.ID,
			Title:       h.Title,
			Recurrence:  model.DecodeRecurrence(raw),
			Description: h.Description,
			CreatedAt:   h.CreatedAt,
		})
	}
	return homework, nil
}

func (r *homeworkRepo) Save(ctx context.Context, t model.Tenant, homework []model.Homework) error {
	return saveCollection(ctx, r.store, t.Key(model.CollectionHomework), homework)
}

func (r *homeworkRepo) Clear(ctx context.Context, t model.Tenant) error {
	return r.store.Delete(ctx, t.Key(model.CollectionHomework))
}
