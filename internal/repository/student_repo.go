package repository

import (
	"context"
	"time"

	"classsync/internal/model"
	"classsync/pkg/kvstore"
)

// StudentRepository 名册数据访问接口
type StudentRepository interface {
	List(ctx context.Context, t model.Tenant) ([]model.Student, error)
	Save(ctx context.Context, t model.Tenant, students []model.Student) error
	Clear(ctx context.Context, t model.Tenant) error
}

type studentRepo struct {
	store kvstore.Store
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(store kvstore.Store) StudentRepository {
	return &studentRepo{store: store}
}

// storedStudent 兼容旧字段 nfcId，且旧数据不含学年/班级
type storedStudent struct {
	ID        int64     `json:"id"`
	Number    int       `json:"number"`
	Name      string    `json:"name"`
	CardID    string    `json:"cardId"`
	NfcID     string    `json:"nfcId,omitempty"`
	Grade     string    `json:"grade"`
	ClassID   string    `json:"classId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *studentRepo) List(ctx context.Context, t model.Tenant) ([]model.Student, error) {
	stored, err := loadCollection[storedStudent](ctx, r.store, t.Key(model.CollectionStudents))
	if err != nil {
		return nil, err
	}

	students := make([]model.Student, 0, len(stored))
	for _, s := range stored {
		cardID := s.CardID
		if cardID == "" {
			cardID = s.NfcID
		}
		students = append(students, model.Student{
			ID:        s.ID,
			Number:    s.Number,
			Name:      s.Name,
			CardID:    cardID,
			Grade:     t.Grade,
			ClassID:   t.ClassID,
			CreatedAt: s.CreatedAt,
		})
	}
	return students, nil
}

func (r *studentRepo) Save(ctx context.Context, t model.Tenant, students []model.Student) error {
	return saveCollection(ctx, r.store, t.Key(model.CollectionStudents), students)
}

func (r *studentRepo) Clear(ctx context.Context, t model.Tenant) error {
	return r.store.Delete(ctx, t.Key(model.CollectionStudents))
}
