package repository

import (
	"context"

	"classsync/internal/model"
	"classsync/pkg/kvstore"
)

// SubmissionRepository 提交记录数据访问接口
type SubmissionRepository interface {
	List(ctx context.Context, t model.Tenant) ([]model.SubmissionRecord, error)
	Save(ctx context.Context, t model.Tenant, records []model.SubmissionRecord) error
	Clear(ctx context.Context, t model.Tenant) error
}

type submissionRepo struct {
	store kvstore.Store
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(store kvstore.Store) SubmissionRepository {
	return &submissionRepo{store: store}
}

// storedSubmission 兼容旧字段 nfcId
type storedSubmission struct {
	model.SubmissionRecord
	NfcID string `json:"nfcId,omitempty"`
}

func (r *submissionRepo) List(ctx context.Context, t model.Tenant) ([]model.SubmissionRecord, error) {
	stored, err := loadCollection[storedSubmission](ctx, r.store, t.Key(model.CollectionSubmissions))
	if err != nil {
		return nil, err
	}

	records := make([]model.SubmissionRecord, 0, len(stored))
	for _, s := range stored {
		rec := s.SubmissionRecord
		if rec.CardID == "" {
			rec.CardID = s.NfcID
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *submissionRepo) Save(ctx context.Context, t model.Tenant, records []model.SubmissionRecord) error {
	return saveCollection(ctx, r.store, t.Key(model.CollectionSubmissions), records)
}

func (r *submissionRepo) Clear(ctx context.Context, t model.Tenant) error {
	return r.store.Delete(ctx, t.Key(model.CollectionSubmissions))
}
