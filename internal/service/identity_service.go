package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"classsync/internal/model"
	"classsync/internal/repository"
	apperrors "classsync/pkg/errors"
	"classsync/pkg/metrics"
)

// ── 卡号识别业务错误 ──

var (
	ErrCardNotFound = fmt.Errorf("登録されていないカードです: %w", apperrors.ErrNotFound)
	ErrBlankCard    = errors.New("カードIDが空です")
)

// Identity 卡号识别结果
type Identity struct {
	Student model.Student
	Tenant  model.Tenant
}

// IdentityService 卡号 → 学生
//
// 按配置顺序（学年→班级）遍历全部租户，大小写敏感的精确匹配，首个命中即返回。
// 跨租户重复卡号属于录入错误，只记录告警，不影响结果。
type IdentityService interface {
	Resolve(ctx context.Context, cardID string) (*Identity, error)
}

type identityService struct {
	repo    *repository.Repository
	tenants []model.Tenant
	logger  *zap.Logger
}

// NewIdentityService 创建 IdentityService 实例
func NewIdentityService(repo *repository.Repository, tenants []model.Tenant, logger *zap.Logger) IdentityService {
	return &identityService{repo: repo, tenants: tenants, logger: logger}
}

func (s *identityService) Resolve(ctx context.Context, cardID string) (*Identity, error) {
	if cardID == "" {
		metrics.CardLookups.WithLabelValues("invalid").Inc()
		return nil, apperrors.NewValidationError(ErrBlankCard, apperrors.FieldError{Field: "cardId", Error: "required"})
	}

	var found *Identity
	for _, t := range s.tenants {
		students, err := s.repo.Student.List(ctx, t)
		if err != nil {
			s.logger.Error("卡号查找时读取名册失败", zap.String("tenant", t.String()), zap.Error(err))
			return nil, err
		}
		for _, st := range students {
			if st.CardID != cardID {
				continue
			}
			if found == nil {
				found = &Identity{Student: st, Tenant: t}
				continue
			}
			s.logger.Warn("卡号在多个租户中重复",
				zap.String("card_id", cardID),
				zap.String("used", found.Tenant.String()),
				zap.String("ignored", t.String()),
			)
		}
	}

	if found == nil {
		metrics.CardLookups.WithLabelValues("not_found").Inc()
		return nil, ErrCardNotFound
	}
	metrics.CardLookups.WithLabelValues("found").Inc()
	return found, nil
}
