package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"classsync/internal/model"
	"classsync/internal/repository"
	"classsync/pkg/logger"
)

// MaintenanceService 初始数据与重置
//
// 示例数据只写入默认租户（配置中的第一个学年×班级），
// 否则相同的示例卡号会出现在多个租户中。
type MaintenanceService interface {
	// SeedDefaults 默认租户名册为空时写入示例数据；返回是否写入
	SeedDefaults(ctx context.Context) (bool, error)
	// Reset 清空单个租户；默认租户清空后重新写入示例数据
	Reset(ctx context.Context, t model.Tenant) error
	// ResetAll 清空全部租户与全局设置，恢复出厂状态
	ResetAll(ctx context.Context) error
}

type maintenanceService struct {
	repo    *repository.Repository
	auth    AuthService
	locks   *tenantLocks
	tenants []model.Tenant
	clock   Clock
	logger  *zap.Logger
}

// NewMaintenanceService 创建 MaintenanceService 实例
func NewMaintenanceService(
	repo *repository.Repository,
	auth AuthService,
	locks *tenantLocks,
	tenants []model.Tenant,
	clock Clock,
	logger *zap.Logger,
) MaintenanceService {
	return &maintenanceService{
		repo:    repo,
		auth:    auth,
		locks:   locks,
		tenants: tenants,
		clock:   clock,
		logger:  logger,
	}
}

func (s *maintenanceService) defaultTenant() (model.Tenant, bool) {
	if len(s.tenants) == 0 {
		return model.Tenant{}, false
	}
	return s.tenants[0], true
}

// ────────────────────── SeedDefaults ──────────────────────

func (s *maintenanceService) SeedDefaults(ctx context.Context) (bool, error) {
	t, ok := s.defaultTenant()
	if !ok {
		return false, nil
	}

	unlock := s.locks.lock(t)
	defer unlock()

	return s.seed(ctx, t)
}

func (s *maintenanceService) seed(ctx context.Context, t model.Tenant) (bool, error) {
	students, err := s.repo.Student.List(ctx, t)
	if err != nil {
		s.logger.Error("读取名册失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return false, err
	}
	if len(students) > 0 {
		return false, nil
	}

	now := s.clock().UTC().Truncate(time.Millisecond)
	if err := s.repo.Student.Save(ctx, t, defaultStudents(t, now)); err != nil {
		s.logger.Error("写入示例名册失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return false, err
	}
	if err := s.repo.Homework.Save(ctx, t, defaultHomework(now)); err != nil {
		s.logger.Error("写入示例宿题失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return false, err
	}

	s.logger.Info("已写入示例数据", logger.Tenant(t.Grade, t.ClassID))
	return true, nil
}

// ────────────────────── Reset ──────────────────────

func (s *maintenanceService) Reset(ctx context.Context, t model.Tenant) error {
	unlock := s.locks.lock(t)
	defer unlock()

	if err := s.clear(ctx, t); err != nil {
		return err
	}
	if def, ok := s.defaultTenant(); ok && def == t {
		if _, err := s.seed(ctx, t); err != nil {
			return err
		}
	}
	s.logger.Warn("租户数据已重置", logger.Tenant(t.Grade, t.ClassID))
	return nil
}

func (s *maintenanceService) ResetAll(ctx context.Context) error {
	for _, t := range s.tenants {
		unlock := s.locks.lock(t)
		err := s.clear(ctx, t)
		unlock()
		if err != nil {
			return err
		}
	}
	if err := s.repo.Settings.Clear(ctx); err != nil {
		s.logger.Error("清除设置失败", zap.Error(err))
		return err
	}

	if _, err := s.SeedDefaults(ctx); err != nil {
		return err
	}
	if err := s.auth.EnsureDefaultPassword(ctx); err != nil {
		return err
	}
	s.logger.Warn("全部数据已重置", zap.Int("tenants", len(s.tenants)))
	return nil
}

func (s *maintenanceService) clear(ctx context.Context, t model.Tenant) error {
	if err := s.repo.Submission.Clear(ctx, t); err != nil {
		s.logger.Error("清除提交记录失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return err
	}
	if err := s.repo.Homework.Clear(ctx, t); err != nil {
		s.logger.Error("清除宿题失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return err
	}
	if err := s.repo.Student.Clear(ctx, t); err != nil {
		s.logger.Error("清除名册失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return err
	}
	return nil
}

// ── 示例数据 ──

func defaultStudents(t model.Tenant, now time.Time) []model.Student {
	names := []string{"山田 太郎", "佐藤 花子", "鈴木 一郎", "田中 美咲", "伊藤 健太"}
	out := make([]model.Student, 0, len(names))
	for i, name := range names {
		out = append(out, model.Student{
			ID:        int64(i + 1),
			Number:    i + 1,
			Name:      name,
			CardID:    fmt.Sprintf("NFC%03d", i+1),
			Grade:     t.Grade,
			ClassID:   t.ClassID,
			CreatedAt: now,
		})
	}
	return out
}

func defaultHomework(now time.Time) []model.Homework {
	return []model.Homework{
		{ID: 1, Title: "算数プリント", Recurrence: model.Recurrence{model.Everyday}, Description: "教科書p.20-21の問題を解く", CreatedAt: now},
		{ID: 2, Title: "漢字練習", Recurrence: model.Recurrence{"1", "3", "5"}, Description: "新出漢字を練習する", CreatedAt: now},
		{ID: 3, Title: "音読", Recurrence: model.Recurrence{model.Everyday}, Description: "国語の教科書を音読する", CreatedAt: now},
	}
}
