package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"classsync/internal/dto"
	"classsync/internal/model"
	"classsync/internal/repository"
	apperrors "classsync/pkg/errors"
	"classsync/pkg/logger"
)

// ── 宿题模块业务错误 ──

var (
	ErrHomeworkNotFound = fmt.Errorf("宿題: %w", apperrors.ErrNotFound)
	ErrInvalidHomework  = errors.New("宿題の内容に誤りがあります")
	ErrBlankTitle       = errors.New("宿題名を入力してください")
	ErrEmptyRecurrence  = errors.New("曜日を選択してください")
	ErrInvalidDayToken  = errors.New("曜日の指定が不正です")
)

// HomeworkService 宿题业务接口
// 删除宿题时级联删除其全部提交记录
type HomeworkService interface {
	List(ctx context.Context, t model.Tenant) ([]model.Homework, error)
	Get(ctx context.Context, t model.Tenant, id int64) (*model.Homework, error)
	Create(ctx context.Context, t model.Tenant, req *dto.HomeworkRequest) (*model.Homework, error)
	Update(ctx context.Context, t model.Tenant, id int64, req *dto.HomeworkRequest) (*model.Homework, error)
	Delete(ctx context.Context, t model.Tenant, id int64) error
	// DueToday 当天到期的宿题（学校时区）
	DueToday(ctx context.Context, t model.Tenant) ([]model.Homework, error)
}

type homeworkService struct {
	repo   *repository.Repository
	locks  *tenantLocks
	clock  Clock
	logger *zap.Logger
}

// NewHomeworkService 创建 HomeworkService 实例
func NewHomeworkService(repo *repository.Repository, locks *tenantLocks, clock Clock, logger *zap.Logger) HomeworkService {
	return &homeworkService{repo: repo, locks: locks, clock: clock, logger: logger}
}

// ────────────────────── List / Get ──────────────────────

func (s *homeworkService) List(ctx context.Context, t model.Tenant) ([]model.Homework, error) {
	list, err := s.repo.Homework.List(ctx, t)
	if err != nil {
		s.logger.Error("查询宿题失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *homeworkService) Get(ctx context.Context, t model.Tenant, id int64) (*model.Homework, error) {
	list, err := s.List(ctx, t)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, ErrHomeworkNotFound
}

func (s *homeworkService) DueToday(ctx context.Context, t model.Tenant) ([]model.Homework, error) {
	list, err := s.List(ctx, t)
	if err != nil {
		return nil, err
	}
	return DueOn(list, s.clock()), nil
}

// ────────────────────── Create ──────────────────────

func (s *homeworkService) Create(ctx context.Context, t model.Tenant, req *dto.HomeworkRequest) (*model.Homework, error) {
	if err := checkHomeworkRequest(req); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(t)
	defer unlock()

	list, err := s.repo.Homework.List(ctx, t)
	if err != nil {
		s.logger.Error("查询宿题失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return nil, err
	}

	var maxID int64
	for _, hw := range list {
		if hw.ID > maxID {
			maxID = hw.ID
		}
	}

	now := s.clock()
	hw := model.Homework{
		ID:          nextID(now, maxID),
		Title:       req.Title,
		Recurrence:  sanitizeRecurrence(req.Recurrence),
		Description: req.Description,
		CreatedAt:   now.UTC().Truncate(time.Millisecond),
	}
	list = append(list, hw)

	if err := s.repo.Homework.Save(ctx, t, list); err != nil {
		s.logger.Error("保存宿题失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("新增宿题", logger.Tenant(t.Grade, t.ClassID), zap.Int64("homework_id", hw.ID), zap.String("title", hw.Title))
	return &hw, nil
}

// ────────────────────── Update ──────────────────────

func (s *homeworkService) Update(ctx context.Context, t model.Tenant, id int64, req *dto.HomeworkRequest) (*model.Homework, error) {
	if err := checkHomeworkRequest(req); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(t)
	defer unlock()

	list, err := s.repo.Homework.List(ctx, t)
	if err != nil {
		s.logger.Error("查询宿题失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return nil, err
	}

	for i := range list {
		if list[i].ID != id {
			continue
		}
		list[i].Title = req.Title
		list[i].Recurrence = sanitizeRecurrence(req.Recurrence)
		list[i].Description = req.Description

		if err := s.repo.Homework.Save(ctx, t, list); err != nil {
			s.logger.Error("保存宿题失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
			return nil, err
		}
		hw := list[i]
		return &hw, nil
	}
	return nil, ErrHomeworkNotFound
}

// ────────────────────── Delete ──────────────────────
//
// 先删提交记录，再删宿题本身

func (s *homeworkService) Delete(ctx context.Context, t model.Tenant, id int64) error {
	unlock := s.locks.lock(t)
	defer unlock()

	list, err := s.repo.Homework.List(ctx, t)
	if err != nil {
		s.logger.Error("查询宿题失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return err
	}

	kept := make([]model.Homework, 0, len(list))
	for _, hw := range list {
		if hw.ID != id {
			kept = append(kept, hw)
		}
	}
	if len(kept) == len(list) {
		return ErrHomeworkNotFound
	}

	records, err := s.repo.Submission.List(ctx, t)
	if err != nil {
		s.logger.Error("查询提交记录失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return err
	}
	keptRecords := make([]model.SubmissionRecord, 0, len(records))
	for _, r := range records {
		if r.HomeworkID != id {
			keptRecords = append(keptRecords, r)
		}
	}
	removed := len(records) - len(keptRecords)
	if removed > 0 {
		if err := s.repo.Submission.Save(ctx, t, keptRecords); err != nil {
			s.logger.Error("删除宿题提交记录失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
			return err
		}
	}

	if err := s.repo.Homework.Save(ctx, t, kept); err != nil {
		s.logger.Error("保存宿题失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return err
	}

	s.logger.Info("删除宿题",
		logger.Tenant(t.Grade, t.ClassID),
		zap.Int64("homework_id", id),
		zap.Int("removed_records", removed),
	)
	return nil
}

// ── 校验 ──

func checkHomeworkRequest(req *dto.HomeworkRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)

	if req.Title == "" {
		return apperrors.NewValidationError(ErrBlankTitle, apperrors.FieldError{Field: "title", Error: "required"})
	}
	if len(req.Recurrence) == 0 {
		return apperrors.NewValidationError(ErrEmptyRecurrence, apperrors.FieldError{Field: "recurrence", Error: "required"})
	}
	for _, d := range req.Recurrence {
		if !d.Valid() {
			return apperrors.NewValidationError(ErrInvalidDayToken, apperrors.FieldError{Field: "recurrence", Error: "daytoken"})
		}
	}
	return validateStruct(req, ErrInvalidHomework)
}
