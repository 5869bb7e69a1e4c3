package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"classsync/internal/dto"
	"classsync/internal/model"
	"classsync/internal/repository"
	apperrors "classsync/pkg/errors"
)

// ErrNothingSelected 未选择任何宿题
var ErrNothingSelected = errors.New("提出する宿題を選んでください")

// KioskService 学生刷卡流程：识别 → 列出当天宿题 → 提交
type KioskService interface {
	Lookup(ctx context.Context, cardID string) (*dto.KioskLookupResponse, error)
	Submit(ctx context.Context, cardID string, req *dto.KioskSubmitRequest) (*dto.KioskSubmitResponse, error)
}

type kioskService struct {
	repo      *repository.Repository
	identity  IdentityService
	ledger    LedgerService
	clock     Clock
	dayScoped bool
	logger    *zap.Logger
}

// NewKioskService 创建 KioskService 实例
func NewKioskService(
	repo *repository.Repository,
	identity IdentityService,
	ledger LedgerService,
	clock Clock,
	dayScoped bool,
	logger *zap.Logger,
) KioskService {
	return &kioskService{
		repo:      repo,
		identity:  identity,
		ledger:    ledger,
		clock:     clock,
		dayScoped: dayScoped,
		logger:    logger,
	}
}

// ────────────────────── Lookup ──────────────────────

func (s *kioskService) Lookup(ctx context.Context, cardID string) (*dto.KioskLookupResponse, error) {
	id, err := s.identity.Resolve(ctx, cardID)
	if err != nil {
		return nil, err
	}
	items, err := s.dueItems(ctx, id, s.clock())
	if err != nil {
		return nil, err
	}
	return &dto.KioskLookupResponse{
		Student:   id.Student,
		Tenant:    dto.NewTenantResponse(id.Tenant),
		Items:     items,
		Remaining: countRemaining(items),
	}, nil
}

// ────────────────────── Submit ──────────────────────
//
// All=true 时提交全部未提交项；否则只提交所选且当天到期、尚未提交的宿题。
// 一次提交只写一次存储。

func (s *kioskService) Submit(ctx context.Context, cardID string, req *dto.KioskSubmitRequest) (*dto.KioskSubmitResponse, error) {
	if !req.All && len(req.HomeworkIDs) == 0 {
		return nil, apperrors.NewValidationError(ErrNothingSelected, apperrors.FieldError{Field: "homeworkIds", Error: "required"})
	}

	id, err := s.identity.Resolve(ctx, cardID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	items, err := s.dueItems(ctx, id, now)
	if err != nil {
		return nil, err
	}

	selected := make(map[int64]bool, len(req.HomeworkIDs))
	for _, hwID := range req.HomeworkIDs {
		selected[hwID] = true
	}

	ids := make([]int64, 0, len(items))
	titles := make([]string, 0, len(items))
	for i := range items {
		if items[i].Submitted || (!req.All && !selected[items[i].HomeworkID]) {
			continue
		}
		ids = append(ids, items[i].HomeworkID)
		titles = append(titles, items[i].Title)
		items[i].Submitted = true
	}

	if err := s.ledger.BulkRecordTouch(ctx, id.Tenant, ids, id.Student.ID, now); err != nil {
		return nil, err
	}

	return &dto.KioskSubmitResponse{Submitted: titles, Remaining: countRemaining(items)}, nil
}

// dueItems 当天到期宿题及提交状态
func (s *kioskService) dueItems(ctx context.Context, id *Identity, now time.Time) ([]dto.KioskHomeworkItem, error) {
	homework, err := s.repo.Homework.List(ctx, id.Tenant)
	if err != nil {
		s.logger.Error("读取宿题失败", zap.String("tenant", id.Tenant.String()), zap.Error(err))
		return nil, err
	}
	records, err := s.repo.Submission.List(ctx, id.Tenant)
	if err != nil {
		s.logger.Error("读取提交记录失败", zap.String("tenant", id.Tenant.String()), zap.Error(err))
		return nil, err
	}

	today := model.FormatDate(now)
	done := make(map[int64]bool)
	for i := range records {
		r := &records[i]
		if r.StudentID != id.Student.ID {
			continue
		}
		if s.dayScoped && !r.TouchedOn(today) {
			continue
		}
		if r.TouchRecorded {
			done[r.HomeworkID] = true
		}
	}

	due := DueOn(homework, now)
	items := make([]dto.KioskHomeworkItem, 0, len(due))
	for _, hw := range due {
		items = append(items, dto.KioskHomeworkItem{
			HomeworkID: hw.ID,
			Title:      hw.Title,
			Days:       FormatDays(hw.Recurrence),
			Submitted:  done[hw.ID],
		})
	}
	return items, nil
}

func countRemaining(items []dto.KioskHomeworkItem) int {
	n := 0
	for _, it := range items {
		if !it.Submitted {
			n++
		}
	}
	return n
}
