package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"classsync/internal/model"
	"classsync/internal/repository"
	"classsync/pkg/logger"
	"classsync/pkg/metrics"
)

// LedgerService 提交台账业务接口
//
// 状态机（每个 宿题×学生[×日期]）：
//   - 学生“提交”(touch) 与 教师“确认”(check) 相互独立
//   - 未知的宿题或学生 ID 不报错，直接忽略（界面可能持有已删除的引用）
//   - 每次变更都是整集合读-改-写，并在租户锁内完成
type LedgerService interface {
	List(ctx context.Context, t model.Tenant) ([]model.SubmissionRecord, error)
	RecordTouch(ctx context.Context, t model.Tenant, homeworkID, studentID int64, now time.Time) error
	BulkRecordTouch(ctx context.Context, t model.Tenant, homeworkIDs []int64, studentID int64, now time.Time) error
	ToggleCheck(ctx context.Context, t model.Tenant, homeworkID, studentID int64, now time.Time) error
	CancelTouch(ctx context.Context, t model.Tenant, homeworkID, studentID int64) error
}

type ledgerService struct {
	repo      *repository.Repository
	locks     *tenantLocks
	clock     Clock
	dayScoped bool
	logger    *zap.Logger
}

// NewLedgerService 创建 LedgerService 实例
// dayScoped=true 时每个 宿题×学生 每天一条记录
func NewLedgerService(repo *repository.Repository, locks *tenantLocks, clock Clock, dayScoped bool, logger *zap.Logger) LedgerService {
	return &ledgerService{repo: repo, locks: locks, clock: clock, dayScoped: dayScoped, logger: logger}
}

// ledgerDay 记录归属日期：已提交取提交日，仅确认取确认日，两者皆无返回 ""（空行，可复用）
func ledgerDay(r *model.SubmissionRecord) string {
	if r.TouchRecorded && r.TouchDate != nil {
		return *r.TouchDate
	}
	if r.Checked && r.SubmittedDate != nil {
		return *r.SubmittedDate
	}
	return ""
}

// ────────────────────── List ──────────────────────

func (s *ledgerService) List(ctx context.Context, t model.Tenant) ([]model.SubmissionRecord, error) {
	records, err := s.repo.Submission.List(ctx, t)
	if err != nil {
		s.logger.Error("查询提交记录失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return nil, err
	}
	return records, nil
}

// ────────────────────── RecordTouch ──────────────────────

func (s *ledgerService) RecordTouch(ctx context.Context, t model.Tenant, homeworkID, studentID int64, now time.Time) error {
	return s.BulkRecordTouch(ctx, t, []int64{homeworkID}, studentID, now)
}

// ────────────────────── BulkRecordTouch ──────────────────────
//
// 批量提交只写一次存储（“全部提交”）

func (s *ledgerService) BulkRecordTouch(ctx context.Context, t model.Tenant, homeworkIDs []int64, studentID int64, now time.Time) error {
	if len(homeworkIDs) == 0 {
		return nil
	}

	unlock := s.locks.lock(t)
	defer unlock()

	st, known, records, err := s.load(ctx, t, studentID)
	if err != nil {
		return err
	}
	if st == nil {
		s.logger.Debug("忽略未知学生的提交", logger.Tenant(t.Grade, t.ClassID), zap.Int64("student_id", studentID))
		return nil
	}

	today := model.FormatDate(now)
	applied := 0
	for _, hwID := range homeworkIDs {
		if !known[hwID] {
			continue
		}
		idx := s.findRow(records, hwID, studentID, today)
		if idx < 0 {
			rec := model.NewSubmissionRecord(s.recordID(hwID, studentID, today), hwID, *st)
			rec.SetTouch(now)
			records = append(records, rec)
		} else {
			records[idx].SetTouch(now)
			records[idx].ID = s.recordID(hwID, studentID, today)
		}
		applied++
	}
	if applied == 0 {
		return nil
	}

	if err := s.repo.Submission.Save(ctx, t, records); err != nil {
		s.logger.Error("保存提交记录失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return err
	}

	metrics.TouchesRecorded.WithLabelValues(t.Grade, t.ClassID).Add(float64(applied))
	s.logger.Info("记录提交",
		logger.Tenant(t.Grade, t.ClassID),
		zap.Int64("student_id", studentID),
		zap.Int("count", applied),
	)
	return nil
}

// ────────────────────── ToggleCheck ──────────────────────
//
// 没有记录时创建“未提交但已确认”的记录；不改动提交字段。
// 前几天提交、今天才确认时，确认落在那条提交记录上。

func (s *ledgerService) ToggleCheck(ctx context.Context, t model.Tenant, homeworkID, studentID int64, now time.Time) error {
	unlock := s.locks.lock(t)
	defer unlock()

	st, known, records, err := s.load(ctx, t, studentID)
	if err != nil {
		return err
	}
	if st == nil || !known[homeworkID] {
		return nil
	}

	today := model.FormatDate(now)
	checked := true
	idx := s.findCheckRow(records, homeworkID, studentID, today)
	if idx < 0 {
		rec := model.NewSubmissionRecord(s.recordID(homeworkID, studentID, today), homeworkID, *st)
		rec.SetChecked(true, now)
		records = append(records, rec)
	} else {
		checked = !records[idx].Checked
		if ledgerDay(&records[idx]) == "" {
			records[idx].ID = s.recordID(homeworkID, studentID, today)
		}
		records[idx].SetChecked(checked, now)
	}

	if err := s.repo.Submission.Save(ctx, t, records); err != nil {
		s.logger.Error("保存确认状态失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return err
	}

	state := "unchecked"
	if checked {
		state = "checked"
	}
	metrics.ChecksToggled.WithLabelValues(state).Inc()
	return nil
}

// ────────────────────── CancelTouch ──────────────────────
//
// 只清除提交字段，确认状态保持不变

func (s *ledgerService) CancelTouch(ctx context.Context, t model.Tenant, homeworkID, studentID int64) error {
	unlock := s.locks.lock(t)
	defer unlock()

	st, known, records, err := s.load(ctx, t, studentID)
	if err != nil {
		return err
	}
	if st == nil || !known[homeworkID] {
		return nil
	}

	idx := s.findRow(records, homeworkID, studentID, model.FormatDate(s.clock()))
	if idx < 0 || !records[idx].TouchRecorded {
		return nil
	}
	records[idx].ClearTouch()

	if err := s.repo.Submission.Save(ctx, t, records); err != nil {
		s.logger.Error("取消提交失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助 ──

// load 读取学生、宿题 ID 集合与提交记录；学生不存在时 st 为 nil
func (s *ledgerService) load(ctx context.Context, t model.Tenant, studentID int64) (*model.Student, map[int64]bool, []model.SubmissionRecord, error) {
	students, err := s.repo.Student.List(ctx, t)
	if err != nil {
		s.logger.Error("查询名册失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return nil, nil, nil, err
	}
	homework, err := s.repo.Homework.List(ctx, t)
	if err != nil {
		s.logger.Error("查询宿题失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return nil, nil, nil, err
	}
	records, err := s.repo.Submission.List(ctx, t)
	if err != nil {
		s.logger.Error("查询提交记录失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return nil, nil, nil, err
	}

	known := make(map[int64]bool, len(homework))
	for _, hw := range homework {
		known[hw.ID] = true
	}

	for i := range students {
		if students[i].ID == studentID {
			return &students[i], known, records, nil
		}
	}
	return nil, known, records, nil
}

// findRow 定位目标记录
// 不按日区分时为唯一的 宿题×学生 记录；按日区分时优先当天记录，其次可复用的空行
func (s *ledgerService) findRow(records []model.SubmissionRecord, homeworkID, studentID int64, today string) int {
	spare := -1
	for i := range records {
		r := &records[i]
		if r.HomeworkID != homeworkID || r.StudentID != studentID {
			continue
		}
		if !s.dayScoped {
			return i
		}
		switch ledgerDay(r) {
		case today:
			return i
		case "":
			if spare < 0 {
				spare = i
			}
		}
	}
	return spare
}

// findCheckRow 确认的目标记录
// 按日区分时：当天记录，其次最近一次提交的记录（隔天确认），再次可复用的空行
func (s *ledgerService) findCheckRow(records []model.SubmissionRecord, homeworkID, studentID int64, today string) int {
	idx := s.findRow(records, homeworkID, studentID, today)
	if !s.dayScoped || (idx >= 0 && ledgerDay(&records[idx]) == today) {
		return idx
	}

	latest := -1
	for i := range records {
		r := &records[i]
		if r.HomeworkID != homeworkID || r.StudentID != studentID || !r.TouchRecorded || r.TouchDate == nil {
			continue
		}
		if latest < 0 || *r.TouchDate > *records[latest].TouchDate {
			latest = i
		}
	}
	if latest >= 0 {
		return latest
	}
	return idx
}

func (s *ledgerService) recordID(homeworkID, studentID int64, today string) string {
	if !s.dayScoped {
		return model.SubmissionID(homeworkID, studentID, "")
	}
	return model.SubmissionID(homeworkID, studentID, today)
}
