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

// ── 名册模块业务错误 ──

var (
	ErrStudentNotFound  = fmt.Errorf("児童: %w", apperrors.ErrNotFound)
	ErrInvalidStudent   = errors.New("児童情報に誤りがあります")
	ErrBlankStudentName = errors.New("名前を入力してください")
	ErrBlankCardID      = errors.New("NFC IDを入力してください")
	ErrDuplicateNumber  = errors.New("この出席番号は既に登録されています")
	ErrDuplicateCardID  = errors.New("このNFC IDは既に登録されています")
)

// StudentService 名册业务接口
// 删除学生不级联删除提交记录（孤立记录保留，统计时不再计入）
type StudentService interface {
	List(ctx context.Context, t model.Tenant) ([]model.Student, error)
	Get(ctx context.Context, t model.Tenant, id int64) (*model.Student, error)
	Create(ctx context.Context, t model.Tenant, req *dto.StudentRequest) (*model.Student, error)
	Update(ctx context.Context, t model.Tenant, id int64, req *dto.StudentRequest) (*model.Student, error)
	Delete(ctx context.Context, t model.Tenant, id int64) error
}

type studentService struct {
	repo   *repository.Repository
	locks  *tenantLocks
	clock  Clock
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, locks *tenantLocks, clock Clock, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, locks: locks, clock: clock, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *studentService) List(ctx context.Context, t model.Tenant) ([]model.Student, error) {
	students, err := s.repo.Student.List(ctx, t)
	if err != nil {
		s.logger.Error("查询名册失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return nil, err
	}
	return sortedByNumber(students), nil
}

// ────────────────────── Get ──────────────────────

func (s *studentService) Get(ctx context.Context, t model.Tenant, id int64) (*model.Student, error) {
	students, err := s.List(ctx, t)
	if err != nil {
		return nil, err
	}
	for i := range students {
		if students[i].ID == id {
			return &students[i], nil
		}
	}
	return nil, ErrStudentNotFound
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, t model.Tenant, req *dto.StudentRequest) (*model.Student, error) {
	if err := checkStudentRequest(req); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(t)
	defer unlock()

	students, err := s.repo.Student.List(ctx, t)
	if err != nil {
		s.logger.Error("查询名册失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return nil, err
	}
	if err := checkStudentUnique(students, 0, req); err != nil {
		return nil, err
	}

	var maxID int64
	for _, st := range students {
		if st.ID > maxID {
			maxID = st.ID
		}
	}

	now := s.clock()
	st := model.Student{
		ID:        nextID(now, maxID),
		Number:    req.Number,
		Name:      req.Name,
		CardID:    req.CardID,
		Grade:     t.Grade,
		ClassID:   t.ClassID,
		CreatedAt: now.UTC().Truncate(time.Millisecond),
	}
	students = append(students, st)

	if err := s.repo.Student.Save(ctx, t, students); err != nil {
		s.logger.Error("保存名册失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("新增学生", logger.Tenant(t.Grade, t.ClassID), zap.Int64("student_id", st.ID), zap.Int("number", st.Number))
	return &st, nil
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, t model.Tenant, id int64, req *dto.StudentRequest) (*model.Student, error) {
	if err := checkStudentRequest(req); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(t)
	defer unlock()

	students, err := s.repo.Student.List(ctx, t)
	if err != nil {
		s.logger.Error("查询名册失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return nil, err
	}

	idx := -1
	for i := range students {
		if students[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrStudentNotFound
	}
	if err := checkStudentUnique(students, id, req); err != nil {
		return nil, err
	}

	students[idx].Number = req.Number
	students[idx].Name = req.Name
	students[idx].CardID = req.CardID

	if err := s.repo.Student.Save(ctx, t, students); err != nil {
		s.logger.Error("保存名册失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return nil, err
	}

	st := students[idx]
	return &st, nil
}

// ────────────────────── Delete ──────────────────────

func (s *studentService) Delete(ctx context.Context, t model.Tenant, id int64) error {
	unlock := s.locks.lock(t)
	defer unlock()

	students, err := s.repo.Student.List(ctx, t)
	if err != nil {
		s.logger.Error("查询名册失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return err
	}

	kept := students[:0]
	found := false
	for _, st := range students {
		if st.ID == id {
			found = true
			continue
		}
		kept = append(kept, st)
	}
	if !found {
		return ErrStudentNotFound
	}

	if err := s.repo.Student.Save(ctx, t, kept); err != nil {
		s.logger.Error("保存名册失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return err
	}

	s.logger.Info("删除学生", logger.Tenant(t.Grade, t.ClassID), zap.Int64("student_id", id))
	return nil
}

// ── 校验 ──

// checkStudentRequest 去除首尾空白后校验；全部在写入之前完成
func checkStudentRequest(req *dto.StudentRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.CardID = strings.TrimSpace(req.CardID)

	if req.Name == "" {
		return apperrors.NewValidationError(ErrBlankStudentName, apperrors.FieldError{Field: "name", Error: "required"})
	}
	if req.CardID == "" {
		return apperrors.NewValidationError(ErrBlankCardID, apperrors.FieldError{Field: "cardId", Error: "required"})
	}
	return validateStruct(req, ErrInvalidStudent)
}

// checkStudentUnique 出席号与卡号在租户内唯一（selfID 为正在编辑的学生）
func checkStudentUnique(students []model.Student, selfID int64, req *dto.StudentRequest) error {
	for _, st := range students {
		if st.ID == selfID {
			continue
		}
		if st.Number == req.Number {
			return apperrors.NewValidationError(ErrDuplicateNumber, apperrors.FieldError{Field: "number", Error: "duplicate"})
		}
		if st.CardID == req.CardID {
			return apperrors.NewValidationError(ErrDuplicateCardID, apperrors.FieldError{Field: "cardId", Error: "duplicate"})
		}
	}
	return nil
}
