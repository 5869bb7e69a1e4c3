package service

import (
	"context"

	"go.uber.org/zap"

	"classsync/internal/model"
	"classsync/internal/repository"
	"classsync/pkg/logger"
)

// ReportService 教师端统计
type ReportService interface {
	// Input 读取统计所需的全部数据（当天日期取自学校时区）
	Input(ctx context.Context, t model.Tenant) (ReportInput, error)
	Dashboard(ctx context.Context, t model.Tenant) (*Dashboard, error)
	TodayUnsubmitted(ctx context.Context, t model.Tenant) ([]UnsubmittedGroup, error)
	Backlog(ctx context.Context, t model.Tenant) ([]StudentBacklog, error)
}

type reportService struct {
	repo      *repository.Repository
	clock     Clock
	dayScoped bool
	logger    *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, clock Clock, dayScoped bool, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, clock: clock, dayScoped: dayScoped, logger: logger}
}

func (s *reportService) Input(ctx context.Context, t model.Tenant) (ReportInput, error) {
	students, err := s.repo.Student.List(ctx, t)
	if err != nil {
		s.logger.Error("统计时读取名册失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return ReportInput{}, err
	}
	homework, err := s.repo.Homework.List(ctx, t)
	if err != nil {
		s.logger.Error("统计时读取宿题失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return ReportInput{}, err
	}
	records, err := s.repo.Submission.List(ctx, t)
	if err != nil {
		s.logger.Error("统计时读取提交记录失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return ReportInput{}, err
	}
	return ReportInput{
		Students:  students,
		Homework:  homework,
		Records:   records,
		Today:     s.clock(),
		DayScoped: s.dayScoped,
	}, nil
}

func (s *reportService) Dashboard(ctx context.Context, t model.Tenant) (*Dashboard, error) {
	in, err := s.Input(ctx, t)
	if err != nil {
		return nil, err
	}
	d := BuildDashboard(in)
	return &d, nil
}

func (s *reportService) TodayUnsubmitted(ctx context.Context, t model.Tenant) ([]UnsubmittedGroup, error) {
	in, err := s.Input(ctx, t)
	if err != nil {
		return nil, err
	}
	return TodayUnsubmitted(in), nil
}

func (s *reportService) Backlog(ctx context.Context, t model.Tenant) ([]StudentBacklog, error) {
	in, err := s.Input(ctx, t)
	if err != nil {
		return nil, err
	}
	return Backlog(in), nil
}
