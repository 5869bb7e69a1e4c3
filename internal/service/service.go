package service

import (
	"go.uber.org/zap"

	"classsync/config"
	"classsync/internal/model"
	"classsync/internal/repository"
	"classsync/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	Student     StudentService
	Homework    HomeworkService
	Ledger      LedgerService
	Report      ReportService
	Identity    IdentityService
	Kiosk       KioskService
	Export      ExportService
	Maintenance MaintenanceService
}

// NewService 创建 Service 聚合（学校时区的系统时钟）
// blacklist 可为 nil（未启用 redis）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	return NewServiceWithClock(cfg, repo, jwtMgr, blacklist, SystemClock(cfg.School.Location()), logger)
}

// NewServiceWithClock 使用指定时钟创建 Service 聚合
func NewServiceWithClock(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	clock Clock,
	logger *zap.Logger,
) *Service {
	locks := newTenantLocks()
	tenants := model.Tenants(cfg.School.Grades, cfg.School.Classes)
	dayScoped := cfg.Feature.DayScopedSubmissions

	auth := NewAuthService(cfg, repo, jwtMgr, blacklist, logger)
	identity := NewIdentityService(repo, tenants, logger)
	ledger := NewLedgerService(repo, locks, clock, dayScoped, logger)
	report := NewReportService(repo, clock, dayScoped, logger)

	return &Service{
		Auth:        auth,
		Student:     NewStudentService(repo, locks, clock, logger),
		Homework:    NewHomeworkService(repo, locks, clock, logger),
		Ledger:      ledger,
		Report:      report,
		Identity:    identity,
		Kiosk:       NewKioskService(repo, identity, ledger, clock, dayScoped, logger),
		Export:      NewExportService(repo, report, clock, cfg.Export.TitleDelimiter, logger),
		Maintenance: NewMaintenanceService(repo, auth, locks, tenants, clock, logger),
	}
}
