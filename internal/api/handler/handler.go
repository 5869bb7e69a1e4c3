package handler

import (
	"classsync/internal/model"
	"classsync/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	Tenant      *TenantHandler
	Student     *StudentHandler
	Homework    *HomeworkHandler
	Ledger      *LedgerHandler
	Report      *ReportHandler
	Export      *ExportHandler
	Kiosk       *KioskHandler
	Maintenance *MaintenanceHandler
}

// Options Handler 层需要的运行参数
type Options struct {
	Tenants           []model.Tenant
	Clock             service.Clock
	SimulationEnabled bool
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, opts Options) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		Tenant:      NewTenantHandler(opts.Tenants),
		Student:     NewStudentHandler(svc.Student),
		Homework:    NewHomeworkHandler(svc.Homework, opts.Clock),
		Ledger:      NewLedgerHandler(svc.Ledger, opts.Clock),
		Report:      NewReportHandler(svc.Report),
		Export:      NewExportHandler(svc.Export),
		Kiosk:       NewKioskHandler(svc.Kiosk, opts.SimulationEnabled),
		Maintenance: NewMaintenanceHandler(svc.Maintenance),
	}
}
