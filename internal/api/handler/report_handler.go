package handler

import (
	"github.com/gin-gonic/gin"

	"classsync/internal/service"
	"classsync/pkg/response"
)

// ReportHandler 统计报表 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Dashboard 仪表盘（确认率、今日完成率、宿题明细）
// GET /api/v1/tenants/:grade/:class/reports/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}

	d, err := h.reportSvc.Dashboard(c.Request.Context(), t)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, d)
}

// TodayUnsubmitted 今日未提交名单（按宿题分组）
// GET /api/v1/tenants/:grade/:class/reports/unsubmitted
func (h *ReportHandler) TodayUnsubmitted(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}

	groups, err := h.reportSvc.TodayUnsubmitted(c.Request.Context(), t)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": groups})
}

// Backlog 累计未提交（不分星期）
// GET /api/v1/tenants/:grade/:class/reports/backlog
func (h *ReportHandler) Backlog(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}

	backlog, err := h.reportSvc.Backlog(c.Request.Context(), t)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": backlog})
}
