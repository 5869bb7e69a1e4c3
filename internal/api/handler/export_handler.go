package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"classsync/internal/model"
	"classsync/internal/service"
	"classsync/pkg/response"
)

// 下载文件的 Content-Type
const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

type exportFunc func(ctx context.Context, t model.Tenant) (*bytes.Buffer, string, error)

// ExportStudents 名册 CSV
// GET /api/v1/tenants/:grade/:class/export/students.csv
func (h *ExportHandler) ExportStudents(c *gin.Context) {
	h.download(c, h.exportSvc.StudentsCSV, contentTypeCSV)
}

// ExportSubmissions 提交状况 CSV
// GET /api/v1/tenants/:grade/:class/export/submissions.csv
func (h *ExportHandler) ExportSubmissions(c *gin.Context) {
	h.download(c, h.exportSvc.SubmissionsCSV, contentTypeCSV)
}

// ExportBacklog 未提交一览 CSV
// GET /api/v1/tenants/:grade/:class/export/backlog.csv
func (h *ExportHandler) ExportBacklog(c *gin.Context) {
	h.download(c, h.exportSvc.BacklogCSV, contentTypeCSV)
}

// ExportSnapshot JSON 完整备份
// GET /api/v1/tenants/:grade/:class/export/backup.json
func (h *ExportHandler) ExportSnapshot(c *gin.Context) {
	h.download(c, h.exportSvc.SnapshotJSON, contentTypeJSON)
}

// ExportDashboard 提交状况报告（Excel）
// GET /api/v1/tenants/:grade/:class/export/report.xlsx
func (h *ExportHandler) ExportDashboard(c *gin.Context) {
	h.download(c, h.exportSvc.DashboardXLSX, contentTypeXLSX)
}

// ExportCalendar 宿题日历（iCalendar）
// GET /api/v1/tenants/:grade/:class/export/calendar.ics
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	h.download(c, h.exportSvc.CalendarICS, contentTypeICS)
}

func (h *ExportHandler) download(c *gin.Context, fn exportFunc, contentType string) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}

	buf, filename, err := fn(c.Request.Context(), t)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, 24001, service.ErrExportGenerateFail.Error())
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
