package handler

import (
	"github.com/gin-gonic/gin"

	"classsync/internal/dto"
	"classsync/internal/model"
	"classsync/internal/service"
	"classsync/pkg/response"
)

// LedgerHandler 提交台账 HTTP 处理器（教师端）
// 未知的宿题或学生 ID 由 Service 按无操作处理，这里不返回 404
type LedgerHandler struct {
	ledgerSvc service.LedgerService
	clock     service.Clock
}

// NewLedgerHandler 创建 LedgerHandler
func NewLedgerHandler(ledgerSvc service.LedgerService, clock service.Clock) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc, clock: clock}
}

// ListSubmissions 全部提交记录
// GET /api/v1/tenants/:grade/:class/submissions
func (h *LedgerHandler) ListSubmissions(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}

	records, err := h.ledgerSvc.List(c.Request.Context(), t)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": records})
}

// RecordTouch 代学生登记提交
// POST /api/v1/tenants/:grade/:class/submissions/touch
func (h *LedgerHandler) RecordTouch(c *gin.Context) {
	h.apply(c, func(t model.Tenant, req *dto.LedgerEntryRequest) error {
		return h.ledgerSvc.RecordTouch(c.Request.Context(), t, req.HomeworkID, req.StudentID, h.clock())
	})
}

// CancelTouch 撤销学生提交（确认状态不变）
// POST /api/v1/tenants/:grade/:class/submissions/cancel
func (h *LedgerHandler) CancelTouch(c *gin.Context) {
	h.apply(c, func(t model.Tenant, req *dto.LedgerEntryRequest) error {
		return h.ledgerSvc.CancelTouch(c.Request.Context(), t, req.HomeworkID, req.StudentID)
	})
}

// ToggleCheck 切换教师确认
// POST /api/v1/tenants/:grade/:class/submissions/check
func (h *LedgerHandler) ToggleCheck(c *gin.Context) {
	h.apply(c, func(t model.Tenant, req *dto.LedgerEntryRequest) error {
		return h.ledgerSvc.ToggleCheck(c.Request.Context(), t, req.HomeworkID, req.StudentID, h.clock())
	})
}

// BulkTouch 一次登记多个宿题（单次写入）
// POST /api/v1/tenants/:grade/:class/submissions/bulk
func (h *LedgerHandler) BulkTouch(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}

	var req dto.BulkTouchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		response.BadRequest(c, 22001, "宿題と児童を指定してください")
		return
	}

	if err := h.ledgerSvc.BulkRecordTouch(c.Request.Context(), t, req.HomeworkIDs, req.StudentID, h.clock()); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, dto.CountResponse{Count: len(req.HomeworkIDs)})
}

// apply 解析单条台账请求并执行
func (h *LedgerHandler) apply(c *gin.Context, fn func(model.Tenant, *dto.LedgerEntryRequest) error) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}

	var req dto.LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		response.BadRequest(c, 22001, "宿題と児童を指定してください")
		return
	}

	if err := fn(t, &req); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}
