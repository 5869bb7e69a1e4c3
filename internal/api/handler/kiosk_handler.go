package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classsync/internal/dto"
	"classsync/internal/scan"
	"classsync/internal/service"
	apperrors "classsync/pkg/errors"
	"classsync/pkg/metrics"
	"classsync/pkg/response"
)

// KioskHandler 学生刷卡提交 HTTP 处理器（无需登录）
type KioskHandler struct {
	kioskSvc          service.KioskService
	simulationEnabled bool
}

// NewKioskHandler 创建 KioskHandler
func NewKioskHandler(kioskSvc service.KioskService, simulationEnabled bool) *KioskHandler {
	return &KioskHandler{kioskSvc: kioskSvc, simulationEnabled: simulationEnabled}
}

// Lookup 刷卡：识别学生并列出今天到期的宿题
// GET /api/v1/kiosk/cards/:cardId
func (h *KioskHandler) Lookup(c *gin.Context) {
	result, err := h.kioskSvc.Lookup(c.Request.Context(), c.Param("cardId"))
	if err != nil {
		h.handleKioskError(c, err)
		return
	}

	response.OK(c, result)
}

// Submit 提交所选宿题，all=true 时提交全部剩余
// POST /api/v1/kiosk/cards/:cardId/submit
func (h *KioskHandler) Submit(c *gin.Context) {
	var req dto.KioskSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		response.BadRequest(c, 10001, "入力内容に誤りがあります")
		return
	}

	result, err := h.kioskSvc.Submit(c.Request.Context(), c.Param("cardId"), &req)
	if err != nil {
		h.handleKioskError(c, err)
		return
	}

	response.OK(c, result)
}

// Simulate 生成模拟卡号（仅开发环境开启）
// POST /api/v1/kiosk/simulate
func (h *KioskHandler) Simulate(c *gin.Context) {
	if !h.simulationEnabled {
		response.NotFound(c, 23003, "シミュレーションは無効です")
		return
	}

	id := scan.NewSimulatedID()
	metrics.ScanDetections.WithLabelValues(string(scan.BackendSimulated)).Inc()
	response.OK(c, dto.SimulateResponse{CardID: id, Backend: string(scan.BackendSimulated)})
}

// handleKioskError 统一处理刷卡业务错误
func (h *KioskHandler) handleKioskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCardNotFound):
		response.NotFound(c, 23001, "登録されていないカードです")
	case errors.Is(err, service.ErrNothingSelected):
		response.Validation(c, 23002, err)
	case apperrors.IsValidation(err):
		response.Validation(c, 23004, err)
	default:
		response.InternalError(c)
	}
}
