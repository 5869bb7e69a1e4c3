package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classsync/internal/dto"
	"classsync/internal/model"
	"classsync/internal/service"
	apperrors "classsync/pkg/errors"
	"classsync/pkg/response"
)

// HomeworkHandler 宿题 HTTP 处理器
type HomeworkHandler struct {
	homeworkSvc service.HomeworkService
	clock       service.Clock
}

// NewHomeworkHandler 创建 HomeworkHandler
func NewHomeworkHandler(homeworkSvc service.HomeworkService, clock service.Clock) *HomeworkHandler {
	return &HomeworkHandler{homeworkSvc: homeworkSvc, clock: clock}
}

func (h *HomeworkHandler) toResponse(hw model.Homework) dto.HomeworkResponse {
	return dto.HomeworkResponse{
		Homework: hw,
		Days:     service.FormatDays(hw.Recurrence),
		DueToday: service.IsDueOn(hw, h.clock()),
	}
}

func (h *HomeworkHandler) toResponses(list []model.Homework) []dto.HomeworkResponse {
	out := make([]dto.HomeworkResponse, 0, len(list))
	for _, hw := range list {
		out = append(out, h.toResponse(hw))
	}
	return out
}

// ListHomework 宿题列表
// GET /api/v1/tenants/:grade/:class/homework
func (h *HomeworkHandler) ListHomework(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}

	list, err := h.homeworkSvc.List(c.Request.Context(), t)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": h.toResponses(list)})
}

// ListDueToday 今天到期的宿题
// GET /api/v1/tenants/:grade/:class/homework/today
func (h *HomeworkHandler) ListDueToday(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}

	list, err := h.homeworkSvc.DueToday(c.Request.Context(), t)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": h.toResponses(list)})
}

// GetHomework 宿题详情
// GET /api/v1/tenants/:grade/:class/homework/:id
func (h *HomeworkHandler) GetHomework(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	hw, err := h.homeworkSvc.Get(c.Request.Context(), t, id)
	if err != nil {
		h.handleHomeworkError(c, err)
		return
	}

	response.OK(c, h.toResponse(*hw))
}

// CreateHomework 新建宿题
// POST /api/v1/tenants/:grade/:class/homework
func (h *HomeworkHandler) CreateHomework(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}

	var req dto.HomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		response.BadRequest(c, 10001, "入力内容に誤りがあります")
		return
	}

	hw, err := h.homeworkSvc.Create(c.Request.Context(), t, &req)
	if err != nil {
		h.handleHomeworkError(c, err)
		return
	}

	response.Created(c, h.toResponse(*hw))
}

// UpdateHomework 修改宿题
// PUT /api/v1/tenants/:grade/:class/homework/:id
func (h *HomeworkHandler) UpdateHomework(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.HomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		response.BadRequest(c, 10001, "入力内容に誤りがあります")
		return
	}

	hw, err := h.homeworkSvc.Update(c.Request.Context(), t, id, &req)
	if err != nil {
		h.handleHomeworkError(c, err)
		return
	}

	response.OK(c, h.toResponse(*hw))
}

// DeleteHomework 删除宿题（连同提交记录）
// DELETE /api/v1/tenants/:grade/:class/homework/:id
func (h *HomeworkHandler) DeleteHomework(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.homeworkSvc.Delete(c.Request.Context(), t, id); err != nil {
		h.handleHomeworkError(c, err)
		return
	}

	response.OK(c, nil)
}

// ToggleDay 录入界面切换星期（毎日 与具体星期互斥）
// POST /api/v1/homework/toggle-day
func (h *HomeworkHandler) ToggleDay(c *gin.Context) {
	var req dto.ToggleDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		response.BadRequest(c, 21005, "曜日の指定が不正です")
		return
	}

	next := service.ToggleDay(model.Recurrence(req.Recurrence), req.Day)
	response.OK(c, dto.ToggleDayResponse{Recurrence: next, Days: service.FormatDays(next)})
}

// handleHomeworkError 统一处理宿题业务错误
func (h *HomeworkHandler) handleHomeworkError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHomeworkNotFound):
		response.NotFound(c, 21001, "宿題が見つかりません")
	case errors.Is(err, service.ErrBlankTitle):
		response.Validation(c, 21002, err)
	case errors.Is(err, service.ErrEmptyRecurrence):
		response.Validation(c, 21003, err)
	case errors.Is(err, service.ErrInvalidDayToken):
		response.Validation(c, 21005, err)
	case apperrors.IsValidation(err):
		response.Validation(c, 21004, err)
	default:
		response.InternalError(c)
	}
}
