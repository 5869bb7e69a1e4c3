package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classsync/internal/dto"
	"classsync/internal/service"
	apperrors "classsync/pkg/errors"
	"classsync/pkg/response"
)

// StudentHandler 名册 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// ListStudents 名册（按出席番号排序）
// GET /api/v1/tenants/:grade/:class/students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}

	students, err := h.studentSvc.List(c.Request.Context(), t)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": students})
}

// GetStudent 学生详情
// GET /api/v1/tenants/:grade/:class/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	student, err := h.studentSvc.Get(c.Request.Context(), t, id)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// CreateStudent 登记学生
// POST /api/v1/tenants/:grade/:class/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}

	var req dto.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		response.BadRequest(c, 10001, "入力内容に誤りがあります")
		return
	}

	student, err := h.studentSvc.Create(c.Request.Context(), t, &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.Created(c, student)
}

// UpdateStudent 修改学生
// PUT /api/v1/tenants/:grade/:class/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.StudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		response.BadRequest(c, 10001, "入力内容に誤りがあります")
		return
	}

	student, err := h.studentSvc.Update(c.Request.Context(), t, id, &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// DeleteStudent 删除学生（提交记录保留）
// DELETE /api/v1/tenants/:grade/:class/students/:id
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.studentSvc.Delete(c.Request.Context(), t, id); err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleStudentError 统一处理名册业务错误
func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 20001, "児童が見つかりません")
	case errors.Is(err, service.ErrDuplicateNumber):
		response.Conflict(c, 20002, service.ErrDuplicateNumber.Error())
	case errors.Is(err, service.ErrDuplicateCardID):
		response.Conflict(c, 20003, service.ErrDuplicateCardID.Error())
	case apperrors.IsValidation(err):
		response.Validation(c, 20004, err)
	default:
		response.InternalError(c)
	}
}
