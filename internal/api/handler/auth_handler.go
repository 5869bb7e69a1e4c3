package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"classsync/internal/dto"
	"classsync/internal/service"
	"classsync/pkg/response"
)

// AuthHandler 教师认证 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 教师登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		response.BadRequest(c, 10001, "パスワードを入力してください")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			response.Error(c, http.StatusUnauthorized, 11001, "パスワードが違います")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Logout 教师登出（启用 redis 时吊销当前 Token）
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp, ok := MustGetToken(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// ChangePassword 修改教师口令
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		response.BadRequest(c, 10001, "入力内容に誤りがあります")
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), &req); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassword):
			response.BadRequest(c, 11002, "現在のパスワードが違います")
		case errors.Is(err, service.ErrWeakPassword):
			response.BadRequest(c, 11003, service.ErrWeakPassword.Error())
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}
