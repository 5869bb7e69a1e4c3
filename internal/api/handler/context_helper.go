package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"classsync/internal/api/middleware"
	"classsync/internal/model"
	"classsync/pkg/response"
)

// MustGetTenant 从 Gin 上下文中提取租户（由 Tenant 中间件注入）。
// 调用方应在 ok=false 时直接 return。
func MustGetTenant(c *gin.Context) (model.Tenant, bool) {
	v, exists := c.Get(middleware.ContextTenantKey)
	if !exists {
		response.NotFound(c, 10006, "学年・クラスが見つかりません")
		return model.Tenant{}, false
	}
	t, ok := v.(model.Tenant)
	if !ok {
		response.NotFound(c, 10006, "学年・クラスが見つかりません")
		return model.Tenant{}, false
	}
	return t, true
}

// MustGetToken 提取当前会话的 jti 与过期时间
func MustGetToken(c *gin.Context) (string, time.Time, bool) {
	jti := c.GetString(middleware.ContextTokenID)
	if jti == "" {
		response.Unauthorized(c, 10002, "ログインしてください")
		return "", time.Time{}, false
	}
	exp, _ := c.Get(middleware.ContextTokenExp)
	expiresAt, _ := exp.(time.Time)
	return jti, expiresAt, true
}

// parseIDParam 解析路径中的整数 ID
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "IDが正しくありません")
		return 0, false
	}
	return id, true
}
