package middleware

import (
	"github.com/gin-gonic/gin"

	"classsync/internal/model"
	"classsync/pkg/response"
)

// Tenant 解析路径中的 :grade / :class，只接受配置中的租户
func Tenant(tenants []model.Tenant) gin.HandlerFunc {
	allowed := make(map[model.Tenant]bool, len(tenants))
	for _, t := range tenants {
		allowed[t] = true
	}

	return func(c *gin.Context) {
		t := model.Tenant{Grade: c.Param("grade"), ClassID: c.Param("class")}
		if !allowed[t] {
			response.NotFound(c, 10006, "学年・クラスが見つかりません")
			c.Abort()
			return
		}
		c.Set(ContextTenantKey, t)
		c.Next()
	}
}
