package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"classsync/internal/service"
	"classsync/pkg/jwt"
	"classsync/pkg/response"
)

// 上下文键
const (
	ContextRole      = "role"
	ContextTokenID   = "token_id"
	ContextTokenExp  = "token_exp"
	ContextTenantKey = "tenant"
)

// JWTAuth 教师会话认证中间件
// 从 Authorization: Bearer <token> 中提取 Access Token；blacklist 为 nil 时跳过黑名单检查
func JWTAuth(jwtMgr *jwt.Manager, blacklist service.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "ログインしてください")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "認証ヘッダーの形式が正しくありません")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil || claims.Role != jwt.RoleTeacher {
			response.Unauthorized(c, 10002, "ログインの有効期限が切れました")
			c.Abort()
			return
		}

		if blacklist != nil {
			revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			// redis 故障时放行，与限流策略一致
			if err == nil && revoked {
				response.Unauthorized(c, 10002, "ログアウト済みです")
				c.Abort()
				return
			}
		}

		var exp time.Time
		if claims.ExpiresAt != nil {
			exp = claims.ExpiresAt.Time
		}
		c.Set(ContextRole, claims.Role)
		c.Set(ContextTokenID, claims.ID)
		c.Set(ContextTokenExp, exp)

		c.Next()
	}
}
