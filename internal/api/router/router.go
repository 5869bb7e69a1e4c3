package router

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"classsync/config"
	"classsync/internal/api/handler"
	"classsync/internal/api/middleware"
	"classsync/internal/model"
	"classsync/internal/service"
	"classsync/pkg/jwt"
)

// Deps 路由依赖
// Blacklist、Limiter 在未启用 redis 时为 nil
type Deps struct {
	Handler   *handler.Handler
	JWT       *jwt.Manager
	Blacklist service.TokenBlacklist
	Limiter   middleware.RateLimiter
	Tenants   []model.Tenant
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	// gin 绑定也识别 daytoken 标签
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := service.RegisterValidations(v); err != nil {
			logger.Warn("注册自定义校验规则失败", zap.Error(err))
		}
	}

	h := deps.Handler
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if cfg.Server.MetricsPath != "" {
		r.GET(cfg.Server.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 教师登录（限流）
		v1.POST("/auth/login",
			middleware.RateLimit(deps.Limiter, cfg.Server.LoginLimit, cfg.Server.LoginWindow),
			h.Auth.Login,
		)

		// 学生刷卡（无需登录）
		kiosk := v1.Group("/kiosk")
		{
			kiosk.GET("/cards/:cardId", h.Kiosk.Lookup)
			kiosk.POST("/cards/:cardId/submit", h.Kiosk.Submit)
			kiosk.POST("/simulate", h.Kiosk.Simulate)
		}

		// 教师端
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(deps.JWT, deps.Blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			authorized.GET("/tenants", h.Tenant.ListTenants)
			authorized.POST("/homework/toggle-day", h.Homework.ToggleDay)

			authorized.POST("/maintenance/seed", h.Maintenance.Seed)
			authorized.POST("/maintenance/reset", h.Maintenance.ResetAll)

			tenant := authorized.Group("/tenants/:grade/:class")
			tenant.Use(middleware.Tenant(deps.Tenants))
			{
				// 名册
				tenant.GET("/students", h.Student.ListStudents)
				tenant.GET("/students/:id", h.Student.GetStudent)
				tenant.POST("/students", h.Student.CreateStudent)
				tenant.PUT("/students/:id", h.Student.UpdateStudent)
				tenant.DELETE("/students/:id", h.Student.DeleteStudent)

				// 宿题
				tenant.GET("/homework", h.Homework.ListHomework)
				tenant.GET("/homework/today", h.Homework.ListDueToday)
				tenant.GET("/homework/:id", h.Homework.GetHomework)
				tenant.POST("/homework", h.Homework.CreateHomework)
				tenant.PUT("/homework/:id", h.Homework.UpdateHomework)
				tenant.DELETE("/homework/:id", h.Homework.DeleteHomework)

				// 提交台账
				tenant.GET("/submissions", h.Ledger.ListSubmissions)
				tenant.POST("/submissions/touch", h.Ledger.RecordTouch)
				tenant.POST("/submissions/bulk", h.Ledger.BulkTouch)
				tenant.POST("/submissions/cancel", h.Ledger.CancelTouch)
				tenant.POST("/submissions/check", h.Ledger.ToggleCheck)

				// 统计
				tenant.GET("/reports/dashboard", h.Report.Dashboard)
				tenant.GET("/reports/unsubmitted", h.Report.TodayUnsubmitted)
				tenant.GET("/reports/backlog", h.Report.Backlog)

				// 导出
				export := tenant.Group("/export")
				{
					export.GET("/students.csv", h.Export.ExportStudents)
					export.GET("/submissions.csv", h.Export.ExportSubmissions)
					export.GET("/backlog.csv", h.Export.ExportBacklog)
					export.GET("/backup.json", h.Export.ExportSnapshot)
					export.GET("/report.xlsx", h.Export.ExportDashboard)
					export.GET("/calendar.ics", h.Export.ExportCalendar)
				}

				tenant.POST("/reset", h.Maintenance.ResetTenant)
			}
		}
	}

	return r
}
