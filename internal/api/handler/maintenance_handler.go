package handler

import (
	"github.com/gin-gonic/gin"

	"classsync/internal/service"
	"classsync/pkg/response"
)

// MaintenanceHandler 数据维护 HTTP 处理器
type MaintenanceHandler struct {
	maintenanceSvc service.MaintenanceService
}

// NewMaintenanceHandler 创建 MaintenanceHandler
func NewMaintenanceHandler(maintenanceSvc service.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceSvc: maintenanceSvc}
}

// ResetTenant 清空当前学年・班级的数据
// POST /api/v1/tenants/:grade/:class/reset
func (h *MaintenanceHandler) ResetTenant(c *gin.Context) {
	t, ok := MustGetTenant(c)
	if !ok {
		return
	}

	if err := h.maintenanceSvc.Reset(c.Request.Context(), t); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// ResetAll 恢复出厂状态（含教师口令）
// POST /api/v1/maintenance/reset
func (h *MaintenanceHandler) ResetAll(c *gin.Context) {
	if err := h.maintenanceSvc.ResetAll(c.Request.Context()); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// Seed 默认租户为空时写入示例数据
// POST /api/v1/maintenance/seed
func (h *MaintenanceHandler) Seed(c *gin.Context) {
	seeded, err := h.maintenanceSvc.SeedDefaults(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"seeded": seeded})
}
