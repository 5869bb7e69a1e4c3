package handler

import (
	"github.com/gin-gonic/gin"

	"classsync/internal/dto"
	"classsync/internal/model"
	"classsync/pkg/response"
)

// TenantHandler 学年・班级列表
type TenantHandler struct {
	tenants []model.Tenant
}

// NewTenantHandler 创建 TenantHandler
func NewTenantHandler(tenants []model.Tenant) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// ListTenants 可选的学年・班级（按配置顺序）
// GET /api/v1/tenants
func (h *TenantHandler) ListTenants(c *gin.Context) {
	list := make([]dto.TenantResponse, 0, len(h.tenants))
	for _, t := range h.tenants {
		list = append(list, dto.NewTenantResponse(t))
	}
	response.OK(c, gin.H{"list": list})
}
