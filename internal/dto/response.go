package dto

import "classsync/internal/model"

// ── 通用响应 ──

// TenantResponse 租户信息
type TenantResponse struct {
	Grade   string `json:"grade"`
	ClassID string `json:"classId"`
	Label   string `json:"label"`
}

// NewTenantResponse 由租户生成响应
func NewTenantResponse(t model.Tenant) TenantResponse {
	return TenantResponse{Grade: t.Grade, ClassID: t.ClassID, Label: t.String()}
}

// CountResponse 计数类操作结果
type CountResponse struct {
	Count int `json:"count"`
}
