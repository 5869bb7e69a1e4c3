package dto

// ── 名册 DTO ──

// StudentRequest 创建/更新学生请求（整体替换）
type StudentRequest struct {
	Number int    `json:"number" binding:"required,min=1,max=999"`
	Name   string `json:"name"   binding:"required,max=50"`
	CardID string `json:"cardId" binding:"required,max=64"`
}
