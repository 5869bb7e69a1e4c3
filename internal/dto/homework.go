package dto

import "classsync/internal/model"

// ── 宿题 DTO ──

// HomeworkRequest 创建/更新宿题请求
// 星期：0=周日 … 6=周六，或 everyday
type HomeworkRequest struct {
	Title       string           `json:"title"       binding:"required,max=100"`
	Recurrence  []model.DayToken `json:"recurrence"  binding:"required,min=1,dive,daytoken"`
	Description string           `json:"description" binding:"omitempty,max=500"`
}

// ToggleDayRequest 录入界面切换星期
type ToggleDayRequest struct {
	Recurrence []model.DayToken `json:"recurrence" binding:"omitempty,dive,daytoken"`
	Day        model.DayToken   `json:"day"        binding:"required,daytoken"`
}

// ToggleDayResponse 切换结果
type ToggleDayResponse struct {
	Recurrence model.Recurrence `json:"recurrence"`
	Days       string           `json:"days"`
}

// HomeworkResponse 宿题（附星期显示文字）
type HomeworkResponse struct {
	model.Homework
	Days     string `json:"days"`
	DueToday bool   `json:"dueToday"`
}
