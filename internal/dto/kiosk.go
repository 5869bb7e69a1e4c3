package dto

import "classsync/internal/model"

// ── 点名机 DTO ──

// KioskHomeworkItem 当天到期宿题及是否已提交
type KioskHomeworkItem struct {
	HomeworkID int64  `json:"homeworkId"`
	Title      string `json:"title"`
	Days       string `json:"days"`
	Submitted  bool   `json:"submitted"`
}

// KioskLookupResponse 刷卡结果
type KioskLookupResponse struct {
	Student   model.Student       `json:"student"`
	Tenant    TenantResponse      `json:"tenant"`
	Items     []KioskHomeworkItem `json:"items"`
	Remaining int                 `json:"remaining"`
}

// KioskSubmitRequest 提交请求；All=true 时提交全部未提交项
type KioskSubmitRequest struct {
	All         bool    `json:"all"`
	HomeworkIDs []int64 `json:"homeworkIds"`
}

// KioskSubmitResponse 提交结果
type KioskSubmitResponse struct {
	Submitted []string `json:"submitted"`
	Remaining int      `json:"remaining"`
}

// SimulateResponse 模拟刷卡
type SimulateResponse struct {
	CardID  string `json:"cardId"`
	Backend string `json:"backend"`
}
