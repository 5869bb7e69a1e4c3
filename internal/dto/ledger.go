package dto

// ── 提交台账 DTO ──

// LedgerEntryRequest 单条提交/确认/取消请求
type LedgerEntryRequest struct {
	HomeworkID int64 `json:"homeworkId" binding:"required"`
	StudentID  int64 `json:"studentId"  binding:"required"`
}

// BulkTouchRequest 批量提交请求
type BulkTouchRequest struct {
	HomeworkIDs []int64 `json:"homeworkIds" binding:"required,min=1"`
	StudentID   int64   `json:"studentId"   binding:"required"`
}
