package model

import (
	"fmt"
	"time"
)

// 日期与时间的存储格式
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// FormatDate 格式化为 YYYY-MM-DD
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// FormatTime 格式化为 HH:MM:SS
func FormatTime(t time.Time) string { return t.Format(TimeLayout) }

// SubmissionRecord 提交记录
//
// 学生姓名/出席号/卡号为记录时的快照。不变式：
//   - TouchRecorded=false ⇒ TouchDate=nil
//   - Checked=false ⇒ CheckedAt=nil
//
// Checked=true 且 TouchRecorded=false 是合法状态（教师先行确认）
type SubmissionRecord struct {
	ID              string     `json:"id"`
	HomeworkID      int64      `json:"homeworkId"`
	StudentID       int64      `json:"studentId"`
	StudentNumber   int        `json:"studentNumber"`
	StudentName     string     `json:"studentName"`
	CardID          string     `json:"cardId"`
	TouchRecorded   bool       `json:"touchRecorded"`
	TouchRecordedAt *time.Time `json:"touchRecordedAt"`
	TouchDate       *string    `json:"touchDate"`
	TouchTime       *string    `json:"touchTime"`
	Checked         bool       `json:"checked"`
	CheckedAt       *time.Time `json:"checkedAt"`
	SubmittedDate   *string    `json:"submittedDate"`
	SubmittedTime   *string    `json:"submittedTime"`
}

// SubmissionID 生成记录 ID；date 为空时不带日期后缀
func SubmissionID(homeworkID, studentID int64, date string) string {
	if date == "" {
		return fmt.Sprintf("sub_%d_%d", homeworkID, studentID)
	}
	return fmt.Sprintf("sub_%d_%d_%s", homeworkID, studentID, compactDate(date))
}

func compactDate(date string) string {
	out := make([]byte, 0, len(date))
	for i := 0; i < len(date); i++ {
		if date[i] != '-' {
			out = append(out, date[i])
		}
	}
	return string(out)
}

// TouchedOn 是否在指定日期（YYYY-MM-DD）有提交
func (r *SubmissionRecord) TouchedOn(date string) bool {
	return r.TouchRecorded && r.TouchDate != nil && *r.TouchDate == date
}

// SetTouch 写入提交字段
func (r *SubmissionRecord) SetTouch(now time.Time) {
	at := now.UTC()
	date, clock := FormatDate(now), FormatTime(now)
	r.TouchRecorded = true
	r.TouchRecordedAt = &at
	r.TouchDate = &date
	r.TouchTime = &clock
}

// ClearTouch 清除提交字段，不影响确认状态
func (r *SubmissionRecord) ClearTouch() {
	r.TouchRecorded = false
	r.TouchRecordedAt = nil
	r.TouchDate = nil
	r.TouchTime = nil
}

// SetChecked 设置确认状态：确认时记录时间，取消时清空
func (r *SubmissionRecord) SetChecked(checked bool, now time.Time) {
	r.Checked = checked
	if !checked {
		r.CheckedAt = nil
		r.SubmittedDate = nil
		r.SubmittedTime = nil
		return
	}
	at := now.UTC()
	date, clock := FormatDate(now), FormatTime(now)
	r.CheckedAt = &at
	r.SubmittedDate = &date
	r.SubmittedTime = &clock
}

// NewSubmissionRecord 以学生当前信息为快照创建空记录
func NewSubmissionRecord(id string, homeworkID int64, s Student) SubmissionRecord {
	return SubmissionRecord{
		ID:            id,
		HomeworkID:    homeworkID,
		StudentID:     s.ID,
		StudentNumber: s.Number,
		StudentName:   s.Name,
		CardID:        s.CardID,
	}
}
