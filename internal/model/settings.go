package model

import "time"

// AppSettings 全局设置；Password 为教师口令的 bcrypt 摘要（旧数据可能为明文）
type AppSettings struct {
	Password string `json:"password"`
}

// SnapshotVersion 备份文档版本
const SnapshotVersion = "1.0"

// Snapshot 单个租户的完整备份
type Snapshot struct {
	Timestamp   time.Time          `json:"timestamp"`
	Version     string             `json:"version"`
	Grade       string             `json:"grade"`
	ClassID     string             `json:"classId"`
	Students    []Student          `json:"students"`
	Homework    []Homework         `json:"homework"`
	Submissions []SubmissionRecord `json:"submissions"`
	Settings    AppSettings        `json:"settings"`
}
