package model

import "fmt"

// 集合键名前缀：完整键为 "{collection}_{grade}_{classId}"
const (
	CollectionStudents    = "school_students"
	CollectionHomework    = "school_homework"
	CollectionSubmissions = "school_homework_submissions"

	// SettingsKey 全局设置（不分租户）
	SettingsKey = "school_settings"
)

// Tenant 租户 = 学年 × 班级，所有名册/宿题/提交数据按租户分区
type Tenant struct {
	Grade   string `json:"grade"`
	ClassID string `json:"classId"`
}

// Key 拼出租户内集合的存储键
func (t Tenant) Key(collection string) string {
	return fmt.Sprintf("%s_%s_%s", collection, t.Grade, t.ClassID)
}

func (t Tenant) String() string {
	return t.Grade + t.ClassID
}

// Tenants 按 学年→班级 的顺序展开全部租户
func Tenants(grades, classes []string) []Tenant {
	out := make([]Tenant, 0, len(grades)*len(classes))
	for _, g := range grades {
		for _, c := range classes {
			out = append(out, Tenant{Grade: g, ClassID: c})
		}
	}
	return out
}
