package model

import "time"

// Student 学生（名册）
// Number 为出席号，CardID 为卡号，二者在租户内唯一
type Student struct {
	ID        int64     `json:"id"`
	Number    int       `json:"number"`
	Name      string    `json:"name"`
	CardID    string    `json:"cardId"`
	Grade     string    `json:"grade"`
	ClassID   string    `json:"classId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Tenant 学生所属租户
func (s Student) Tenant() Tenant {
	return Tenant{Grade: s.Grade, ClassID: s.ClassID}
}
