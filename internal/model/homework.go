package model

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DayToken 星期标记："0".."6"（周日=0）或 "everyday"
type DayToken string

// Everyday 每天
const Everyday DayToken = "everyday"

// Valid 是否为合法标记
func (d DayToken) Valid() bool {
	if d == Everyday {
		return true
	}
	n, err := strconv.Atoi(string(d))
	return err == nil && n >= 0 && n <= 6 && len(d) == 1
}

// Weekday 具体星期；everyday 或非法值返回 false
func (d DayToken) Weekday() (time.Weekday, bool) {
	if d == Everyday || !d.Valid() {
		return 0, false
	}
	n, _ := strconv.Atoi(string(d))
	return time.Weekday(n), true
}

// WeekdayToken 由 time.Weekday 生成标记
func WeekdayToken(w time.Weekday) DayToken {
	return DayToken(strconv.Itoa(int(w)))
}

// Recurrence 宿题重复规则（星期集合）
type Recurrence []DayToken

// Contains 是否包含指定标记
func (r Recurrence) Contains(t DayToken) bool {
	for _, d := range r {
		if d == t {
			return true
		}
	}
	return false
}

// IsEveryday 是否每天
func (r Recurrence) IsEveryday() bool {
	return r.Contains(Everyday)
}

// Normalize 去重、丢弃非法标记并排序（数字在前，everyday 在后）
// 不处理 everyday 与具体星期的互斥：互斥在录入时保证，存储层需容忍
func (r Recurrence) Normalize() Recurrence {
	seen := make(map[DayToken]bool, len(r))
	out := make(Recurrence, 0, len(r))
	for _, d := range r {
		d = DayToken(strings.TrimSpace(string(d)))
		if !d.Valid() || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i] == Everyday || out[j] == Everyday {
			return out[j] == Everyday && out[i] != Everyday
		}
		return out[i] < out[j]
	})
	return out
}

// DecodeRecurrence 兼容旧数据：接受标量（"3" / 3 / "everyday"）或数组，统一转为集合
// 无法识别的内容返回空集合（视为永不到期）
func DecodeRecurrence(raw json.RawMessage) Recurrence {
	if len(raw) == 0 || string(raw) == "null" {
		return Recurrence{}
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make(Recurrence, 0, len(list))
		for _, item := range list {
			if tok, ok := decodeToken(item); ok {
				out = append(out, tok)
			}
		}
		return out.Normalize()
	}

	if tok, ok := decodeToken(raw); ok {
		return Recurrence{tok}.Normalize()
	}
	return Recurrence{}
}

func decodeToken(raw json.RawMessage) (DayToken, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return DayToken(s), true
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return DayToken(strconv.Itoa(n)), true
	}
	return "", false
}

// Homework 宿题定义
type Homework struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Recurrence  Recurrence `json:"recurrence"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
}
