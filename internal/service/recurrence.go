package service

import (
	"strings"
	"time"

	"classsync/internal/model"
)

// ── 重复规则判定 ──────────────────────────────────────────────
//
// 周日=0 … 周六=6；集合包含当天星期或 everyday 时视为到期。
// 空集合或旧格式残留的非法值一律视为“永不到期”，不返回错误。
// ─────────────────────────────────────────────────────────────

// IsDueOn 宿题在 date 当天是否需要提交
func IsDueOn(hw model.Homework, date time.Time) bool {
	if len(hw.Recurrence) == 0 {
		return false
	}
	if hw.Recurrence.IsEveryday() {
		return true
	}
	return hw.Recurrence.Contains(model.WeekdayToken(date.Weekday()))
}

// DueOn 过滤出 date 当天到期的宿题，保持原有顺序
func DueOn(homework []model.Homework, date time.Time) []model.Homework {
	out := make([]model.Homework, 0, len(homework))
	for _, hw := range homework {
		if IsDueOn(hw, date) {
			out = append(out, hw)
		}
	}
	return out
}

var dayNames = [7]string{"日", "月", "火", "水", "木", "金", "土"}

// FormatDays 星期显示文字：每天 → 毎日，否则如 月・水・金
func FormatDays(r model.Recurrence) string {
	if r.IsEveryday() {
		return "毎日"
	}
	names := make([]string, 0, len(r))
	for _, d := range r.Normalize() {
		if w, ok := d.Weekday(); ok {
			names = append(names, dayNames[w])
		}
	}
	return strings.Join(names, "・")
}

// ToggleDay 录入时切换星期
// 选择 everyday 会清空具体星期；选择具体星期会去掉 everyday
func ToggleDay(current model.Recurrence, tok model.DayToken) model.Recurrence {
	if !tok.Valid() {
		return current.Normalize()
	}
	if tok == model.Everyday {
		if current.IsEveryday() {
			return model.Recurrence{}
		}
		return model.Recurrence{model.Everyday}
	}

	out := make(model.Recurrence, 0, len(current)+1)
	removed := false
	for _, d := range current {
		switch d {
		case model.Everyday:
			continue
		case tok:
			removed = true
			continue
		}
		out = append(out, d)
	}
	if !removed {
		out = append(out, tok)
	}
	return out.Normalize()
}

// sanitizeRecurrence 录入校验：去重排序，everyday 独占
func sanitizeRecurrence(r model.Recurrence) model.Recurrence {
	n := r.Normalize()
	if n.IsEveryday() {
		return model.Recurrence{model.Everyday}
	}
	return n
}
