package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"classsync/internal/model"
)

// ── 统计计算（纯函数） ─────────────────────────────────────────
//
// 输入为同一租户的 名册/宿题/提交记录 与 当天日期。
// 没有记录一律视为未提交；分子只统计当前名册中的学生，保证比率落在 [0,100]。
// 按日区分时，只有“今日未提交”看归属当天的记录；确认率、宿题明细与积压跨日统计。
// ─────────────────────────────────────────────────────────────

// ReportInput 统计输入
type ReportInput struct {
	Students  []model.Student
	Homework  []model.Homework
	Records   []model.SubmissionRecord
	Today     time.Time
	DayScoped bool
}

// HomeworkBreakdown 单个宿题的提交/确认情况
type HomeworkBreakdown struct {
	HomeworkID        int64  `json:"homeworkId"`
	Title             string `json:"title"`
	Days              string `json:"days"`
	Submitted         int    `json:"submitted"`
	Checked           int    `json:"checked"`
	StudentCount      int    `json:"studentCount"`
	SubmittedFraction string `json:"submittedFraction"`
	CheckedFraction   string `json:"checkedFraction"`
	Rate              int    `json:"rate"`
}

// UnsubmittedGroup 某个当天到期宿题的未提交学生（按出席号排序）
type UnsubmittedGroup struct {
	Homework model.Homework  `json:"homework"`
	Students []model.Student `json:"students"`
}

// StudentBacklog 学生的累计未提交宿题
type StudentBacklog struct {
	Student model.Student    `json:"student"`
	Missing []model.Homework `json:"missing"`
	Count   int              `json:"count"`
}

// Dashboard 仪表盘汇总
type Dashboard struct {
	StudentCount  int                 `json:"studentCount"`
	HomeworkCount int                 `json:"homeworkCount"`
	CheckedRate   int                 `json:"checkedRate"`
	TodayRate     int                 `json:"todayRate"`
	DueToday      []model.Homework    `json:"dueToday"`
	Breakdown     []HomeworkBreakdown `json:"breakdown"`
}

type pairKey struct {
	homeworkID int64
	studentID  int64
}

// ledgerIndex 提交记录索引
type ledgerIndex struct {
	touched      map[pairKey]bool // 今日未提交视图：按日区分时只看当天记录
	touchedEver  map[pairKey]bool // 任意日期已提交
	checkedEver  map[pairKey]bool // 任意日期已确认
	touchedToday map[pairKey]bool // 提交日为当天
}

func buildIndex(in ReportInput) ledgerIndex {
	today := model.FormatDate(in.Today)
	idx := ledgerIndex{
		touched:      make(map[pairKey]bool),
		touchedEver:  make(map[pairKey]bool),
		checkedEver:  make(map[pairKey]bool),
		touchedToday: make(map[pairKey]bool),
	}
	for i := range in.Records {
		r := &in.Records[i]
		k := pairKey{r.HomeworkID, r.StudentID}
		if r.TouchRecorded {
			idx.touchedEver[k] = true
		}
		if r.Checked {
			idx.checkedEver[k] = true
		}
		if r.TouchedOn(today) {
			idx.touchedToday[k] = true
		}
		if r.TouchRecorded && (!in.DayScoped || ledgerDay(r) == today) {
			idx.touched[k] = true
		}
	}
	return idx
}

func countStudents(set map[pairKey]bool, homeworkID int64, students []model.Student) int {
	n := 0
	for _, st := range students {
		if set[pairKey{homeworkID, st.ID}] {
			n++
		}
	}
	return n
}

// roundPercent 四舍五入到整数百分比
func roundPercent(v float64) int {
	return int(math.Floor(v + 0.5))
}

func percent(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

// CheckedRate 各宿题确认率的平均值；无宿题或无学生时为 0
func CheckedRate(in ReportInput) int {
	if len(in.Homework) == 0 || len(in.Students) == 0 {
		return 0
	}
	idx := buildIndex(in)
	total := 0.0
	for _, hw := range in.Homework {
		total += percent(countStudents(idx.checkedEver, hw.ID, in.Students), len(in.Students))
	}
	return roundPercent(total / float64(len(in.Homework)))
}

// TodayDue 当天到期的宿题
func TodayDue(in ReportInput) []model.Homework {
	return DueOn(in.Homework, in.Today)
}

// TodayCompletionRate 当天到期宿题的提交率；无到期宿题或无学生时为 0
func TodayCompletionRate(in ReportInput) int {
	due := TodayDue(in)
	if len(due) == 0 || len(in.Students) == 0 {
		return 0
	}
	idx := buildIndex(in)
	count := 0
	for _, hw := range due {
		count += countStudents(idx.touchedToday, hw.ID, in.Students)
	}
	return roundPercent(percent(count, len(due)*len(in.Students)))
}

// Breakdown 逐宿题统计
func Breakdown(in ReportInput) []HomeworkBreakdown {
	idx := buildIndex(in)
	n := len(in.Students)
	out := make([]HomeworkBreakdown, 0, len(in.Homework))
	for _, hw := range in.Homework {
		submitted := countStudents(idx.touchedEver, hw.ID, in.Students)
		checked := countStudents(idx.checkedEver, hw.ID, in.Students)
		out = append(out, HomeworkBreakdown{
			HomeworkID:        hw.ID,
			Title:             hw.Title,
			Days:              FormatDays(hw.Recurrence),
			Submitted:         submitted,
			Checked:           checked,
			StudentCount:      n,
			SubmittedFraction: fmt.Sprintf("%d/%d", submitted, n),
			CheckedFraction:   fmt.Sprintf("%d/%d", checked, n),
			Rate:              roundPercent(percent(checked, n)),
		})
	}
	return out
}

// TodayUnsubmitted 当天到期宿题的未提交学生
func TodayUnsubmitted(in ReportInput) []UnsubmittedGroup {
	idx := buildIndex(in)
	roster := sortedByNumber(in.Students)
	due := TodayDue(in)

	out := make([]UnsubmittedGroup, 0, len(due))
	for _, hw := range due {
		missing := make([]model.Student, 0)
		for _, st := range roster {
			if !idx.touched[pairKey{hw.ID, st.ID}] {
				missing = append(missing, st)
			}
		}
		out = append(out, UnsubmittedGroup{Homework: hw, Students: missing})
	}
	return out
}

// Backlog 每个学生从未提交过的宿题（不限星期），按未提交数降序
func Backlog(in ReportInput) []StudentBacklog {
	idx := buildIndex(in)
	out := make([]StudentBacklog, 0)
	for _, st := range sortedByNumber(in.Students) {
		var missing []model.Homework
		for _, hw := range in.Homework {
			if !idx.touchedEver[pairKey{hw.ID, st.ID}] {
				missing = append(missing, hw)
			}
		}
		if len(missing) == 0 {
			continue
		}
		out = append(out, StudentBacklog{Student: st, Missing: missing, Count: len(missing)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// BuildDashboard 汇总仪表盘
func BuildDashboard(in ReportInput) Dashboard {
	return Dashboard{
		StudentCount:  len(in.Students),
		HomeworkCount: len(in.Homework),
		CheckedRate:   CheckedRate(in),
		TodayRate:     TodayCompletionRate(in),
		DueToday:      TodayDue(in),
		Breakdown:     Breakdown(in),
	}
}

func sortedByNumber(students []model.Student) []model.Student {
	out := make([]model.Student, len(students))
	copy(out, students)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Number < out[j].Number
	})
	return out
}
