package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"classsync/internal/model"
)

func names(students []model.Student) []string {
	out := make([]string, 0, len(students))
	for _, st := range students {
		out = append(out, st.Name)
	}
	return out
}

func TestReport_Scenario_TouchThenCheck(t *testing.T) {
	for _, scoped := range []bool{true, false} {
		env := newTestEnv()
		env.seedAB(t)
		ledger := env.ledger(scoped)
		report := env.report(scoped)
		ctx := context.Background()

		// 初始：无提交
		in, err := report.Input(ctx, testTenant)
		if err != nil {
			t.Fatalf("Input 应成功: %v", err)
		}
		groups := TodayUnsubmitted(in)
		if len(groups) != 1 || !cmp.Equal(names(groups[0].Students), []string{"A", "B"}) {
			t.Fatalf("scoped=%v 初始未提交应为 [A B]，实际 %+v", scoped, groups)
		}
		if rate := TodayCompletionRate(in); rate != 0 {
			t.Errorf("scoped=%v 初始提交率应为 0，实际 %d", scoped, rate)
		}

		// A 提交
		_ = ledger.RecordTouch(ctx, testTenant, 1, 1, testNow)
		in, _ = report.Input(ctx, testTenant)
		groups = TodayUnsubmitted(in)
		if diff := cmp.Diff([]string{"B"}, names(groups[0].Students)); diff != "" {
			t.Errorf("scoped=%v 未提交名单不符 (-want +got):\n%s", scoped, diff)
		}
		bd := Breakdown(in)
		if bd[0].SubmittedFraction != "1/2" {
			t.Errorf("scoped=%v 期望提交 1/2，实际 %s", scoped, bd[0].SubmittedFraction)
		}
		if rate := TodayCompletionRate(in); rate != 50 {
			t.Errorf("scoped=%v 期望提交率 50，实际 %d", scoped, rate)
		}

		// 教师确认 → 50；再次切换 → 0
		_ = ledger.ToggleCheck(ctx, testTenant, 1, 1, testNow)
		in, _ = report.Input(ctx, testTenant)
		if rate := CheckedRate(in); rate != 50 {
			t.Errorf("scoped=%v 期望确认率 50，实际 %d", scoped, rate)
		}
		_ = ledger.ToggleCheck(ctx, testTenant, 1, 1, testNow)
		in, _ = report.Input(ctx, testTenant)
		if rate := CheckedRate(in); rate != 0 {
			t.Errorf("scoped=%v 期望确认率 0，实际 %d", scoped, rate)
		}
		if !in.Records[0].TouchRecorded {
			t.Errorf("scoped=%v 切换确认不应改变提交字段", scoped)
		}
	}
}

func TestReport_ZeroDenominators(t *testing.T) {
	empty := ReportInput{Today: testNow}
	if CheckedRate(empty) != 0 || TodayCompletionRate(empty) != 0 {
		t.Error("无学生无宿题时比率应为 0")
	}

	noStudents := ReportInput{
		Homework: []model.Homework{{ID: 1, Title: "H1", Recurrence: model.Recurrence{model.Everyday}}},
		Today:    testNow,
	}
	if CheckedRate(noStudents) != 0 || TodayCompletionRate(noStudents) != 0 {
		t.Error("无学生时比率应为 0")
	}
	if bd := Breakdown(noStudents); bd[0].Rate != 0 || bd[0].SubmittedFraction != "0/0" {
		t.Errorf("无学生时宿题统计不符: %+v", bd[0])
	}

	notDue := ReportInput{
		Students: []model.Student{{ID: 1, Number: 1, Name: "A"}},
		Homework: []model.Homework{{ID: 1, Title: "H1", Recurrence: model.Recurrence{"4"}}},
		Today:    testNow,
	}
	if TodayCompletionRate(notDue) != 0 {
		t.Error("当天无到期宿题时提交率应为 0")
	}
	if len(TodayUnsubmitted(notDue)) != 0 {
		t.Error("当天无到期宿题时不应有未提交分组")
	}
}

func TestReport_RoundHalfUp(t *testing.T) {
	students := []model.Student{{ID: 1, Number: 1}, {ID: 2, Number: 2}, {ID: 3, Number: 3}}
	homework := []model.Homework{
		{ID: 1, Recurrence: model.Recurrence{model.Everyday}},
		{ID: 2, Recurrence: model.Recurrence{model.Everyday}},
	}
	checked := model.SubmissionRecord{HomeworkID: 1, StudentID: 1, Checked: true}
	in := ReportInput{Students: students, Homework: homework, Records: []model.SubmissionRecord{checked}, Today: testNow}

	// (33.33 + 0) / 2 = 16.67 → 17
	if got := CheckedRate(in); got != 17 {
		t.Errorf("期望 17，实际 %d", got)
	}
	if roundPercent(12.5) != 13 || roundPercent(12.49) != 12 {
		t.Error("应四舍五入")
	}
}

func TestReport_OrphanRowsNotCounted(t *testing.T) {
	date := model.FormatDate(testNow)
	in := ReportInput{
		Students: []model.Student{{ID: 1, Number: 1, Name: "A"}},
		Homework: []model.Homework{{ID: 1, Title: "H1", Recurrence: model.Recurrence{model.Everyday}}},
		Records: []model.SubmissionRecord{
			{HomeworkID: 1, StudentID: 1, TouchRecorded: true, TouchDate: &date, Checked: true, SubmittedDate: &date},
			{HomeworkID: 1, StudentID: 99, TouchRecorded: true, TouchDate: &date, Checked: true, SubmittedDate: &date},
		},
		Today:     testNow,
		DayScoped: true,
	}
	if got := CheckedRate(in); got != 100 {
		t.Errorf("已删除学生的记录不应计入，期望 100，实际 %d", got)
	}
	if got := TodayCompletionRate(in); got != 100 {
		t.Errorf("期望 100，实际 %d", got)
	}
}

func TestReport_DayScopedTodayViewOnly(t *testing.T) {
	yesterday := model.FormatDate(testNow.AddDate(0, 0, -1))
	in := ReportInput{
		Students: []model.Student{{ID: 1, Number: 1, Name: "A"}},
		Homework: []model.Homework{{ID: 1, Title: "H1", Recurrence: model.Recurrence{model.Everyday}}},
		Records: []model.SubmissionRecord{
			{HomeworkID: 1, StudentID: 1, TouchRecorded: true, TouchDate: &yesterday, Checked: true, SubmittedDate: &yesterday},
		},
		Today:     testNow,
		DayScoped: true,
	}

	if got := names(TodayUnsubmitted(in)[0].Students); !cmp.Equal(got, []string{"A"}) {
		t.Errorf("昨天的提交不算今天，实际 %v", got)
	}
	if got := CheckedRate(in); got != 100 {
		t.Errorf("确认率跨日统计，期望 100，实际 %d", got)
	}
	if got := Breakdown(in)[0]; got.Submitted != 1 || got.Checked != 1 {
		t.Errorf("宿题明细跨日统计，实际 %+v", got)
	}
	if len(Backlog(in)) != 0 {
		t.Error("积压统计不限日期，昨天已提交不应算积压")
	}

	in.DayScoped = false
	if len(TodayUnsubmitted(in)[0].Students) != 0 {
		t.Error("不按日记录时任意一天的提交都算已提交")
	}
}

func TestReport_DayScopedMondayHomeworkOnTuesday(t *testing.T) {
	monday := time.Date(2026, 10, 12, 16, 0, 0, 0, testNow.Location())
	tuesday := monday.AddDate(0, 0, 1)
	date := model.FormatDate(monday)
	in := ReportInput{
		Students: []model.Student{{ID: 1, Number: 1, Name: "A"}},
		Homework: []model.Homework{{ID: 1, Title: "月曜", Recurrence: model.Recurrence{model.WeekdayToken(time.Monday)}}},
		Records: []model.SubmissionRecord{
			{HomeworkID: 1, StudentID: 1, TouchRecorded: true, TouchDate: &date, Checked: true, SubmittedDate: &date},
		},
		Today:     tuesday,
		DayScoped: true,
	}

	if got := CheckedRate(in); got != 100 {
		t.Errorf("月曜的确认在火曜仍有效，期望 100，实际 %d", got)
	}
	want := []HomeworkBreakdown{{
		HomeworkID: 1, Title: "月曜", Days: FormatDays(in.Homework[0].Recurrence),
		Submitted: 1, Checked: 1, StudentCount: 1,
		SubmittedFraction: "1/1", CheckedFraction: "1/1", Rate: 100,
	}}
	if diff := cmp.Diff(want, Breakdown(in)); diff != "" {
		t.Errorf("Breakdown 不符 (-want +got):\n%s", diff)
	}
}

func TestReport_BacklogOrdering(t *testing.T) {
	date := model.FormatDate(testNow)
	touched := func(hw, st int64) model.SubmissionRecord {
		return model.SubmissionRecord{HomeworkID: hw, StudentID: st, TouchRecorded: true, TouchDate: &date}
	}
	in := ReportInput{
		Students: []model.Student{
			{ID: 30, Number: 3, Name: "C"},
			{ID: 10, Number: 1, Name: "A"},
			{ID: 20, Number: 2, Name: "B"},
			{ID: 40, Number: 4, Name: "D"},
		},
		Homework: []model.Homework{
			{ID: 1, Title: "算数", Recurrence: model.Recurrence{model.Everyday}},
			{ID: 2, Title: "漢字", Recurrence: model.Recurrence{"1"}},
			{ID: 3, Title: "音読", Recurrence: model.Recurrence{"5"}},
		},
		Records: []model.SubmissionRecord{
			// A 全部提交，B 缺 2，C 缺 3，D 缺 1
			touched(1, 10), touched(2, 10), touched(3, 10),
			touched(1, 20),
			touched(1, 40), touched(2, 40),
		},
		Today: testNow,
	}

	got := Backlog(in)
	type row struct {
		Name  string
		Count int
	}
	var rows []row
	for _, b := range got {
		rows = append(rows, row{b.Student.Name, b.Count})
	}
	want := []row{{"C", 3}, {"B", 2}, {"D", 1}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("积压排序不符 (-want +got):\n%s", diff)
	}
	if got[1].Missing[0].Title != "漢字" || got[1].Missing[1].Title != "音読" {
		t.Errorf("B 的缺交宿题不符: %+v", got[1].Missing)
	}
}

func TestBuildDashboard(t *testing.T) {
	env := newTestEnv()
	env.seedAB(t)
	_ = env.ledger(true).RecordTouch(context.Background(), testTenant, 1, 2, testNow)

	d, err := env.report(true).Dashboard(context.Background(), testTenant)
	if err != nil {
		t.Fatalf("Dashboard 应成功: %v", err)
	}
	want := []HomeworkBreakdown{{
		HomeworkID:        1,
		Title:             "H1",
		Days:              "毎日",
		Submitted:         1,
		Checked:           0,
		StudentCount:      2,
		SubmittedFraction: "1/2",
		CheckedFraction:   "0/2",
		Rate:              0,
	}}
	if diff := cmp.Diff(want, d.Breakdown); diff != "" {
		t.Errorf("宿题统计不符 (-want +got):\n%s", diff)
	}
	if d.StudentCount != 2 || d.HomeworkCount != 1 || d.TodayRate != 50 || len(d.DueToday) != 1 {
		t.Errorf("仪表盘汇总不符: %+v", d)
	}
}
