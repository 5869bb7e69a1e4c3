package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"classsync/internal/model"
	"classsync/internal/repository"
	"classsync/pkg/kvstore"
	"classsync/pkg/logger"
	"classsync/pkg/metrics"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("ファイルの作成に失敗しました")

// ExportService 导出业务接口
//
// 所有导出以 bytes.Buffer 返回，附建议文件名；由 Handler / CLI 决定如何输出。
type ExportService interface {
	StudentsCSV(ctx context.Context, t model.Tenant) (*bytes.Buffer, string, error)
	SubmissionsCSV(ctx context.Context, t model.Tenant) (*bytes.Buffer, string, error)
	BacklogCSV(ctx context.Context, t model.Tenant) (*bytes.Buffer, string, error)
	// Snapshot 租户完整备份（可整体写回存储）
	Snapshot(ctx context.Context, t model.Tenant) (*model.Snapshot, error)
	SnapshotJSON(ctx context.Context, t model.Tenant) (*bytes.Buffer, string, error)
	DashboardXLSX(ctx context.Context, t model.Tenant) (*bytes.Buffer, string, error)
	CalendarICS(ctx context.Context, t model.Tenant) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo      *repository.Repository
	report    ReportService
	clock     Clock
	delimiter string
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, report ReportService, clock Clock, delimiter string, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, report: report, clock: clock, delimiter: delimiter, logger: logger}
}

// ────────────────────── CSV ──────────────────────

func (s *exportService) StudentsCSV(ctx context.Context, t model.Tenant) (*bytes.Buffer, string, error) {
	in, err := s.report.Input(ctx, t)
	if err != nil {
		return nil, "", err
	}
	metrics.Exports.WithLabelValues("students_csv").Inc()
	return bytes.NewBuffer(StudentsCSV(sortedByNumber(in.Students))), ExportFilename(ExportKindStudents, in.Today, "csv"), nil
}

func (s *exportService) SubmissionsCSV(ctx context.Context, t model.Tenant) (*bytes.Buffer, string, error) {
	in, err := s.report.Input(ctx, t)
	if err != nil {
		return nil, "", err
	}
	metrics.Exports.WithLabelValues("submissions_csv").Inc()
	return bytes.NewBuffer(SubmissionsCSV(in.Records, in.Homework)), ExportFilename(ExportKindSubmissions, in.Today, "csv"), nil
}

func (s *exportService) BacklogCSV(ctx context.Context, t model.Tenant) (*bytes.Buffer, string, error) {
	in, err := s.report.Input(ctx, t)
	if err != nil {
		return nil, "", err
	}
	metrics.Exports.WithLabelValues("backlog_csv").Inc()
	return bytes.NewBuffer(BacklogCSV(Backlog(in), s.delimiter)), ExportFilename(ExportKindBacklog, in.Today, "csv"), nil
}

// ────────────────────── Snapshot ──────────────────────

func (s *exportService) Snapshot(ctx context.Context, t model.Tenant) (*model.Snapshot, error) {
	in, err := s.report.Input(ctx, t)
	if err != nil {
		return nil, err
	}

	var settings model.AppSettings
	stored, err := s.repo.Settings.Get(ctx)
	switch {
	case err == nil:
		settings = *stored
	case errors.Is(err, kvstore.ErrNotFound):
	default:
		s.logger.Error("备份时读取设置失败", zap.Error(err))
		return nil, err
	}

	return &model.Snapshot{
		Timestamp:   in.Today.UTC().Truncate(time.Millisecond),
		Version:     model.SnapshotVersion,
		Grade:       t.Grade,
		ClassID:     t.ClassID,
		Students:    in.Students,
		Homework:    in.Homework,
		Submissions: in.Records,
		Settings:    settings,
	}, nil
}

func (s *exportService) SnapshotJSON(ctx context.Context, t model.Tenant) (*bytes.Buffer, string, error) {
	snap, err := s.Snapshot(ctx, t)
	if err != nil {
		return nil, "", err
	}
	data, err := EncodeSnapshot(snap)
	if err != nil {
		s.logger.Error("编码备份失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	metrics.Exports.WithLabelValues("snapshot").Inc()
	return bytes.NewBuffer(data), ExportFilename(ExportKindSnapshot, s.clock(), "json"), nil
}

// ═══════════════════════════════════════════════════════════
// DashboardXLSX 提交状况报表
// ═══════════════════════════════════════════════════════════
//
// Sheet：
//   - サマリー：学生数 / 宿题数 / 确认率 / 当天提交率
//   - 宿題別：  宿题名 | 曜日 | 提出 | 確認 | 確認率
//   - 本日未提出：宿题名 | 出席番号 | 名前
//   - 未提出一覧：出席番号 | 名前 | 未提出数 | 未提出の宿題

func (s *exportService) DashboardXLSX(ctx context.Context, t model.Tenant) (*bytes.Buffer, string, error) {
	in, err := s.report.Input(ctx, t)
	if err != nil {
		return nil, "", err
	}
	dash := BuildDashboard(in)

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// サマリー
	summary := "サマリー"
	f.SetSheetName("Sheet1", summary)
	f.SetColWidth(summary, "A", "A", 20)
	f.SetColWidth(summary, "B", "B", 16)
	f.SetCellValue(summary, "A1", fmt.Sprintf("%s 提出状況（%s）", t.String(), model.FormatDate(in.Today)))
	f.MergeCell(summary, "A1", "B1")
	f.SetCellStyle(summary, "A1", "B1", headerStyle)
	summaryRows := [][]interface{}{
		{"児童数", dash.StudentCount},
		{"宿題数", dash.HomeworkCount},
		{"確認率 (%)", dash.CheckedRate},
		{"本日の提出率 (%)", dash.TodayRate},
		{"本日の宿題数", len(dash.DueToday)},
	}
	for i, r := range summaryRows {
		f.SetSheetRow(summary, cell("A", i+2), &r)
	}

	// 宿題別
	breakdown := "宿題別"
	f.NewSheet(breakdown)
	writeHeader(f, breakdown, headerStyle, "宿題名", "曜日", "提出", "確認", "確認率 (%)")
	f.SetColWidth(breakdown, "A", "A", 24)
	for i, b := range dash.Breakdown {
		row := []interface{}{b.Title, b.Days, b.SubmittedFraction, b.CheckedFraction, b.Rate}
		f.SetSheetRow(breakdown, cell("A", i+2), &row)
	}

	// 本日未提出
	unsubmitted := "本日未提出"
	f.NewSheet(unsubmitted)
	writeHeader(f, unsubmitted, headerStyle, "宿題名", "出席番号", "名前")
	f.SetColWidth(unsubmitted, "A", "A", 24)
	row := 2
	for _, g := range TodayUnsubmitted(in) {
		for _, st := range g.Students {
			vals := []interface{}{g.Homework.Title, st.Number, st.Name}
			f.SetSheetRow(unsubmitted, cell("A", row), &vals)
			row++
		}
	}

	// 未提出一覧
	backlog := "未提出一覧"
	f.NewSheet(backlog)
	writeHeader(f, backlog, headerStyle, "出席番号", "名前", "未提出数", "未提出の宿題")
	f.SetColWidth(backlog, "D", "D", 48)
	for i, b := range Backlog(in) {
		titles := make([]string, 0, len(b.Missing))
		for _, hw := range b.Missing {
			titles = append(titles, hw.Title)
		}
		vals := []interface{}{b.Student.Number, b.Student.Name, b.Count, strings.Join(titles, s.delimiter)}
		f.SetSheetRow(backlog, cell("A", i+2), &vals)
	}

	f.SetActiveSheet(0)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	metrics.Exports.WithLabelValues("dashboard_xlsx").Inc()
	return buf, ExportFilename(ExportKindReport, in.Today, "xlsx"), nil
}

// ═══════════════════════════════════════════════════════════
// CalendarICS 宿题日历
// ═══════════════════════════════════════════════════════════
//
// 每个宿题一个全天重复事件：毎日 → FREQ=DAILY，其余 → FREQ=WEEKLY;BYDAY=…
// 起始日为今天起第一个到期日。没有有效星期的宿题不输出。

var icalDays = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

func (s *exportService) CalendarICS(ctx context.Context, t model.Tenant) (*bytes.Buffer, string, error) {
	in, err := s.report.Input(ctx, t)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//classsync//homework//JA")
	cal.SetName(t.String() + " 宿題")

	for _, hw := range in.Homework {
		rrule, ok := recurrenceRule(hw.Recurrence)
		if !ok {
			continue
		}
		start := firstDueDate(hw, in.Today)

		event := cal.AddEvent(fmt.Sprintf("hw-%d-%s@classsync", hw.ID, t.String()))
		event.SetCreatedTime(hw.CreatedAt)
		event.SetDtStampTime(in.Today)
		event.SetSummary(hw.Title)
		if hw.Description != "" {
			event.SetDescription(hw.Description)
		}
		event.SetAllDayStartAt(start)
		event.SetAllDayEndAt(start.AddDate(0, 0, 1))
		event.SetProperty(ics.ComponentPropertyRrule, rrule)
	}

	metrics.Exports.WithLabelValues("calendar_ics").Inc()
	return bytes.NewBufferString(cal.Serialize()), ExportFilename(ExportKindCalendar, in.Today, "ics"), nil
}

// recurrenceRule 星期集合 → RRULE
func recurrenceRule(r model.Recurrence) (string, bool) {
	if r.IsEveryday() {
		return "FREQ=DAILY", true
	}
	days := make([]string, 0, len(r))
	for _, d := range r.Normalize() {
		if w, ok := d.Weekday(); ok {
			days = append(days, icalDays[w])
		}
	}
	if len(days) == 0 {
		return "", false
	}
	return "FREQ=WEEKLY;BYDAY=" + strings.Join(days, ","), true
}

// firstDueDate 今天起（含今天）第一个到期日
func firstDueDate(hw model.Homework, today time.Time) time.Time {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	for i := 0; i < 7; i++ {
		if IsDueOn(hw, day) {
			return day
		}
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// ── 辅助函数 ──

func writeHeader(f *excelize.File, sheet string, style int, titles ...string) {
	for i, title := range titles {
		f.SetCellValue(sheet, cell(colName(i), 1), title)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(titles)-1), 1), style)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
