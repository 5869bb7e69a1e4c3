package service

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"classsync/internal/model"
)

// ── 导出格式（纯函数） ────────────────────────────────────────
//
// CSV：UTF-8 + BOM，逗号分隔，换行 "\n"；表头原样输出，数据字段一律加双引号，
// 内部双引号写成两个。表格软件据 BOM 识别编码。
// ─────────────────────────────────────────────────────────────

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// 导出文件名前缀
const (
	ExportKindStudents    = "児童一覧"
	ExportKindSubmissions = "提出状況データ"
	ExportKindBacklog     = "未提出一覧"
	ExportKindSnapshot    = "backup"
	ExportKindReport      = "提出状況レポート"
	ExportKindCalendar    = "宿題カレンダー"
)

// ExportFilename 生成 "{kind}_YYYY-MM-DD.{ext}"
func ExportFilename(kind string, now time.Time, ext string) string {
	return kind + "_" + model.FormatDate(now) + "." + ext
}

// EncodeCSV 编码 CSV（含 BOM）
func EncodeCSV(header []string, rows [][]string) []byte {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	buf.WriteString(strings.Join(header, ","))
	for _, row := range rows {
		buf.WriteByte('\n')
		for i, field := range row {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
			buf.WriteByte('"')
		}
	}
	return buf.Bytes()
}

// StudentsCSV 名册
func StudentsCSV(students []model.Student) []byte {
	rows := make([][]string, 0, len(students))
	for _, st := range students {
		rows = append(rows, []string{strconv.Itoa(st.Number), st.Name, st.CardID})
	}
	return EncodeCSV([]string{"出席番号", "名前", "NFC ID"}, rows)
}

// SubmissionsCSV 提交记录；已删除宿题的记录显示为 不明
func SubmissionsCSV(records []model.SubmissionRecord, homework []model.Homework) []byte {
	titles := make(map[int64]string, len(homework))
	for _, hw := range homework {
		titles[hw.ID] = hw.Title
	}

	rows := make([][]string, 0, len(records))
	for i := range records {
		r := &records[i]
		title, ok := titles[r.HomeworkID]
		if !ok || title == "" {
			title = "不明"
		}
		state := "未確認"
		if r.Checked {
			state = "確認済"
		}
		rows = append(rows, []string{
			title,
			strconv.Itoa(r.StudentNumber),
			r.StudentName,
			orDash(r.TouchDate),
			orDash(r.TouchTime),
			state,
			orDash(r.SubmittedDate),
		})
	}
	return EncodeCSV([]string{"宿題名", "出席番号", "名前", "提出日", "提出時刻", "状態", "確認日"}, rows)
}

// BacklogCSV 未提交一览；宿题名以 delimiter 连接
func BacklogCSV(backlog []StudentBacklog, delimiter string) []byte {
	rows := make([][]string, 0, len(backlog))
	for _, b := range backlog {
		titles := make([]string, 0, len(b.Missing))
		for _, hw := range b.Missing {
			titles = append(titles, hw.Title)
		}
		rows = append(rows, []string{
			strconv.Itoa(b.Student.Number),
			b.Student.Name,
			strconv.Itoa(b.Count),
			strings.Join(titles, delimiter),
		})
	}
	return EncodeCSV([]string{"出席番号", "名前", "未提出数", "未提出の宿題"}, rows)
}

// EncodeSnapshot 备份 JSON（两空格缩进）
func EncodeSnapshot(snap *model.Snapshot) ([]byte, error) {
	return json.MarshalIndent(snap, "", "  ")
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
