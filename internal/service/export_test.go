package service

import (
	"bytes"
	"strings"
	"testing"

	"classsync/internal/model"
)

func TestEncodeCSV_QuotingAndBOM(t *testing.T) {
	out := EncodeCSV([]string{"a", "b"}, [][]string{{`say "hi"`, "x,y"}})

	if !bytes.HasPrefix(out, utf8BOM) {
		t.Fatal("缺少 BOM")
	}
	want := "a,b\n\"say \"\"hi\"\"\",\"x,y\""
	if got := string(out[len(utf8BOM):]); got != want {
		t.Errorf("期望 %q，实际 %q", want, got)
	}
}

func TestSubmissionsCSV_NullsAndUnknownHomework(t *testing.T) {
	date, clock := "2026-10-14", "08:30:00"
	records := []model.SubmissionRecord{
		{HomeworkID: 1, StudentNumber: 1, StudentName: "A", TouchRecorded: true, TouchDate: &date, TouchTime: &clock, Checked: true, SubmittedDate: &date},
		{HomeworkID: 9, StudentNumber: 2, StudentName: "B"},
	}
	homework := []model.Homework{{ID: 1, Title: "H1"}}

	lines := strings.Split(string(SubmissionsCSV(records, homework)[len(utf8BOM):]), "\n")
	if lines[0] != "宿題名,出席番号,名前,提出日,提出時刻,状態,確認日" {
		t.Errorf("表头不符: %s", lines[0])
	}
	if lines[1] != `"H1","1","A","2026-10-14","08:30:00","確認済","2026-10-14"` {
		t.Errorf("第 1 行不符: %s", lines[1])
	}
	if lines[2] != `"不明","2","B","-","-","未確認","-"` {
		t.Errorf("第 2 行不符: %s", lines[2])
	}
}

func TestBacklogCSV_TwoMissing(t *testing.T) {
	in := ReportInput{
		Students: []model.Student{{ID: 1, Number: 1, Name: "A"}},
		Homework: []model.Homework{
			{ID: 1, Title: "算数プリント", Recurrence: model.Recurrence{model.Everyday}},
			{ID: 2, Title: "漢字練習", Recurrence: model.Recurrence{"1"}},
		},
		Today: testNow,
	}

	lines := strings.Split(string(BacklogCSV(Backlog(in), " / ")[len(utf8BOM):]), "\n")
	if len(lines) != 2 {
		t.Fatalf("期望表头 + 1 行，实际 %d 行", len(lines))
	}
	if lines[1] != `"1","A","2","算数プリント / 漢字練習"` {
		t.Errorf("行内容不符: %s", lines[1])
	}
}

func TestStudentsCSV(t *testing.T) {
	out := StudentsCSV([]model.Student{{Number: 1, Name: "山田 太郎", CardID: "NFC001"}})
	want := "出席番号,名前,NFC ID\n\"1\",\"山田 太郎\",\"NFC001\""
	if got := string(out[len(utf8BOM):]); got != want {
		t.Errorf("期望 %q，实际 %q", want, got)
	}
}

func TestExportFilename(t *testing.T) {
	if got := ExportFilename(ExportKindStudents, testNow, "csv"); got != "児童一覧_2026-10-14.csv" {
		t.Errorf("文件名不符: %s", got)
	}
}

func TestRecurrenceRule(t *testing.T) {
	cases := []struct {
		in   model.Recurrence
		want string
		ok   bool
	}{
		{model.Recurrence{model.Everyday}, "FREQ=DAILY", true},
		{model.Recurrence{"5", "1"}, "FREQ=WEEKLY;BYDAY=MO,FR", true},
		{model.Recurrence{}, "", false},
	}
	for _, tc := range cases {
		got, ok := recurrenceRule(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("recurrenceRule(%v)：期望 %q/%v，实际 %q/%v", tc.in, tc.want, tc.ok, got, ok)
		}
	}
}
