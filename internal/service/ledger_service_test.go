package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	"classsync/internal/model"
)

// ── RecordTouch 测试 ──

func TestLedgerService_RecordTouch_CreatesSnapshotRow(t *testing.T) {
	env := newTestEnv()
	env.seedAB(t)
	svc := env.ledger(true)

	if err := svc.RecordTouch(context.Background(), testTenant, 1, 1, testNow); err != nil {
		t.Fatalf("RecordTouch 应成功: %v", err)
	}

	recs := env.records(t, testTenant)
	if len(recs) != 1 {
		t.Fatalf("期望 1 条记录，实际 %d", len(recs))
	}
	r := recs[0]
	if r.ID != "sub_1_1_20261014" {
		t.Errorf("期望 ID=sub_1_1_20261014，实际=%s", r.ID)
	}
	if r.StudentName != "A" || r.StudentNumber != 1 || r.CardID != "X" {
		t.Errorf("学生快照不符: %+v", r)
	}
	if !r.TouchRecorded || r.TouchDate == nil || *r.TouchDate != "2026-10-14" || *r.TouchTime != "08:30:00" {
		t.Errorf("提交字段不符: %+v", r)
	}
	if r.Checked || r.CheckedAt != nil {
		t.Error("新记录不应为已确认")
	}
}

func TestLedgerService_RecordTouch_Idempotent(t *testing.T) {
	env := newTestEnv()
	env.seedAB(t)
	svc := env.ledger(true)
	ctx := context.Background()

	if err := svc.RecordTouch(ctx, testTenant, 1, 1, testNow); err != nil {
		t.Fatal(err)
	}
	once := env.records(t, testTenant)
	if err := svc.RecordTouch(ctx, testTenant, 1, 1, testNow); err != nil {
		t.Fatal(err)
	}
	twice := env.records(t, testTenant)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("重复提交结果应相同\n一次: %+v\n两次: %+v", once, twice)
	}
}

func TestLedgerService_RecordTouch_UnknownIDsNoop(t *testing.T) {
	env := newTestEnv()
	env.seedAB(t)
	svc := env.ledger(true)
	ctx := context.Background()
	before := env.store.sets.Load()

	if err := svc.RecordTouch(ctx, testTenant, 99, 1, testNow); err != nil {
		t.Errorf("未知宿题不应报错: %v", err)
	}
	if err := svc.RecordTouch(ctx, testTenant, 1, 99, testNow); err != nil {
		t.Errorf("未知学生不应报错: %v", err)
	}
	if err := svc.ToggleCheck(ctx, testTenant, 99, 99, testNow); err != nil {
		t.Errorf("未知 ID 确认不应报错: %v", err)
	}
	if err := svc.CancelTouch(ctx, testTenant, 1, 99); err != nil {
		t.Errorf("未知 ID 取消不应报错: %v", err)
	}

	if env.store.sets.Load() != before {
		t.Error("未知 ID 不应写入存储")
	}
	if len(env.records(t, testTenant)) != 0 {
		t.Error("未知 ID 不应产生记录")
	}
}

func TestLedgerService_RecordTouch_DayScopedNewRowNextDay(t *testing.T) {
	env := newTestEnv()
	env.seedAB(t)
	svc := env.ledger(true)
	ctx := context.Background()

	_ = svc.RecordTouch(ctx, testTenant, 1, 1, testNow)
	_ = svc.RecordTouch(ctx, testTenant, 1, 1, testNow.AddDate(0, 0, 1))

	recs := env.records(t, testTenant)
	if len(recs) != 2 {
		t.Fatalf("按日记录时每天一条，期望 2 条，实际 %d", len(recs))
	}
	if *recs[0].TouchDate != "2026-10-14" || *recs[1].TouchDate != "2026-10-15" {
		t.Errorf("前一天的记录不应被修改: %s %s", *recs[0].TouchDate, *recs[1].TouchDate)
	}
}

func TestLedgerService_RecordTouch_UnscopedOverwrites(t *testing.T) {
	env := newTestEnv()
	env.seedAB(t)
	svc := env.ledger(false)
	ctx := context.Background()

	_ = svc.RecordTouch(ctx, testTenant, 1, 1, testNow)
	_ = svc.RecordTouch(ctx, testTenant, 1, 1, testNow.AddDate(0, 0, 1))

	recs := env.records(t, testTenant)
	if len(recs) != 1 {
		t.Fatalf("不按日记录时只有一条，实际 %d", len(recs))
	}
	if recs[0].ID != "sub_1_1" || *recs[0].TouchDate != "2026-10-15" {
		t.Errorf("应覆盖为最新提交: %s %s", recs[0].ID, *recs[0].TouchDate)
	}
}

// ── ToggleCheck 测试 ──

func TestLedgerService_ToggleCheck_BeforeTouch(t *testing.T) {
	env := newTestEnv()
	env.seedAB(t)
	svc := env.ledger(true)

	if err := svc.ToggleCheck(context.Background(), testTenant, 1, 2, testNow); err != nil {
		t.Fatalf("ToggleCheck 应成功: %v", err)
	}
	recs := env.records(t, testTenant)
	if len(recs) != 1 {
		t.Fatalf("期望 1 条记录，实际 %d", len(recs))
	}
	r := recs[0]
	if !r.Checked || r.TouchRecorded || r.TouchDate != nil {
		t.Errorf("应为未提交但已确认: %+v", r)
	}
	if r.SubmittedDate == nil || *r.SubmittedDate != "2026-10-14" || r.CheckedAt == nil {
		t.Errorf("确认时间未写入: %+v", r)
	}
}

func TestLedgerService_ToggleCheck_NextDay(t *testing.T) {
	env := newTestEnv()
	env.seedAB(t)
	svc := env.ledger(true)
	ctx := context.Background()
	yesterday := testNow.AddDate(0, 0, -1)

	if err := svc.RecordTouch(ctx, testTenant, 1, 1, yesterday); err != nil {
		t.Fatalf("RecordTouch 应成功: %v", err)
	}
	if err := svc.ToggleCheck(ctx, testTenant, 1, 1, testNow); err != nil {
		t.Fatalf("ToggleCheck 应成功: %v", err)
	}

	recs := env.records(t, testTenant)
	if len(recs) != 1 {
		t.Fatalf("隔天确认不应新建记录，实际 %d 条: %+v", len(recs), recs)
	}
	r := recs[0]
	if r.ID != "sub_1_1_20261013" || !r.TouchedOn("2026-10-13") || !r.Checked {
		t.Errorf("确认应落在前一天的提交记录上: %+v", r)
	}

	// 再次切换取消同一条记录的确认
	if err := svc.ToggleCheck(ctx, testTenant, 1, 1, testNow); err != nil {
		t.Fatalf("ToggleCheck 应成功: %v", err)
	}
	recs = env.records(t, testTenant)
	if len(recs) != 1 || recs[0].Checked || !recs[0].TouchRecorded {
		t.Errorf("应仅取消确认，提交保留: %+v", recs)
	}
}

func TestLedgerService_ToggleCheck_IsOwnInverse(t *testing.T) {
	for _, scoped := range []bool{true, false} {
		env := newTestEnv()
		env.seedAB(t)
		svc := env.ledger(scoped)
		ctx := context.Background()

		_ = svc.RecordTouch(ctx, testTenant, 1, 1, testNow)
		before := env.records(t, testTenant)[0]

		later := testNow.Add(10 * time.Minute)
		_ = svc.ToggleCheck(ctx, testTenant, 1, 1, later)
		mid := env.records(t, testTenant)[0]
		if !mid.Checked || *mid.SubmittedTime != "08:40:00" {
			t.Errorf("scoped=%v 第一次切换应确认: %+v", scoped, mid)
		}

		_ = svc.ToggleCheck(ctx, testTenant, 1, 1, later)
		after := env.records(t, testTenant)
		if len(after) != 1 {
			t.Fatalf("scoped=%v 不应新增记录，实际 %d", scoped, len(after))
		}
		if !reflect.DeepEqual(before, after[0]) {
			t.Errorf("scoped=%v 两次切换应还原\n之前: %+v\n之后: %+v", scoped, before, after[0])
		}
	}
}

func TestLedgerService_TouchReusesPreMarkedRow(t *testing.T) {
	env := newTestEnv()
	env.seedAB(t)
	svc := env.ledger(true)
	ctx := context.Background()

	_ = svc.ToggleCheck(ctx, testTenant, 1, 1, testNow)
	_ = svc.RecordTouch(ctx, testTenant, 1, 1, testNow.Add(time.Hour))

	recs := env.records(t, testTenant)
	if len(recs) != 1 {
		t.Fatalf("当天的确认记录应被复用，实际 %d 条", len(recs))
	}
	if !recs[0].Checked || !recs[0].TouchRecorded {
		t.Errorf("应同时为已提交与已确认: %+v", recs[0])
	}
}

// ── CancelTouch 测试 ──

func TestLedgerService_CancelTouch_KeepsCheck(t *testing.T) {
	env := newTestEnv()
	env.seedAB(t)
	svc := env.ledger(false)
	ctx := context.Background()

	_ = svc.RecordTouch(ctx, testTenant, 1, 1, testNow)
	_ = svc.ToggleCheck(ctx, testTenant, 1, 1, testNow)
	if err := svc.CancelTouch(ctx, testTenant, 1, 1); err != nil {
		t.Fatalf("CancelTouch 应成功: %v", err)
	}

	r := env.records(t, testTenant)[0]
	if r.TouchRecorded || r.TouchDate != nil || r.TouchTime != nil || r.TouchRecordedAt != nil {
		t.Errorf("提交字段应清空: %+v", r)
	}
	if !r.Checked {
		t.Error("确认状态不应改变")
	}
}

// ── BulkRecordTouch 测试 ──

func TestLedgerService_BulkRecordTouch_SingleWrite(t *testing.T) {
	env := newTestEnv()
	env.seed(t, testTenant,
		[]model.Student{{ID: 1, Number: 1, Name: "A", CardID: "X"}},
		[]model.Homework{
			{ID: 1, Title: "H1", Recurrence: model.Recurrence{model.Everyday}},
			{ID: 2, Title: "H2", Recurrence: model.Recurrence{model.Everyday}},
			{ID: 3, Title: "H3", Recurrence: model.Recurrence{"3"}},
		},
	)
	svc := env.ledger(true)
	before := env.store.sets.Load()

	if err := svc.BulkRecordTouch(context.Background(), testTenant, []int64{1, 2, 3, 42}, 1, testNow); err != nil {
		t.Fatalf("BulkRecordTouch 应成功: %v", err)
	}

	if n := env.store.sets.Load() - before; n != 1 {
		t.Errorf("批量提交应只写一次存储，实际 %d 次", n)
	}
	if n := len(env.records(t, testTenant)); n != 3 {
		t.Errorf("期望 3 条记录（忽略未知宿题），实际 %d", n)
	}
}

func TestLedgerService_TenantsIsolated(t *testing.T) {
	env := newTestEnv()
	env.seedAB(t)
	other := model.Tenant{Grade: "2年", ClassID: "ろ組"}
	svc := env.ledger(true)

	_ = svc.RecordTouch(context.Background(), testTenant, 1, 1, testNow)

	if n := len(env.records(t, other)); n != 0 {
		t.Errorf("其他租户不应有记录，实际 %d", n)
	}
}
