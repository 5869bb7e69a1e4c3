package repository

import (
	"context"
	"testing"
	"time"

	"classsync/internal/model"
	"classsync/pkg/kvstore"
)

var testTenant = model.Tenant{Grade: "3年", ClassID: "ろ組"}

func TestHomeworkRepo_NormalizesLegacyRecurrence(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	legacy := `[
		{"id":1,"title":"算数プリント","dayOfWeek":"everyday","description":"","createdAt":"2025-04-01T00:00:00.000Z"},
		{"id":2,"title":"漢字練習","dayOfWeek":["1","3","5"],"description":"","createdAt":"2025-04-01T00:00:00.000Z"},
		{"id":3,"title":"音読","recurrence":"2","description":"","createdAt":"2025-04-01T00:00:00.000Z"},
		{"id":4,"title":"壊れた","recurrence":{},"description":""}
	]`
	if err := store.Set(ctx, testTenant.Key(model.CollectionHomework), []byte(legacy)); err != nil {
		t.Fatal(err)
	}

	repo := NewHomeworkRepo(store)
	list, err := repo.List(ctx, testTenant)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("期望 4 条，实际 %d", len(list))
	}
	if !list[0].Recurrence.IsEveryday() {
		t.Errorf("标量 everyday 应转为集合，实际 %v", list[0].Recurrence)
	}
	if len(list[1].Recurrence) != 3 {
		t.Errorf("旧 dayOfWeek 数组应保留，实际 %v", list[1].Recurrence)
	}
	if len(list[2].Recurrence) != 1 || list[2].Recurrence[0] != "2" {
		t.Errorf("标量 recurrence 应转为单元素集合，实际 %v", list[2].Recurrence)
	}
	if len(list[3].Recurrence) != 0 {
		t.Errorf("无法识别的规则应为空集合，实际 %v", list[3].Recurrence)
	}

	// 写回后为统一结构
	if err := repo.Save(ctx, testTenant, list); err != nil {
		t.Fatalf("Save 应成功: %v", err)
	}
	again, _ := repo.List(ctx, testTenant)
	if len(again[1].Recurrence) != 3 || again[1].Recurrence[2] != "5" {
		t.Errorf("写回后规则不符: %v", again[1].Recurrence)
	}
}

func TestStudentRepo_LegacyNfcIDAndTenantFill(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	legacy := `[{"id":10,"number":1,"name":"たろう","nfcId":"NFC001","createdAt":"2025-04-01T00:00:00Z"}]`
	_ = store.Set(ctx, testTenant.Key(model.CollectionStudents), []byte(legacy))

	list, err := NewStudentRepo(store).List(ctx, testTenant)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if list[0].CardID != "NFC001" {
		t.Errorf("期望 nfcId 迁移为 cardId，实际 %q", list[0].CardID)
	}
	if list[0].Grade != "3年" || list[0].ClassID != "ろ組" {
		t.Errorf("应补全租户信息，实际 %s/%s", list[0].Grade, list[0].ClassID)
	}
}

func TestSubmissionRepo_RoundTripAndClear(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repo := NewSubmissionRepo(store)

	empty, err := repo.List(ctx, testTenant)
	if err != nil || len(empty) != 0 {
		t.Fatalf("空集合应返回空列表: %v %v", empty, err)
	}

	rec := model.NewSubmissionRecord("sub_1_10", 1, model.Student{ID: 10, Number: 1, Name: "たろう", CardID: "NFC001"})
	rec.SetTouch(time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC))
	if err := repo.Save(ctx, testTenant, []model.SubmissionRecord{rec}); err != nil {
		t.Fatal(err)
	}

	list, _ := repo.List(ctx, testTenant)
	if len(list) != 1 || !list[0].TouchedOn("2026-10-16") || list[0].CardID != "NFC001" {
		t.Errorf("读回记录不符: %+v", list)
	}

	if err := repo.Clear(ctx, testTenant); err != nil {
		t.Fatal(err)
	}
	list, _ = repo.List(ctx, testTenant)
	if len(list) != 0 {
		t.Error("Clear 后应为空")
	}
}

func TestSettingsRepo_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepo(kvstore.NewMemoryStore())

	if _, err := repo.Get(ctx); err != kvstore.ErrNotFound {
		t.Errorf("期望 ErrNotFound，实际 %v", err)
	}
	if err := repo.Save(ctx, &model.AppSettings{Password: "h"}); err != nil {
		t.Fatal(err)
	}
	got, err := repo.Get(ctx)
	if err != nil || got.Password != "h" {
		t.Errorf("读回设置不符: %+v %v", got, err)
	}
}

func TestTenantIsolation(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repo := NewRepository(store)

	other := model.Tenant{Grade: "3年", ClassID: "い組"}
	_ = repo.Student.Save(ctx, testTenant, []model.Student{{ID: 1, Number: 1, Name: "A", CardID: "X"}})

	list, _ := repo.Student.List(ctx, other)
	if len(list) != 0 {
		t.Error("不同租户的数据不应互相可见")
	}
}
