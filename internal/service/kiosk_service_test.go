package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"classsync/internal/dto"
	"classsync/internal/model"
)

func setupTestKioskService(t *testing.T, dayScoped bool) (KioskService, *testEnv) {
	t.Helper()
	env := newTestEnv()
	env.seed(t, testTenant,
		[]model.Student{{ID: 1, Number: 1, Name: "A", CardID: "X"}},
		[]model.Homework{
			{ID: 1, Title: "算数プリント", Recurrence: model.Recurrence{model.Everyday}},
			{ID: 2, Title: "漢字練習", Recurrence: model.Recurrence{"1", "3", "5"}},
			{ID: 3, Title: "理科", Recurrence: model.Recurrence{"4"}},
		},
	)
	identity := NewIdentityService(env.repo, identityTenants, zap.NewNop())
	svc := NewKioskService(env.repo, identity, env.ledger(dayScoped), env.clock.Now, dayScoped, zap.NewNop())
	return svc, env
}

func TestKioskService_Lookup(t *testing.T) {
	svc, _ := setupTestKioskService(t, true)

	res, err := svc.Lookup(context.Background(), "X")
	if err != nil {
		t.Fatalf("Lookup 应成功: %v", err)
	}
	if res.Student.Name != "A" || res.Tenant.Label != "1年い組" {
		t.Errorf("学生信息不符: %+v", res)
	}
	if len(res.Items) != 2 || res.Remaining != 2 {
		t.Errorf("星期三应有 2 个到期宿题，实际 %+v", res.Items)
	}
}

func TestKioskService_Submit_Selected(t *testing.T) {
	svc, env := setupTestKioskService(t, true)
	ctx := context.Background()

	res, err := svc.Submit(ctx, "X", &dto.KioskSubmitRequest{HomeworkIDs: []int64{2, 3}})
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	if len(res.Submitted) != 1 || res.Submitted[0] != "漢字練習" || res.Remaining != 1 {
		t.Errorf("只应提交当天到期的 漢字練習: %+v", res)
	}
	if n := len(env.records(t, testTenant)); n != 1 {
		t.Errorf("期望 1 条记录，实际 %d", n)
	}
}

func TestKioskService_Submit_All(t *testing.T) {
	svc, env := setupTestKioskService(t, true)
	ctx := context.Background()
	_, _ = svc.Submit(ctx, "X", &dto.KioskSubmitRequest{HomeworkIDs: []int64{1}})
	before := env.store.sets.Load()

	res, err := svc.Submit(ctx, "X", &dto.KioskSubmitRequest{All: true})
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	if len(res.Submitted) != 1 || res.Remaining != 0 {
		t.Errorf("应只提交剩余的 1 个: %+v", res)
	}
	if n := env.store.sets.Load() - before; n != 1 {
		t.Errorf("全部提交应只写一次存储，实际 %d", n)
	}

	lookup, _ := svc.Lookup(ctx, "X")
	if lookup.Remaining != 0 {
		t.Errorf("全部提交后应无剩余，实际 %d", lookup.Remaining)
	}

	// 第二天重新开始
	env.clock.now = testNow.AddDate(0, 0, 1)
	lookup, _ = svc.Lookup(ctx, "X")
	if lookup.Remaining != 2 {
		t.Errorf("星期四应有 2 个未提交，实际 %d", lookup.Remaining)
	}
}

func TestKioskService_Submit_NothingSelected(t *testing.T) {
	svc, _ := setupTestKioskService(t, true)
	_, err := svc.Submit(context.Background(), "X", &dto.KioskSubmitRequest{})
	if !errors.Is(err, ErrNothingSelected) {
		t.Errorf("期望 ErrNothingSelected，实际: %v", err)
	}
}

func TestKioskService_UnknownCard(t *testing.T) {
	svc, _ := setupTestKioskService(t, true)
	_, err := svc.Lookup(context.Background(), "NOPE")
	if !errors.Is(err, ErrCardNotFound) {
		t.Errorf("期望 ErrCardNotFound，实际: %v", err)
	}
}
