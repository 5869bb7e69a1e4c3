package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"classsync/config"
	"classsync/internal/model"
	"classsync/internal/repository"
	"classsync/pkg/kvstore"
)

// ── 测试辅助 ──

var (
	jst        = time.FixedZone("JST", 9*60*60)
	testTenant = model.Tenant{Grade: "1年", ClassID: "い組"}
	// 2026-10-14 是星期三
	testNow = time.Date(2026, 10, 14, 8, 30, 0, 0, jst)
)

// countingStore 统计写入次数
type countingStore struct {
	*kvstore.MemoryStore
	sets atomic.Int64
}

func (s *countingStore) Set(ctx context.Context, key string, value []byte) error {
	s.sets.Add(1)
	return s.MemoryStore.Set(ctx, key, value)
}

// testClock 可调整的时钟
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

type testEnv struct {
	store *countingStore
	repo  *repository.Repository
	clock *testClock
	locks *tenantLocks
}

func newTestEnv() *testEnv {
	store := &countingStore{MemoryStore: kvstore.NewMemoryStore()}
	return &testEnv{
		store: store,
		repo:  repository.NewRepository(store),
		clock: &testClock{now: testNow},
		locks: newTenantLocks(),
	}
}

func (e *testEnv) ledger(dayScoped bool) LedgerService {
	return NewLedgerService(e.repo, e.locks, e.clock.Now, dayScoped, zap.NewNop())
}

func (e *testEnv) report(dayScoped bool) ReportService {
	return NewReportService(e.repo, e.clock.Now, dayScoped, zap.NewNop())
}

func (e *testEnv) seed(t *testing.T, tenant model.Tenant, students []model.Student, homework []model.Homework) {
	t.Helper()
	ctx := context.Background()
	for i := range students {
		students[i].Grade, students[i].ClassID = tenant.Grade, tenant.ClassID
	}
	if err := e.repo.Student.Save(ctx, tenant, students); err != nil {
		t.Fatalf("写入名册失败: %v", err)
	}
	if err := e.repo.Homework.Save(ctx, tenant, homework); err != nil {
		t.Fatalf("写入宿题失败: %v", err)
	}
}

func (e *testEnv) records(t *testing.T, tenant model.Tenant) []model.SubmissionRecord {
	t.Helper()
	recs, err := e.repo.Submission.List(context.Background(), tenant)
	if err != nil {
		t.Fatalf("读取提交记录失败: %v", err)
	}
	return recs
}

// seedAB 两名学生 A/B，一个每天的宿题 H1
func (e *testEnv) seedAB(t *testing.T) {
	e.seed(t, testTenant,
		[]model.Student{
			{ID: 1, Number: 1, Name: "A", CardID: "X"},
			{ID: 2, Number: 2, Name: "B", CardID: "Y"},
		},
		[]model.Homework{
			{ID: 1, Title: "H1", Recurrence: model.Recurrence{model.Everyday}},
		},
	)
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-testing",
			AccessTokenTTL:  time.Hour,
			DefaultPassword: "teacher2026",
		},
		School: config.SchoolConfig{
			Timezone: "Asia/Tokyo",
			Grades:   []string{"1年", "2年"},
			Classes:  []string{"い組", "ろ組"},
		},
		Feature: config.FeatureConfig{DayScopedSubmissions: true},
		Export:  config.ExportConfig{TitleDelimiter: " / "},
	}
}
