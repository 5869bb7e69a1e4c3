package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"

	"classsync/config"
	"classsync/internal/repository"
	"classsync/internal/service"
	"classsync/pkg/jwt"
	"classsync/pkg/kvstore"
)

// newSeededService 真实 Service + 内存存储，默认租户即 testTenant
func newSeededService(t *testing.T) *service.Service {
	t.Helper()
	cfg := &config.Config{
		Auth:    config.AuthConfig{JWTSecret: "test-secret-key-for-unit-testing", AccessTokenTTL: time.Hour},
		School:  config.SchoolConfig{Timezone: "Asia/Tokyo", Grades: []string{testTenant.Grade}, Classes: []string{testTenant.ClassID}},
		Feature: config.FeatureConfig{DayScopedSubmissions: true},
		Export:  config.ExportConfig{TitleDelimiter: " / "},
	}
	repo := repository.NewRepository(kvstore.NewMemoryStore())
	svc := service.NewServiceWithClock(cfg, repo, jwt.NewManager(&cfg.Auth), nil, testClock, zap.NewNop())

	seeded, err := svc.Maintenance.SeedDefaults(context.Background())
	if err != nil || !seeded {
		t.Fatalf("写入示例数据失败: seeded=%v err=%v", seeded, err)
	}
	return svc
}

func decodeData(t *testing.T, raw []byte, v interface{}) {
	t.Helper()
	var env struct {
		Code int             `json:"code"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("响应不是合法 JSON: %v", err)
	}
	if env.Code != 0 {
		t.Fatalf("期望 code=0，实际 %d", env.Code)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("解析 data 失败: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// ReportHandler
// ═══════════════════════════════════════════════════════════

func TestReportHandler_Dashboard(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()
	if err := svc.Ledger.RecordTouch(ctx, testTenant, 1, 1, testNow); err != nil {
		t.Fatalf("RecordTouch 失败: %v", err)
	}

	h := NewReportHandler(svc.Report)
	r := newTenantRouter()
	r.GET("/reports/dashboard", h.Dashboard)

	w := doJSON(r, http.MethodGet, "/reports/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}

	var d service.Dashboard
	decodeData(t, w.Body.Bytes(), &d)
	if d.StudentCount != 5 || d.HomeworkCount != 3 {
		t.Errorf("期望 5 名学生 3 个宿题，实际 %d/%d", d.StudentCount, d.HomeworkCount)
	}
	if d.CheckedRate != 0 {
		t.Errorf("未确认时确认率应为 0，实际 %d", d.CheckedRate)
	}
	// 星期三三个宿题都到期：1 / (3*5) → 7%
	if len(d.DueToday) != 3 || d.TodayRate != 7 {
		t.Errorf("今日到期/完成率不符: %d 个, %d%%", len(d.DueToday), d.TodayRate)
	}
}

func TestReportHandler_TodayUnsubmittedAndBacklog(t *testing.T) {
	svc := newSeededService(t)
	h := NewReportHandler(svc.Report)
	r := newTenantRouter()
	r.GET("/reports/unsubmitted", h.TodayUnsubmitted)
	r.GET("/reports/backlog", h.Backlog)

	var groups struct {
		List []service.UnsubmittedGroup `json:"list"`
	}
	decodeData(t, doJSON(r, http.MethodGet, "/reports/unsubmitted", nil).Body.Bytes(), &groups)
	if len(groups.List) != 3 {
		t.Fatalf("期望 3 组，实际 %d", len(groups.List))
	}
	for _, g := range groups.List {
		if len(g.Students) != 5 {
			t.Errorf("%s 应有 5 名未提交，实际 %d", g.Homework.Title, len(g.Students))
		}
	}

	var backlog struct {
		List []service.StudentBacklog `json:"list"`
	}
	decodeData(t, doJSON(r, http.MethodGet, "/reports/backlog", nil).Body.Bytes(), &backlog)
	if len(backlog.List) != 5 || backlog.List[0].Count != 3 {
		t.Errorf("期望 5 名学生各缺 3 个宿题: %+v", backlog.List)
	}
}

// ═══════════════════════════════════════════════════════════
// MaintenanceHandler
// ═══════════════════════════════════════════════════════════

func TestMaintenanceHandler_SeedAndReset(t *testing.T) {
	svc := newSeededService(t)
	ctx := context.Background()
	h := NewMaintenanceHandler(svc.Maintenance)

	r := newTenantRouter()
	r.POST("/maintenance/seed", h.Seed)
	r.POST("/reset", h.ResetTenant)

	// 名册非空时不重复写入
	var res struct {
		Seeded bool `json:"seeded"`
	}
	decodeData(t, doJSON(r, http.MethodPost, "/maintenance/seed", nil).Body.Bytes(), &res)
	if res.Seeded {
		t.Error("名册非空时不应再次写入")
	}

	if err := svc.Ledger.RecordTouch(ctx, testTenant, 1, 1, testNow); err != nil {
		t.Fatalf("RecordTouch 失败: %v", err)
	}
	w := doJSON(r, http.MethodPost, "/reset", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}

	records, err := svc.Ledger.List(ctx, testTenant)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("重置后提交记录应为空，实际 %d", len(records))
	}
	// 默认租户重置后重新写入示例数据
	students, _ := svc.Student.List(ctx, testTenant)
	if len(students) != 5 {
		t.Errorf("默认租户重置后应重新写入 5 名学生，实际 %d", len(students))
	}
}
