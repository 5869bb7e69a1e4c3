// Package job 定时任务
package job

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"classsync/internal/model"
	"classsync/internal/service"
	"classsync/pkg/logger"
)

// Snapshotter 生成租户备份（由 service.ExportService 实现）
type Snapshotter interface {
	Snapshot(ctx context.Context, t model.Tenant) (*model.Snapshot, error)
}

// BackupJob 定时把每个租户的完整备份写到 dir/{学年}_{班级}/backup_YYYY-MM-DD.json
// 名册和宿题都为空的租户跳过
type BackupJob struct {
	snap    Snapshotter
	tenants []model.Tenant
	dir     string
	clock   service.Clock
	logger  *zap.Logger
	cron    *cron.Cron
}

// NewBackupJob 创建备份任务
func NewBackupJob(snap Snapshotter, tenants []model.Tenant, dir string, clock service.Clock, logger *zap.Logger) *BackupJob {
	return &BackupJob{snap: snap, tenants: tenants, dir: dir, clock: clock, logger: logger}
}

// Start 按 cron 表达式启动；上一轮未结束时跳过本轮
func (j *BackupJob) Start(schedule string) error {
	c := cron.New(
		cron.WithLocation(j.clock().Location()),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := c.AddFunc(schedule, func() {
		if _, err := j.RunOnce(context.Background()); err != nil {
			j.logger.Error("定时备份失败", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("备份计划 %q 无效: %w", schedule, err)
	}

	j.cron = c
	c.Start()
	j.logger.Info("定时备份已启动", zap.String("schedule", schedule), zap.String("dir", j.dir))
	return nil
}

// Stop 停止调度并等待正在执行的备份结束
func (j *BackupJob) Stop(ctx context.Context) {
	if j.cron == nil {
		return
	}
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
		j.logger.Warn("等待备份结束超时")
	}
}

// RunOnce 立即备份全部租户，返回写出的文件数
// 单个租户失败不影响其他租户，最后返回第一个错误
func (j *BackupJob) RunOnce(ctx context.Context) (int, error) {
	var (
		written  int
		firstErr error
	)
	now := j.clock()
	for _, t := range j.tenants {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		path, err := j.backupTenant(ctx, t, now)
		if err != nil {
			j.logger.Error("租户备份失败", logger.Tenant(t.Grade, t.ClassID), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if path != "" {
			written++
			j.logger.Debug("租户备份完成", logger.Tenant(t.Grade, t.ClassID), zap.String("path", path))
		}
	}

	j.logger.Info("备份完成", zap.Int("files", written))
	return written, firstErr
}

func (j *BackupJob) backupTenant(ctx context.Context, t model.Tenant, now time.Time) (string, error) {
	snap, err := j.snap.Snapshot(ctx, t)
	if err != nil {
		return "", err
	}
	if len(snap.Students) == 0 && len(snap.Homework) == 0 {
		return "", nil
	}

	data, err := service.EncodeSnapshot(snap)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(j.dir, t.Grade+"_"+t.ClassID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, service.ExportFilename(service.ExportKindSnapshot, now, "json"))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
