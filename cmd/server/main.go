package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"classsync/config"
	"classsync/internal/api/handler"
	"classsync/internal/api/middleware"
	"classsync/internal/api/router"
	"classsync/internal/bootstrap"
	"classsync/internal/job"
	"classsync/internal/model"
	"classsync/internal/repository"
	"classsync/internal/service"
	"classsync/pkg/jwt"
	applogger "classsync/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 打开存储（postgres 时同时执行迁移）与可选的 Redis
	infra, err := bootstrap.Open(cfg, logger)
	if err != nil {
		logger.Fatal("存储初始化失败", zap.Error(err))
	}
	defer infra.Close()

	// 4. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 5. 依赖注入: Repository → Service → Handler
	var (
		blacklist service.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	if infra.Redis != nil {
		blacklist, limiter = infra.Redis, infra.Redis
	}

	clock := service.SystemClock(cfg.School.Location())
	tenants := model.Tenants(cfg.School.Grades, cfg.School.Classes)

	repo := repository.NewRepository(infra.Store)
	svc := service.NewServiceWithClock(cfg, repo, jwtMgr, blacklist, clock, logger)
	h := handler.NewHandler(svc, handler.Options{
		Tenants:           tenants,
		Clock:             clock,
		SimulationEnabled: cfg.Feature.SimulationEnabled,
	})

	// 6. 初始数据
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := svc.Auth.EnsureDefaultPassword(initCtx); err != nil {
		logger.Fatal("初始化教师口令失败", zap.Error(err))
	}
	if cfg.Feature.SeedDefaults {
		if seeded, err := svc.Maintenance.SeedDefaults(initCtx); err != nil {
			logger.Warn("写入示例数据失败", zap.Error(err))
		} else if seeded {
			logger.Info("已写入示例数据")
		}
	}
	initCancel()

	// 7. 定时备份
	var backup *job.BackupJob
	if cfg.Backup.Enabled {
		backup = job.NewBackupJob(svc.Export, tenants, cfg.Backup.Dir, clock, logger)
		if err := backup.Start(cfg.Backup.Schedule); err != nil {
			logger.Fatal("定时备份启动失败", zap.Error(err))
		}
	}

	// 8. 初始化路由
	engine := router.Setup(cfg, router.Deps{
		Handler:   h,
		JWT:       jwtMgr,
		Blacklist: blacklist,
		Limiter:   limiter,
		Tenants:   tenants,
	}, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}
	if backup != nil {
		backup.Stop(ctx)
	}

	logger.Info("服务器已关闭")
}
