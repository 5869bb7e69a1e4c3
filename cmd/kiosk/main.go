// classsync-kiosk 教室点名机终端：刷卡登记提交，以及备份、导出、重置等维护命令
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"classsync/config"
	"classsync/internal/bootstrap"
	"classsync/internal/model"
	"classsync/internal/repository"
	"classsync/internal/service"
	"classsync/pkg/jwt"
	applogger "classsync/pkg/logger"
)

// app 各子命令共用的运行时依赖
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	infra   *bootstrap.Infra
	svc     *service.Service
	clock   service.Clock
	tenants []model.Tenant
}

var (
	configPath string
	current    *app
)

var rootCmd = &cobra.Command{
	Use:           "classsync-kiosk",
	Short:         "宿題提出チェック端末",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			current.close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径")
	rootCmd.AddCommand(runCmd, simulateCmd, seedCmd, resetCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "エラー:", err)
		os.Exit(1)
	}
}

func newApp(path string) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	infra, err := bootstrap.Open(cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, err
	}

	clock := service.SystemClock(cfg.School.Location())
	repo := repository.NewRepository(infra.Store)
	var blacklist service.TokenBlacklist
	if infra.Redis != nil {
		blacklist = infra.Redis
	}
	svc := service.NewServiceWithClock(cfg, repo, jwt.NewManager(&cfg.Auth), blacklist, clock, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		infra:   infra,
		svc:     svc,
		clock:   clock,
		tenants: model.Tenants(cfg.School.Grades, cfg.School.Classes),
	}, nil
}

func (a *app) close() {
	a.infra.Close()
	a.logger.Sync()
}

// tenant 校验 --grade/--class 是配置中的租户
func (a *app) tenant(grade, class string) (model.Tenant, error) {
	return findTenant(a.tenants, grade, class)
}

func findTenant(tenants []model.Tenant, grade, class string) (model.Tenant, error) {
	for _, t := range tenants {
		if t.Grade == grade && t.ClassID == class {
			return t, nil
		}
	}
	return model.Tenant{}, fmt.Errorf("クラス %s%s は設定されていません", grade, class)
}
