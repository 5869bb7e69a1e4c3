package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"classsync/internal/model"
	"classsync/internal/scan"
	"classsync/internal/service"
)

// ── simulate ──

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "テスト用のカードIDを発行する",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !current.cfg.Feature.SimulationEnabled {
			return fmt.Errorf("シミュレーションは無効です (feature.simulation_enabled)")
		}
		fmt.Fprintln(cmd.OutOrStdout(), scan.NewSimulatedID())
		return nil
	},
}

// ── seed ──

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "既定クラスにサンプルデータを登録する（名簿が空の場合のみ）",
	RunE: func(cmd *cobra.Command, args []string) error {
		seeded, err := current.svc.Maintenance.SeedDefaults(cmd.Context())
		if err != nil {
			return err
		}
		if seeded {
			fmt.Fprintln(cmd.OutOrStdout(), "サンプルデータを登録しました")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "名簿が空ではないため、何もしませんでした")
		}
		return nil
	},
}

// ── reset ──

var (
	resetAll   bool
	resetGrade string
	resetClass string
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "クラスまたは全データを初期化する",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if resetAll {
			if err := current.svc.Maintenance.ResetAll(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "すべてのデータを初期化しました")
			return nil
		}
		t, err := current.tenant(resetGrade, resetClass)
		if err != nil {
			return err
		}
		if err := current.svc.Maintenance.Reset(ctx, t); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s を初期化しました\n", t)
		return nil
	},
}

// ── export ──

type exportFunc func(svc service.ExportService, ctx context.Context, t model.Tenant) (*bytes.Buffer, string, error)

var exporters = map[string]exportFunc{
	"students":    service.ExportService.StudentsCSV,
	"submissions": service.ExportService.SubmissionsCSV,
	"backlog":     service.ExportService.BacklogCSV,
	"backup":      service.ExportService.SnapshotJSON,
	"report":      service.ExportService.DashboardXLSX,
	"calendar":    service.ExportService.CalendarICS,
}

func exportKinds() []string {
	kinds := make([]string, 0, len(exporters))
	for k := range exporters {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

var (
	exportGrade string
	exportClass string
	exportOut   string
)

var exportCmd = &cobra.Command{
	Use:       "export <" + strings.Join(exportKinds(), "|") + ">",
	Short:     "クラスのデータをファイルに書き出す",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: exportKinds(),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := current.tenant(exportGrade, exportClass)
		if err != nil {
			return err
		}
		path, err := writeExport(cmd.Context(), current.svc.Export, exporters[args[0]], t, exportOut)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// writeExport 生成导出内容并写到 dir 下（文件名由导出器决定）
func writeExport(ctx context.Context, svc service.ExportService, fn exportFunc, t model.Tenant, dir string) (string, error) {
	buf, name, err := fn(svc, ctx, t)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func init() {
	resetCmd.Flags().BoolVar(&resetAll, "all", false, "全クラスと設定を初期化する")
	resetCmd.Flags().StringVar(&resetGrade, "grade", "", "学年")
	resetCmd.Flags().StringVar(&resetClass, "class", "", "クラス")
	resetCmd.MarkFlagsMutuallyExclusive("all", "grade")

	exportCmd.Flags().StringVar(&exportGrade, "grade", "", "学年")
	exportCmd.Flags().StringVar(&exportClass, "class", "", "クラス")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", ".", "出力先ディレクトリ")
	_ = exportCmd.MarkFlagRequired("grade")
	_ = exportCmd.MarkFlagRequired("class")
}
