package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"classsync/internal/dto"
	"classsync/internal/scan"
	"classsync/internal/service"
)

// 手动输入时触发模拟刷卡的指令
const simulateCommand = ":sim"

var autoSubmit bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "カード読み取りを開始する",
	Long: `カードリーダーを検出して読み取りを待ち受けます。

読み取り方法は次の順で選ばれます:
  1. scan.bridge_url のリーダーブリッジ
  2. scan.wedge_device のキーボード入力型リーダー
  3. 標準入力からの手動入力`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return current.runKiosk(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	runCmd.Flags().BoolVar(&autoSubmit, "auto-submit", true, "読み取り後に未提出の宿題をすべて提出済みにする")
}

func (a *app) runKiosk(ctx context.Context, in io.Reader, out io.Writer) error {
	var bridge scan.Bridge
	if a.cfg.Scan.BridgeURL != "" {
		ws := scan.NewWebSocketBridge(a.cfg.Scan.BridgeURL, a.cfg.Scan.RequestTimeout, a.logger)
		defer ws.Close()
		bridge = ws
	}

	var native scan.NativeReader
	if a.cfg.Scan.WedgeDevice != "" {
		f, err := os.Open(a.cfg.Scan.WedgeDevice)
		if err != nil {
			a.logger.Warn("打开键盘式读卡器失败", zap.String("device", a.cfg.Scan.WedgeDevice), zap.Error(err))
		} else {
			defer f.Close()
			w := scan.NewWedgeReader(f)
			defer w.Close()
			native = w
		}
	}

	neg := scan.NewNegotiator(bridge, native, a.logger)
	defer neg.Close()

	k := &kioskLoop{
		app:   a,
		neg:   neg,
		lines: readLines(ctx, in),
		out:   out,
	}
	return k.run(ctx)
}

// kioskLoop 一轮轮打开读卡会话，直到收到退出信号或输入结束
type kioskLoop struct {
	app   *app
	neg   *scan.Negotiator
	lines <-chan string
	out   io.Writer
}

func (k *kioskLoop) run(ctx context.Context) error {
	for {
		cardID, err := k.next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				fmt.Fprintln(k.out, "終了します")
				return nil
			}
			return err
		}
		k.handle(ctx, cardID)
	}
}

// next 打开新会话并等待一个卡号
func (k *kioskLoop) next(ctx context.Context) (string, error) {
	sess, err := k.neg.Open(ctx)
	manual := sess.Backend().Kind == scan.BackendManual || err != nil
	if err != nil {
		// 同一错误也已送入 Errors，这里直接提示
		select {
		case <-sess.Errors():
		default:
		}
		fmt.Fprintln(k.out, err.Error())
	}
	if manual && k.lines == nil {
		return "", io.EOF
	}
	if manual {
		fmt.Fprint(k.out, "カードIDを入力してください: ")
	} else {
		fmt.Fprintln(k.out, "カードをかざしてください")
	}

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case id := <-sess.Detected():
			return id, nil

		case e := <-sess.Errors():
			fmt.Fprintln(k.out, e.Error())
			if !e.Retryable() && !manual {
				manual = true
				if k.lines == nil {
					return "", io.EOF
				}
				fmt.Fprint(k.out, "カードIDを入力してください: ")
			}

		case line, ok := <-k.lines:
			if !ok {
				// 没有标准输入时仍可继续等待读卡器
				k.lines = nil
				if manual {
					select {
					case id := <-sess.Detected():
						return id, nil
					default:
						return "", io.EOF
					}
				}
				continue
			}
			if line == simulateCommand {
				if !k.app.cfg.Feature.SimulationEnabled {
					fmt.Fprintln(k.out, "シミュレーションは無効です")
					continue
				}
				if id := sess.Simulate(); id != "" {
					fmt.Fprintln(k.out, "シミュレーション:", id)
				}
				continue
			}
			if err := sess.Enter(line); err != nil {
				if manual {
					fmt.Fprint(k.out, "カードIDを入力してください: ")
				}
				continue
			}
		}
	}
}

func (k *kioskLoop) handle(ctx context.Context, cardID string) {
	res, err := k.app.svc.Kiosk.Lookup(ctx, cardID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCardNotFound):
			fmt.Fprintf(k.out, "未登録のカードです (%s)\n", cardID)
		default:
			k.app.logger.Error("查询卡号失败", zap.String("card_id", cardID), zap.Error(err))
			fmt.Fprintln(k.out, "読み取りに失敗しました。もう一度お試しください")
		}
		return
	}

	printLookup(k.out, res)
	if !autoSubmit || res.Remaining == 0 {
		return
	}

	sub, err := k.app.svc.Kiosk.Submit(ctx, cardID, &dto.KioskSubmitRequest{All: true})
	if err != nil {
		k.app.logger.Error("提交失败", zap.String("card_id", cardID), zap.Error(err))
		fmt.Fprintln(k.out, "提出の記録に失敗しました")
		return
	}
	fmt.Fprintf(k.out, "提出しました: %s\n", strings.Join(sub.Submitted, "、"))
}

func printLookup(out io.Writer, res *dto.KioskLookupResponse) {
	fmt.Fprintf(out, "%s%s %d番 %s\n", res.Tenant.Grade, res.Tenant.ClassID, res.Student.Number, res.Student.Name)
	if len(res.Items) == 0 {
		fmt.Fprintln(out, "  今日の宿題はありません")
		return
	}
	for _, it := range res.Items {
		mark := "□"
		if it.Submitted {
			mark = "■"
		}
		fmt.Fprintf(out, "  %s %s\n", mark, it.Title)
	}
	fmt.Fprintf(out, "  未提出 %d 件\n", res.Remaining)
}

// readLines 逐行读取输入，ctx 结束或输入结束时关闭通道
func readLines(ctx context.Context, in io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case ch <- strings.TrimSpace(sc.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
