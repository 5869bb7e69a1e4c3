package scan

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// WedgeReader 键盘式读卡器：读卡器把卡号当作一行键盘输入送出。
// 底层只有一个读取 goroutine，各会话的 Scan 轮流接收行。
type WedgeReader struct {
	src io.Reader

	start sync.Once
	stop  sync.Once
	lines chan string
	done  chan struct{}

	mu   sync.Mutex
	err  error
	held []string // 已读出但未送达的卡号
}

var _ NativeReader = (*WedgeReader)(nil)

// NewWedgeReader 创建键盘式读卡器
func NewWedgeReader(src io.Reader) *WedgeReader {
	return &WedgeReader{
		src:   src,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
}

// Scan 开始接收卡号；输入结束时通道关闭
func (w *WedgeReader) Scan(ctx context.Context) (<-chan Reading, error) {
	w.start.Do(func() { go w.pump() })

	out := make(chan Reading)
	go func() {
		defer close(out)
		for {
			if ctx.Err() != nil {
				return
			}
			line, ok := w.takeHeld()
			if !ok {
				select {
				case <-ctx.Done():
					return
				case line, ok = <-w.lines:
					if !ok {
						if err := w.readErr(); err != nil {
							select {
							case out <- Reading{Err: err}:
							case <-ctx.Done():
							}
						}
						return
					}
				}
			}
			select {
			case out <- Reading{Serial: line}:
			case <-ctx.Done():
				// 会话已结束：卡号留给下一个会话
				w.holdBack(line)
				return
			}
		}
	}()
	return out, nil
}

// Close 停止读取；底层 Read 阻塞时需由调用方关闭 src 才能退出
func (w *WedgeReader) Close() {
	w.stop.Do(func() { close(w.done) })
}

func (w *WedgeReader) pump() {
	defer close(w.lines)

	sc := bufio.NewScanner(w.src)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		select {
		case w.lines <- line:
		case <-w.done:
			return
		}
	}

	if err := sc.Err(); err != nil {
		w.mu.Lock()
		w.err = err
		w.mu.Unlock()
	}
}

func (w *WedgeReader) readErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *WedgeReader) takeHeld() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.held) == 0 {
		return "", false
	}
	line := w.held[0]
	w.held = w.held[1:]
	return line, true
}

func (w *WedgeReader) holdBack(line string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.held = append([]string{line}, w.held...)
}
