package scan

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWedgeReader_SkipsBlankLines(t *testing.T) {
	w := NewWedgeReader(strings.NewReader("\n  \nNFC003\r\nNFC004\n"))
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := w.Scan(ctx)
	require.NoError(t, err)

	r := <-ch
	assert.Equal(t, "NFC003", r.Serial)
	r = <-ch
	assert.Equal(t, "NFC004", r.Serial)

	_, ok := <-ch
	assert.False(t, ok, "输入结束后通道应关闭")
}

func TestWedgeReader_CancelledSessionLeavesLine(t *testing.T) {
	w := NewWedgeReader(strings.NewReader("NFC005\nNFC006\n"))
	defer w.Close()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	ch, err := w.Scan(cancelled)
	require.NoError(t, err)
	_, ok := <-ch
	assert.False(t, ok, "已取消的会话应直接关闭")

	ch, err = w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "NFC005", (<-ch).Serial, "卡号不应被已取消的会话吞掉")
	assert.Equal(t, "NFC006", (<-ch).Serial)
}

func TestWedgeReader_HeldLineGoesToNextSession(t *testing.T) {
	w := NewWedgeReader(strings.NewReader("NFC008\n"))
	defer w.Close()
	w.holdBack("NFC007")

	ch, err := w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "NFC007", (<-ch).Serial)
	assert.Equal(t, "NFC008", (<-ch).Serial)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestWedgeReader_SessionsShareInput(t *testing.T) {
	pr, pw := io.Pipe()
	w := NewWedgeReader(pr)
	n := NewNegotiator(nil, w, zap.NewNop())

	s, err := n.Open(context.Background())
	require.NoError(t, err)
	go func() { _, _ = pw.Write([]byte("NFC001\n")) }()
	assert.Equal(t, "NFC001", receive(t, s.Detected()))

	s2, err := n.Open(context.Background())
	require.NoError(t, err)
	go func() { _, _ = pw.Write([]byte("NFC002\n")) }()
	assert.Equal(t, "NFC002", receive(t, s2.Detected()))

	n.Close()
	w.Close()
	require.NoError(t, pw.Close())

	// 等待底层读取 goroutine 退出
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-w.lines:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("读取 goroutine 未退出")
		}
	}
}
