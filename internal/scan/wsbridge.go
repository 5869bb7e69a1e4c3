package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

// 硬件桥消息类型
const (
	msgStatus  = "status"
	msgScan    = "scan"
	msgCard    = "card"
	msgCardOff = "card.off"
	msgError   = "error"
)

// bridgeMessage 硬件桥 WebSocket 协议消息（双向共用）
type bridgeMessage struct {
	Type        string `json:"type"`
	Available   bool   `json:"available,omitempty"`
	Initialized bool   `json:"initialized,omitempty"`
	Success     bool   `json:"success,omitempty"`
	Message     string `json:"message,omitempty"`
	UID         string `json:"uid,omitempty"`
	CardType    string `json:"cardType,omitempty"`
}

var ErrBridgeClosed = errors.New("硬件桥连接已关闭")

// WebSocketBridge 通过 WebSocket 连接本机读卡器桥接进程
//
// 请求（status/scan）同一时刻只有一个在途；卡片与错误事件随时推送。
type WebSocketBridge struct {
	url     string
	timeout time.Duration
	logger  *zap.Logger

	reqMu sync.Mutex // 串行化请求

	mu        sync.Mutex
	conn      *websocket.Conn
	replies   chan bridgeMessage
	loopDone  chan struct{}
	onDetect  func(CardEvent)
	onRemove  func(CardEvent)
	onFailure func(error)
}

var _ Bridge = (*WebSocketBridge)(nil)

// NewWebSocketBridge 创建硬件桥客户端；首次请求时才建立连接
func NewWebSocketBridge(url string, timeout time.Duration, logger *zap.Logger) *WebSocketBridge {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebSocketBridge{url: url, timeout: timeout, logger: logger}
}

// ReaderStatus 查询读卡器状态
func (b *WebSocketBridge) ReaderStatus(ctx context.Context) (ReaderStatus, error) {
	reply, err := b.request(ctx, msgStatus)
	if err != nil {
		return ReaderStatus{}, err
	}
	return ReaderStatus{Available: reply.Available, Initialized: reply.Initialized}, nil
}

// RequestScan 请求开始扫描
func (b *WebSocketBridge) RequestScan(ctx context.Context) (ScanResult, error) {
	reply, err := b.request(ctx, msgScan)
	if err != nil {
		return ScanResult{}, err
	}
	return ScanResult{Success: reply.Success, Message: reply.Message}, nil
}

func (b *WebSocketBridge) OnDetected(fn func(CardEvent)) {
	b.mu.Lock()
	b.onDetect = fn
	b.mu.Unlock()
}

func (b *WebSocketBridge) OnRemoved(fn func(CardEvent)) {
	b.mu.Lock()
	b.onRemove = fn
	b.mu.Unlock()
}

func (b *WebSocketBridge) OnError(fn func(error)) {
	b.mu.Lock()
	b.onFailure = fn
	b.mu.Unlock()
}

func (b *WebSocketBridge) RemoveAllListeners() {
	b.mu.Lock()
	b.onDetect, b.onRemove, b.onFailure = nil, nil, nil
	b.mu.Unlock()
}

// Close 关闭连接并等待读循环退出
func (b *WebSocketBridge) Close() error {
	b.mu.Lock()
	conn, done := b.conn, b.loopDone
	b.conn = nil
	b.mu.Unlock()
	if conn == nil {
		return nil
	}
	err := conn.Close(websocket.StatusNormalClosure, "closed")
	<-done
	return err
}

func (b *WebSocketBridge) request(ctx context.Context, typ string) (bridgeMessage, error) {
	b.reqMu.Lock()
	defer b.reqMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	conn, replies, err := b.connect(ctx)
	if err != nil {
		return bridgeMessage{}, err
	}

	if err := wsjson.Write(ctx, conn, bridgeMessage{Type: typ}); err != nil {
		return bridgeMessage{}, fmt.Errorf("发送 %s 请求: %w", typ, err)
	}

	for {
		select {
		case <-ctx.Done():
			return bridgeMessage{}, ctx.Err()
		case reply, ok := <-replies:
			if !ok {
				return bridgeMessage{}, ErrBridgeClosed
			}
			if reply.Type == typ {
				return reply, nil
			}
		}
	}
}

func (b *WebSocketBridge) connect(ctx context.Context) (*websocket.Conn, chan bridgeMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		return b.conn, b.replies, nil
	}

	conn, _, err := websocket.Dial(ctx, b.url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("连接硬件桥 %s: %w", b.url, err)
	}
	b.conn = conn
	b.replies = make(chan bridgeMessage, 1)
	b.loopDone = make(chan struct{})
	go b.readLoop(conn, b.replies, b.loopDone)

	b.logger.Info("硬件桥已连接", zap.String("url", b.url))
	return conn, b.replies, nil
}

// readLoop 分发桥接进程推送的消息，连接断开时退出
func (b *WebSocketBridge) readLoop(conn *websocket.Conn, replies chan bridgeMessage, done chan struct{}) {
	defer close(done)
	defer close(replies)

	for {
		var msg bridgeMessage
		if err := wsjson.Read(context.Background(), conn, &msg); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				b.logger.Debug("硬件桥读循环结束", zap.Error(err))
			}
			b.mu.Lock()
			if b.conn == conn {
				b.conn = nil
			}
			b.mu.Unlock()
			return
		}

		switch msg.Type {
		case msgCard:
			if fn := b.listener(func() func(CardEvent) { return b.onDetect }); fn != nil {
				fn(CardEvent{UID: msg.UID, CardType: msg.CardType})
			}
		case msgCardOff:
			if fn := b.listener(func() func(CardEvent) { return b.onRemove }); fn != nil {
				fn(CardEvent{UID: msg.UID})
			}
		case msgError:
			b.mu.Lock()
			fn := b.onFailure
			b.mu.Unlock()
			if fn != nil {
				fn(errors.New(msg.Message))
			}
		default:
			// 无人等待时丢弃过期回复
			select {
			case replies <- msg:
			default:
			}
		}
	}
}

func (b *WebSocketBridge) listener(get func() func(CardEvent)) func(CardEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return get()
}
