package scan

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"classsync/pkg/metrics"
)

// BackendKind 读卡后端类别
type BackendKind string

const (
	BackendBridge    BackendKind = "bridge"
	BackendNative    BackendKind = "native"
	BackendManual    BackendKind = "manual"
	BackendSimulated BackendKind = "simulated"
)

// Backend 本次会话选中的后端（只有 Kind 对应的字段非空）
type Backend struct {
	Kind   BackendKind
	bridge Bridge
	native NativeReader
}

// Capabilities 协商时探测到的能力
type Capabilities struct {
	Bridge       Bridge
	BridgeStatus ReaderStatus
	Native       NativeReader
}

// SelectBackend 按 硬件桥 → 本机读卡器 → 手动输入 的顺序选择后端
func SelectBackend(c Capabilities) Backend {
	switch {
	case c.Bridge != nil && c.BridgeStatus.Available:
		return Backend{Kind: BackendBridge, bridge: c.Bridge}
	case c.Native != nil:
		return Backend{Kind: BackendNative, native: c.Native}
	default:
		return Backend{Kind: BackendManual}
	}
}

// State 会话状态
type State int

const (
	StateIdle State = iota
	StateNegotiating
	StateListening
	StateDetected
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateNegotiating:
		return "negotiating"
	case StateListening:
		return "listening"
	case StateDetected:
		return "detected"
	case StateError:
		return "error"
	}
	return "unknown"
}

// ErrBlankManualID 手动输入为空
var ErrBlankManualID = errors.New("カードIDを入力してください")

// ────────────────────────────── Negotiator ──────────────────────────────

// Negotiator 读卡协商器；同一时刻只有一个会话，打开新会话会关闭旧会话
type Negotiator struct {
	bridge Bridge
	native NativeReader
	logger *zap.Logger

	mu      sync.Mutex
	current *Session
}

// NewNegotiator 创建协商器；bridge、native 均可为 nil
func NewNegotiator(bridge Bridge, native NativeReader, logger *zap.Logger) *Negotiator {
	return &Negotiator{bridge: bridge, native: native, logger: logger}
}

// State 当前会话状态；没有会话时为 Idle
func (n *Negotiator) State() State {
	n.mu.Lock()
	s := n.current
	n.mu.Unlock()
	if s == nil {
		return StateIdle
	}
	return s.State()
}

// Open 协商后端并开始监听。
// 后端不可用时仍返回会话（Error 状态），调用方可改为手动输入或模拟刷卡。
func (n *Negotiator) Open(ctx context.Context) (*Session, error) {
	n.mu.Lock()
	prev := n.current
	n.current = nil
	n.mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	sctx, cancel := context.WithCancel(ctx)
	s := &Session{
		detected: make(chan string, 1),
		errs:     make(chan *Error, 8),
		cancel:   cancel,
		logger:   n.logger,
		state:    StateNegotiating,
	}

	n.mu.Lock()
	n.current = s
	n.mu.Unlock()

	s.backend = SelectBackend(n.detect(sctx))
	s.logger.Debug("读卡后端已选定", zap.String("backend", string(s.backend.Kind)))

	switch s.backend.Kind {
	case BackendBridge:
		return s, s.listenBridge(sctx)
	case BackendNative:
		return s, s.listenNative(sctx)
	default:
		err := newError(KindUnsupported, BackendManual, nil)
		s.fail(err)
		return s, err
	}
}

// Close 关闭当前会话（没有会话时无操作）
func (n *Negotiator) Close() {
	n.mu.Lock()
	s := n.current
	n.current = nil
	n.mu.Unlock()
	if s != nil {
		s.Close()
	}
}

// detect 探测能力；硬件桥查询失败按不可用处理
func (n *Negotiator) detect(ctx context.Context) Capabilities {
	caps := Capabilities{Native: n.native}
	if n.bridge == nil {
		return caps
	}
	status, err := n.bridge.ReaderStatus(ctx)
	if err != nil {
		n.logger.Warn("查询硬件桥状态失败", zap.Error(err))
		return caps
	}
	caps.Bridge = n.bridge
	caps.BridgeStatus = status
	return caps
}

// ────────────────────────────── Session ──────────────────────────────

// Session 一次扫描会话。Detected 最多送出一个卡号，送出前会话已被拆除。
type Session struct {
	backend Backend
	logger  *zap.Logger

	detected chan string
	errs     chan *Error
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu        sync.Mutex
	state     State
	delivered bool
	torn      bool
	closed    bool
}

// Backend 本会话使用的后端
func (s *Session) Backend() Backend {
	return s.backend
}

// State 会话状态
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Detected 检出的卡号（缓冲 1，最多一个）
func (s *Session) Detected() <-chan string {
	return s.detected
}

// Errors 会话中发生的错误；缓冲满时丢弃
func (s *Session) Errors() <-chan *Error {
	return s.errs
}

// Simulate 生成模拟卡号并走与真实检出相同的路径；会话已结束时返回空串
func (s *Session) Simulate() string {
	id := NewSimulatedID()
	if !s.deliver(id, BackendSimulated) {
		return ""
	}
	return id
}

// Enter 手动输入卡号
func (s *Session) Enter(cardID string) error {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return ErrBlankManualID
	}
	s.deliver(cardID, BackendManual)
	return nil
}

// Close 取消进行中的读取、注销硬件桥回调，并等待后台 goroutine 退出
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.teardown()
	s.wg.Wait()

	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
}

func (s *Session) listenBridge(ctx context.Context) error {
	b := s.backend.bridge
	b.OnDetected(func(ev CardEvent) {
		s.deliver(ev.UID, BackendBridge)
	})
	b.OnRemoved(func(ev CardEvent) {
		s.logger.Debug("卡片已移开", zap.String("uid", ev.UID))
	})
	b.OnError(func(err error) {
		e := newError(KindHardwareUnavailable, BackendBridge, err)
		e.Detail = err.Error()
		s.fail(e)
	})

	res, err := b.RequestScan(ctx)
	if err != nil || !res.Success {
		// 请求返回前已检出卡片
		if s.isDelivered() {
			return nil
		}
		s.teardown()
		e := newError(KindHardwareUnavailable, BackendBridge, err)
		e.Detail = res.Message
		s.fail(e)
		return e
	}

	s.setState(StateListening)
	return nil
}

func (s *Session) listenNative(ctx context.Context) error {
	readings, err := s.backend.native.Scan(ctx)
	if err != nil {
		var e *Error
		if !errors.As(err, &e) {
			e = newError(KindPermissionDenied, BackendNative, err)
		}
		s.fail(e)
		return e
	}

	s.setState(StateListening)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for r := range readings {
			if r.Err != nil {
				s.fail(newError(KindReadError, BackendNative, r.Err))
				continue
			}
			if r.Serial == "" {
				continue
			}
			if s.deliver(r.Serial, BackendNative) {
				return
			}
		}
		if ctx.Err() == nil {
			s.fail(newError(KindHardwareUnavailable, BackendNative, nil))
		}
	}()
	return nil
}

// deliver 送出第一个检出的卡号；之后的检出全部丢弃
func (s *Session) deliver(id string, kind BackendKind) bool {
	s.mu.Lock()
	if s.delivered || s.closed {
		s.mu.Unlock()
		return false
	}
	s.delivered = true
	s.state = StateDetected
	s.mu.Unlock()

	// 先拆除会话，再交出卡号
	s.teardown()
	metrics.ScanDetections.WithLabelValues(string(kind)).Inc()
	s.detected <- id
	return true
}

func (s *Session) fail(err *Error) {
	s.mu.Lock()
	if s.delivered || s.closed {
		s.mu.Unlock()
		return
	}
	// 单次读取失败不改变监听状态
	if !err.Retryable() {
		s.state = StateError
	}
	s.mu.Unlock()

	s.logger.Warn("读卡失败",
		zap.String("backend", string(err.Backend)),
		zap.Stringer("kind", err.Kind),
		zap.Error(err.Err),
	)
	select {
	case s.errs <- err:
	default:
	}
}

// teardown 取消读取并注销回调；可重复调用
func (s *Session) teardown() {
	s.mu.Lock()
	if s.torn {
		s.mu.Unlock()
		return
	}
	s.torn = true
	s.mu.Unlock()

	s.cancel()
	if s.backend.bridge != nil {
		s.backend.bridge.RemoveAllListeners()
	}
}

func (s *Session) isDelivered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delivered
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateNegotiating {
		s.state = st
	}
}
