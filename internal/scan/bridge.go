package scan

import "context"

// ReaderStatus 硬件桥报告的读卡器状态
type ReaderStatus struct {
	Available   bool `json:"available"`
	Initialized bool `json:"initialized"`
}

// ScanResult 扫描请求结果
type ScanResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CardEvent 卡片放上/移开事件
type CardEvent struct {
	UID      string `json:"uid"`
	CardType string `json:"cardType,omitempty"`
}

// Bridge 宿主提供的读卡器能力（例如本机常驻的 PC/SC 桥接进程）
//
// 回调可能在任意 goroutine 中触发；RemoveAllListeners 之后不得再触发任何回调。
type Bridge interface {
	ReaderStatus(ctx context.Context) (ReaderStatus, error)
	RequestScan(ctx context.Context) (ScanResult, error)
	OnDetected(fn func(CardEvent))
	OnRemoved(fn func(CardEvent))
	OnError(fn func(error))
	RemoveAllListeners()
}

// Reading 本机读卡器的一次读取
type Reading struct {
	Serial string
	Err    error
}

// NativeReader 本机读卡器：Scan 启动一个读取流，ctx 取消时停止并关闭通道。
// 可多次调用 Scan（每个会话一次）。
type NativeReader interface {
	Scan(ctx context.Context) (<-chan Reading, error)
}
