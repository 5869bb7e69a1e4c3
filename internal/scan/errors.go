// Package scan 读卡来源协商：硬件桥 → 本机读卡器 → 手动输入
package scan

import "fmt"

// Kind 读卡错误类别
type Kind int

const (
	// KindUnsupported 没有可用的读卡后端
	KindUnsupported Kind = iota + 1
	// KindPermissionDenied 后端存在但访问被拒绝
	KindPermissionDenied
	// KindHardwareUnavailable 后端存在但读卡器不可用
	KindHardwareUnavailable
	// KindReadError 单次读取失败，可重试
	KindReadError
)

var kindNames = map[Kind]string{
	KindUnsupported:         "unsupported",
	KindPermissionDenied:    "permission_denied",
	KindHardwareUnavailable: "hardware_unavailable",
	KindReadError:           "read_error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// 画面表示用文言
var kindMessages = map[Kind]string{
	KindUnsupported:         "お使いの環境はNFCスキャンに対応していません。手動で入力してください。",
	KindPermissionDenied:    "NFCへのアクセスが拒否されたか、デバイスのNFCが無効です。",
	KindHardwareUnavailable: "ICカードリーダーが見つかりません。",
	KindReadError:           "タグの読み取りに失敗しました。もう一度試してください。",
}

// Error 读卡错误，Error() 返回可直接展示给用户的文字
type Error struct {
	Kind    Kind
	Backend BackendKind
	// Detail 后端给出的原始说明（可为空）
	Detail string
	Err    error
}

func newError(kind Kind, backend BackendKind, err error) *Error {
	return &Error{Kind: kind, Backend: backend, Err: err}
}

func (e *Error) Error() string {
	msg := kindMessages[e.Kind]
	if e.Kind == KindHardwareUnavailable && e.Detail != "" {
		return "ICカードリーダーエラー: " + e.Detail
	}
	if msg == "" {
		return "読み取りエラー"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable 同一会话内可继续等待下一次读取
func (e *Error) Retryable() bool {
	return e.Kind == KindReadError
}
