package scan

import "math/rand/v2"

const (
	simulatedPrefix = "SIM-"
	simulatedLen    = 9
	simulatedChars  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewSimulatedID 生成开发用的模拟卡号，例如 SIM-K3F9Q0A2Z
func NewSimulatedID() string {
	b := make([]byte, simulatedLen)
	for i := range b {
		b[i] = simulatedChars[rand.IntN(len(simulatedChars))]
	}
	return simulatedPrefix + string(b)
}

// IsSimulatedID 判断卡号是否为模拟生成
func IsSimulatedID(id string) bool {
	return len(id) == len(simulatedPrefix)+simulatedLen && id[:len(simulatedPrefix)] == simulatedPrefix
}
