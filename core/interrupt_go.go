//go:build !tinygo

package core

// State is a placeholder for interrupt state on regular Go
type State uintptr

// Off-target there are no interrupts to mask
func disableInterrupts() State {
	return 0
}

func restoreInterrupts(state State) {}
