//go:build !tinygo

package core

// Off-target the clock is only moved by SetTime (simulation and tests)
func getSystemTicks() uint32 {
	return systemTicks
}

func setSystemTicks(ticks uint32) {
	systemTicks = ticks
}
