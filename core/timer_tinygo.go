//go:build tinygo

package core

import "sync/atomic"

// On the MCU the clock is stored from the main loop and may be read
// from the USB reader goroutine
func getSystemTicks() uint32 {
	return atomic.LoadUint32(&systemTicks)
}

func setSystemTicks(ticks uint32) {
	atomic.StoreUint32(&systemTicks, ticks)
}
