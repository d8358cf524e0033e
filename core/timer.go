package core

// TimerFreq is the RP2040 system timer rate: one count per microsecond
const TimerFreq = 1000000

var systemTicks uint32

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	return getSystemTicks()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	setSystemTicks(ticks)
}

// TimerFromUS converts microseconds to timer ticks
func TimerFromUS(us uint32) uint32 {
	return uint32(uint64(us) * TimerFreq / 1000000)
}

// TimerFromMS converts milliseconds to timer ticks
func TimerFromMS(ms uint32) uint32 {
	return TimerFromUS(ms * 1000)
}

// TimerToUS converts timer ticks to microseconds
func TimerToUS(ticks uint32) uint32 {
	return uint32(uint64(ticks) * 1000000 / TimerFreq)
}

// timerBefore reports whether a is earlier than b, allowing for the
// 32-bit clock wrapping (about every 71 minutes at 1MHz)
func timerBefore(a, b uint32) bool {
	return int32(a-b) < 0
}

// ProcessTimers runs every timer that is due. Called once per main loop pass.
func ProcessTimers() {
	currentTime = GetTime()
	TimerDispatch()
}
