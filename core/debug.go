package core

import "pelican/crossing"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// LogEvent is one entry of the post-mortem event ring
type LogEvent struct {
	Kind  crossing.EventType // 0 marks an empty slot
	Clock uint32             // System clock at event
	Tick  uint32             // Controller tick at event
	Phase crossing.Phase
	Value uint32
}

// EvtFault marks a hardware access failure in the ring, next to the
// controller's own event types
const EvtFault crossing.EventType = 0x80

const EventRingSize = 32 // Keep last 32 events for post-mortem

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled gates DebugPrintln. Off by default so the 1 kHz loop
	// does not block on USB.
	debugEnabled bool

	eventRing     [EventRingSize]LogEvent
	eventRingHead uint8

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16)
	go debugOutputWorker()
}

func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message without blocking; drops it if the
// channel is full or async output was never started
func DebugAsync(msg string) {
	if !debugEnabled || debugChan == nil {
		return
	}
	select {
	case debugChan <- msg:
	default:
	}
}

// RecordEvent stores a controller event in the ring buffer
func RecordEvent(e crossing.Event) LogEvent {
	idx := eventRingHead
	eventRing[idx] = LogEvent{
		Kind:  e.Type,
		Clock: GetTime(),
		Tick:  e.Tick,
		Phase: e.Phase,
		Value: e.Value,
	}
	eventRingHead = (idx + 1) % EventRingSize
	return eventRing[idx]
}

// EventRing returns the recorded events, oldest first
func EventRing() []LogEvent {
	events := make([]LogEvent, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.Kind == 0 {
			continue
		}
		events = append(events, evt)
	}
	return events
}

// FormatEvent renders an event as a single debug line
func FormatEvent(evt LogEvent) string {
	name := evt.Kind.String()
	if evt.Kind == EvtFault {
		name = "fault"
	}
	return "[EVT] " + name +
		" clock=" + utoa(evt.Clock) +
		" tick=" + utoa(evt.Tick) +
		" phase=" + evt.Phase.String() +
		" v=" + utoa(evt.Value)
}

// DumpEventRing writes the ring to the debug writer, oldest first
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVT] === Event Ring Dump ===")
	for _, evt := range EventRing() {
		debugPrintln(FormatEvent(evt))
	}
	debugPrintln("[EVT] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	for i := range eventRing {
		eventRing[i] = LogEvent{}
	}
	eventRingHead = 0
}
