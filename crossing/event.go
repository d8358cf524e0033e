package crossing

// EventType identifies something observable the controller did during a tick
type EventType uint8

const (
	EventPhaseChange    EventType = iota + 1 // Value: new phase
	EventCrossingStart                       // Value: red ticks remaining, walk included
	EventBeepOn                              // Value: on-period length
	EventBeepOff                             // Value: off-period length
	EventPressDiscarded                      // request dropped during an active crossing
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "phase"
	case EventCrossingStart:
		return "crossing"
	case EventBeepOn:
		return "beep_on"
	case EventBeepOff:
		return "beep_off"
	case EventPressDiscarded:
		return "press_discarded"
	default:
		return "unknown"
	}
}

// Event is emitted to the registered EventHandler, synchronously, from
// inside Tick.
type Event struct {
	Type  EventType
	Tick  uint32 // Controller tick count when the event happened
	Phase Phase  // Phase after the event
	Value uint32
}

// EventHandler receives controller events. It must not call Tick.
type EventHandler func(Event)
