// Package crossing implements the polled state machine of a single
// road-crossing signal with a pedestrian call button and an audible
// crossing signal.
//
// The controller is driven by calling Tick once per poll with the sampled
// button level. It never blocks, never reads hardware and performs at most
// one phase transition per call, so it can be stepped in virtual time.
package crossing

// State is a snapshot of everything the controller tracks.
//
// Remaining belongs to the active phase; the other phases' timers are not
// kept since they are reloaded on entry.
type State struct {
	Phase     Phase
	Remaining uint32 // Ticks left in the active phase
	Requested bool   // Pedestrian request latched and not yet honoured
	Walking   bool   // Crossing active (red phase only)
	Beeping   bool   // Buzzer currently sounding (crossing only)
	BeepLeft  uint32 // Ticks left in the current beep on/off period
}

// InitialState is the state at power-up: green lit with a full green timer.
func InitialState() State {
	return State{
		Phase:     PhaseGreen,
		Remaining: GreenTime,
	}
}

// Controller owns the signal state. It is not safe for concurrent use;
// the single control loop is its only caller.
type Controller struct {
	state   State
	ticks   uint32
	handler EventHandler
}

// New returns a controller in the initial green phase
func New() *Controller {
	return &Controller{state: InitialState()}
}

// SetEventHandler registers a handler for controller events (nil disables)
func (c *Controller) SetEventHandler(h EventHandler) {
	c.handler = h
}

// State returns a copy of the current state
func (c *Controller) State() State {
	return c.state
}

// Ticks returns how many times Tick has been called
func (c *Controller) Ticks() uint32 {
	return c.ticks
}

// Outputs returns the line levels for the current state.
// Exactly one light is on; the buzzer follows Beeping.
func (c *Controller) Outputs() Outputs {
	return Outputs{
		Red:    c.state.Phase == PhaseRed,
		Amber:  c.state.Phase == PhaseAmber,
		Green:  c.state.Phase == PhaseGreen,
		Buzzer: c.state.Beeping,
	}
}

// Tick advances the controller by one poll. buttonPressed is the button
// level sampled for this poll. The active phase timer either counts down
// by one, or, if it is already zero, the phase transition happens. A
// transition tick never also counts down the phase it enters, so every
// phase is shown for one poll longer than its timer (see CycleTicks).
func (c *Controller) Tick(buttonPressed bool) Outputs {
	c.ticks++

	if buttonPressed {
		c.state.Requested = true
	}

	if c.state.Remaining > 0 {
		c.countDown()
	} else {
		c.advance()
	}

	return c.Outputs()
}

// countDown spends one tick of the active phase
func (c *Controller) countDown() {
	s := &c.state
	s.Remaining--

	switch s.Phase {
	case PhaseGreen:
		// A waiting pedestrian cuts the green short. Amber still runs in full.
		if s.Requested {
			s.Remaining = 0
		}
	case PhaseRed:
		c.crossingStep()
	}
}

// crossingStep runs the pedestrian sub-machine for one red tick
func (c *Controller) crossingStep() {
	s := &c.state

	if !s.Walking {
		// Button pressed after the amber->red boundary: extend this red.
		if s.Requested {
			s.Remaining += WalkTime
			c.startCrossing()
		}
		return
	}

	if s.BeepLeft > 0 {
		s.BeepLeft--
	} else if s.Beeping {
		s.Beeping = false
		s.BeepLeft = BeepOffTime
		c.emit(EventBeepOff, BeepOffTime)
	} else {
		s.Beeping = true
		s.BeepLeft = BeepOnTime
		c.emit(EventBeepOn, BeepOnTime)
	}

	// One crossing per red phase; presses during it are dropped.
	if s.Requested {
		s.Requested = false
		c.emit(EventPressDiscarded, 0)
	}
}

// advance performs the transition out of a phase whose timer has run out
func (c *Controller) advance() {
	s := &c.state

	switch s.Phase {
	case PhaseGreen:
		s.Phase = PhaseAmber
		s.Remaining = AmberTime
		c.emit(EventPhaseChange, uint32(PhaseAmber))

	case PhaseAmber:
		s.Phase = PhaseRed
		s.Remaining = RedTime
		c.emit(EventPhaseChange, uint32(PhaseRed))
		if s.Requested {
			s.Remaining += WalkTime
			c.startCrossing()
		}
		s.Requested = false

	default:
		s.Phase = PhaseGreen
		s.Remaining = GreenTime
		s.Walking = false
		s.Beeping = false
		s.BeepLeft = 0
		c.emit(EventPhaseChange, uint32(PhaseGreen))
	}
}

// startCrossing consumes the request and starts the walk with the buzzer on
func (c *Controller) startCrossing() {
	s := &c.state
	s.Requested = false
	s.Walking = true
	s.Beeping = true
	s.BeepLeft = BeepOnTime
	c.emit(EventCrossingStart, s.Remaining)
}

func (c *Controller) emit(t EventType, value uint32) {
	if c.handler == nil {
		return
	}
	c.handler(Event{
		Type:  t,
		Tick:  c.ticks,
		Phase: c.state.Phase,
		Value: value,
	})
}
