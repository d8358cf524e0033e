package core

import (
	"errors"

	"pelican/crossing"
)

// ErrSignalNotConfigured is returned by Poll and Start before Configure
var ErrSignalNotConfigured = errors.New("signal not configured")

const outputMask = crossing.OutRed | crossing.OutAmber | crossing.OutGreen | crossing.OutBuzzer

// SignalPins names the GPIO lines of one signal head
type SignalPins struct {
	Red    GPIOPin
	Amber  GPIOPin
	Green  GPIOPin
	Button GPIOPin // Active high, pulled down
	Buzzer GPIOPin // Used when no Buzzer driver is supplied
}

// Signal binds a crossing controller to the GPIO driver: each poll
// samples the button, ticks the controller and drives the lines whose
// level changed.
type Signal struct {
	Pins SignalPins

	ctrl    *crossing.Controller
	buzzer  Buzzer
	handler crossing.EventHandler

	// Last levels driven, as crossing.Out* bits
	applied    uint8
	configured bool

	// Periodic poll
	Timer   Timer
	period  uint32
	running bool

	faults   uint32
	overruns uint32
	lastErr  error
}

// NewSignal creates a signal head. A nil buzzer means a PinBuzzer on
// pins.Buzzer.
func NewSignal(pins SignalPins, buzzer Buzzer) *Signal {
	if buzzer == nil {
		buzzer = PinBuzzer{Pin: pins.Buzzer}
	}
	s := &Signal{
		Pins:   pins,
		ctrl:   crossing.New(),
		buzzer: buzzer,
	}
	s.ctrl.SetEventHandler(s.onEvent)
	return s
}

// Controller returns the state machine driven by this signal
func (s *Signal) Controller() *crossing.Controller {
	return s.ctrl
}

// SetEventHandler registers h to receive controller events after they
// are recorded in the event ring (nil disables)
func (s *Signal) SetEventHandler(h crossing.EventHandler) {
	s.handler = h
}

// Configure sets up the pins and drives the controller's initial outputs
func (s *Signal) Configure() error {
	gpio := MustGPIO()

	for _, pin := range []GPIOPin{s.Pins.Red, s.Pins.Amber, s.Pins.Green} {
		if err := gpio.ConfigureOutput(pin); err != nil {
			return err
		}
	}
	if pb, ok := s.buzzer.(PinBuzzer); ok {
		if err := pb.Configure(); err != nil {
			return err
		}
	}
	if err := gpio.ConfigureInputPullDown(s.Pins.Button); err != nil {
		return err
	}

	// Force every line to be written once
	s.applied = ^s.ctrl.Outputs().Bits() & outputMask
	if err := s.apply(s.ctrl.Outputs()); err != nil {
		return err
	}

	s.configured = true
	return nil
}

// Poll runs one control step. Hardware errors are returned after the
// controller has ticked; the next Poll retries any unwritten lines.
func (s *Signal) Poll() error {
	if !s.configured {
		return ErrSignalNotConfigured
	}

	pressed, err := MustGPIO().GetPin(s.Pins.Button)
	if err != nil {
		// Treat an unreadable button as released and keep the cycle going
		s.fault(err)
		pressed = false
	}

	out := s.ctrl.Tick(pressed)
	if werr := s.apply(out); werr != nil {
		s.fault(werr)
		return werr
	}
	return err
}

// apply drives the lines whose level differs from what was last written
func (s *Signal) apply(out crossing.Outputs) error {
	want := out.Bits()
	changed := want ^ s.applied
	if changed == 0 {
		return nil
	}

	gpio := MustGPIO()
	lines := []struct {
		bit uint8
		pin GPIOPin
	}{
		{crossing.OutRed, s.Pins.Red},
		{crossing.OutAmber, s.Pins.Amber},
		{crossing.OutGreen, s.Pins.Green},
	}

	// Lights off before on, so two lights are never lit together
	for _, on := range []bool{false, true} {
		for _, l := range lines {
			if changed&l.bit == 0 || (want&l.bit != 0) != on {
				continue
			}
			if err := gpio.SetPin(l.pin, on); err != nil {
				return err
			}
			s.applied ^= l.bit
		}
	}

	if changed&crossing.OutBuzzer != 0 {
		var err error
		if out.Buzzer {
			err = s.buzzer.On()
		} else {
			err = s.buzzer.Off()
		}
		if err != nil {
			return err
		}
		s.applied ^= crossing.OutBuzzer
	}
	return nil
}

// Applied returns the output levels last driven successfully
func (s *Signal) Applied() crossing.Outputs {
	return crossing.OutputsFromBits(s.applied)
}

// Start schedules Poll every period timer ticks from now
func (s *Signal) Start(period uint32) error {
	if !s.configured {
		return ErrSignalNotConfigured
	}
	if period == 0 {
		period = 1
	}
	if s.running {
		CancelTimer(&s.Timer)
	}

	s.period = period
	s.running = true
	s.Timer.Next = nil
	s.Timer.WakeTime = GetTime() + period
	s.Timer.Handler = s.pollEvent
	ScheduleTimer(&s.Timer)
	return nil
}

// Stop cancels the periodic poll
func (s *Signal) Stop() {
	if !s.running {
		return
	}
	CancelTimer(&s.Timer)
	s.running = false
}

// Running reports whether the periodic poll is scheduled
func (s *Signal) Running() bool {
	return s.running
}

// pollEvent is the timer handler for the periodic poll
func (s *Signal) pollEvent(t *Timer) uint8 {
	if !s.running {
		return SF_DONE
	}

	_ = s.Poll()

	next := t.WakeTime + s.period
	if !timerBefore(currentTime, next) {
		// Fell behind by a whole period. Skip ahead instead of running
		// a burst of catch-up ticks.
		next = currentTime + s.period
		s.overruns++
	}
	t.WakeTime = next
	return SF_RESCHEDULE
}

// Shutdown stops polling and drives every output low
func (s *Signal) Shutdown() error {
	s.Stop()

	gpio := MustGPIO()
	var first error
	for _, pin := range []GPIOPin{s.Pins.Red, s.Pins.Amber, s.Pins.Green} {
		if err := gpio.SetPin(pin, false); err != nil && first == nil {
			first = err
		}
	}
	if err := s.buzzer.Off(); err != nil && first == nil {
		first = err
	}
	s.applied = 0
	return first
}

// Faults returns how many hardware accesses have failed
func (s *Signal) Faults() uint32 {
	return s.faults
}

// LastError returns the most recent hardware error, or nil
func (s *Signal) LastError() error {
	return s.lastErr
}

// Overruns returns how many times the poll fell a full period behind
func (s *Signal) Overruns() uint32 {
	return s.overruns
}

func (s *Signal) fault(err error) {
	s.faults++
	s.lastErr = err
	RecordEvent(crossing.Event{
		Type:  EvtFault,
		Tick:  s.ctrl.Ticks(),
		Phase: s.ctrl.State().Phase,
		Value: s.faults,
	})
}

func (s *Signal) onEvent(e crossing.Event) {
	evt := RecordEvent(e)
	if debugEnabled {
		DebugAsync(FormatEvent(evt))
	}
	if s.handler != nil {
		s.handler(e)
	}
}
