// Package sim runs a signal head against simulated GPIO in virtual time.
//
// The simulator drives the same core.Signal and timer list the firmware
// uses, advancing the clock one poll period per step. core keeps its
// driver and timers in package globals, so only one Simulator may run at
// a time.
package sim

import (
	"sort"

	"pelican/config"
	"pelican/core"
	"pelican/crossing"
)

// Press holds the button down for Duration polls starting at poll Tick
// (1-based, matching Controller.Ticks after the poll)
type Press struct {
	Tick     uint32
	Duration uint32
}

// Simulator owns a simulated board
type Simulator struct {
	GPIO   *core.SimGPIODriver
	Signal *core.Signal

	pins   core.SignalPins
	period uint32

	presses []Press
	events  []crossing.Event
	onEvent crossing.EventHandler

	telemetry *core.Telemetry
}

// New builds a simulator for cfg. A nil cfg uses the Pico defaults.
func New(cfg *config.BoardConfig) (*Simulator, error) {
	if cfg == nil {
		cfg = config.DefaultPicoConfig()
	}
	pins, err := cfg.SignalPins()
	if err != nil {
		return nil, err
	}

	gpio := core.NewSimGPIODriver()
	core.SetGPIODriver(gpio)
	core.ResetTimers()
	core.ClearEventRing()
	core.SetTime(0)

	s := &Simulator{
		GPIO:   gpio,
		Signal: core.NewSignal(pins, nil),
		pins:   pins,
		period: cfg.PollPeriod(),
	}
	if s.period == 0 {
		s.period = 1
	}
	s.Signal.SetEventHandler(s.record)

	if err := s.Signal.Configure(); err != nil {
		return nil, err
	}
	if err := s.Signal.Start(s.period); err != nil {
		return nil, err
	}
	return s, nil
}

// SetEventHandler forwards each controller event to h as it happens
func (s *Simulator) SetEventHandler(h crossing.EventHandler) {
	s.onEvent = h
}

// EnableTelemetry sends status frames to write every period timer ticks
// of virtual time
func (s *Simulator) EnableTelemetry(period uint32, write core.FrameWriter) {
	if s.telemetry != nil {
		s.telemetry.Stop()
	}
	s.telemetry = core.NewTelemetry(s.Signal, write)
	s.telemetry.Start(period)
}

// PressAt schedules a button press. A zero duration is one poll.
func (s *Simulator) PressAt(tick, duration uint32) {
	if duration == 0 {
		duration = 1
	}
	s.presses = append(s.presses, Press{Tick: tick, Duration: duration})
	sort.Slice(s.presses, func(i, j int) bool {
		return s.presses[i].Tick < s.presses[j].Tick
	})
}

// Step advances virtual time by one poll period
func (s *Simulator) Step() {
	next := s.Signal.Controller().Ticks() + 1
	s.GPIO.SetInput(s.pins.Button, s.pressedAt(next))

	core.SetTime(core.GetTime() + s.period)
	core.ProcessTimers()
}

// Run advances n polls and returns the outputs after the last one
func (s *Simulator) Run(n uint32) crossing.Outputs {
	for i := uint32(0); i < n; i++ {
		s.Step()
	}
	return s.Outputs()
}

// RunCycles advances n complete unextended signal cycles
func (s *Simulator) RunCycles(n uint32) crossing.Outputs {
	return s.Run(n * crossing.CycleTicks)
}

// Outputs returns the levels currently on the simulated pins
func (s *Simulator) Outputs() crossing.Outputs {
	return crossing.Outputs{
		Red:    s.GPIO.Level(s.pins.Red),
		Amber:  s.GPIO.Level(s.pins.Amber),
		Green:  s.GPIO.Level(s.pins.Green),
		Buzzer: s.GPIO.Level(s.pins.Buzzer),
	}
}

// State returns the controller state
func (s *Simulator) State() crossing.State {
	return s.Signal.Controller().State()
}

// Ticks returns the number of polls run
func (s *Simulator) Ticks() uint32 {
	return s.Signal.Controller().Ticks()
}

// Events returns every event recorded so far
func (s *Simulator) Events() []crossing.Event {
	return s.events
}

// Close stops the signal and releases the simulated driver
func (s *Simulator) Close() error {
	if s.telemetry != nil {
		s.telemetry.Stop()
	}
	err := s.Signal.Shutdown()
	core.ResetTimers()
	core.SetGPIODriver(nil)
	return err
}

func (s *Simulator) pressedAt(tick uint32) bool {
	for _, p := range s.presses {
		if p.Tick > tick {
			break
		}
		if tick-p.Tick < p.Duration {
			return true
		}
	}
	return false
}

func (s *Simulator) record(e crossing.Event) {
	s.events = append(s.events, e)
	if s.onEvent != nil {
		s.onEvent(e)
	}
}
