package crossing

import (
	"math/rand"
	"testing"
)

// run ticks the controller n times with the same button level
func run(c *Controller, n int, pressed bool) Outputs {
	var out Outputs
	for i := 0; i < n; i++ {
		out = c.Tick(pressed)
	}
	return out
}

// toAmber drives a fresh controller to the first tick of amber
// with a latched request, using the green short-circuit.
func toAmber(t *testing.T, c *Controller) {
	t.Helper()
	c.Tick(true)
	if out := c.Tick(false); !out.Amber {
		t.Fatalf("expected amber, got %+v", out)
	}
}

// toRed drives a fresh controller through an unrequested green and amber
func toRed(t *testing.T, c *Controller) {
	t.Helper()
	run(c, GreenTime+1+AmberTime+1, false)
	if c.State().Phase != PhaseRed {
		t.Fatalf("expected red, got %v", c.State().Phase)
	}
}

func checkInvariants(t *testing.T, c *Controller, tick int) {
	t.Helper()
	s := c.State()
	out := c.Outputs()

	lit := 0
	for _, on := range []bool{out.Red, out.Amber, out.Green} {
		if on {
			lit++
		}
	}
	if lit != 1 {
		t.Fatalf("tick %d: %d lights on: %+v", tick, lit, out)
	}
	if (s.Phase == PhaseRed) != out.Red || (s.Phase == PhaseAmber) != out.Amber || (s.Phase == PhaseGreen) != out.Green {
		t.Fatalf("tick %d: outputs %+v do not match phase %v", tick, out, s.Phase)
	}
	if s.Beeping && !s.Walking {
		t.Fatalf("tick %d: beeping without walking", tick)
	}
	if s.Walking && s.Phase != PhaseRed {
		t.Fatalf("tick %d: walking during %v", tick, s.Phase)
	}
	if out.Buzzer != s.Beeping {
		t.Fatalf("tick %d: buzzer %v but beeping %v", tick, out.Buzzer, s.Beeping)
	}
	if s.BeepLeft > BeepOffTime {
		t.Fatalf("tick %d: beep timer %d out of range", tick, s.BeepLeft)
	}
	if s.Remaining > RedTime+WalkTime {
		t.Fatalf("tick %d: phase timer %d out of range", tick, s.Remaining)
	}
}

func TestNewController(t *testing.T) {
	c := New()

	if c.State() != InitialState() {
		t.Errorf("Expected initial state %+v, got %+v", InitialState(), c.State())
	}
	if c.Ticks() != 0 {
		t.Errorf("Expected 0 ticks, got %d", c.Ticks())
	}

	want := Outputs{Green: true}
	if c.Outputs() != want {
		t.Errorf("Expected outputs %+v, got %+v", want, c.Outputs())
	}
}

func TestUnrequestedPhaseSequence(t *testing.T) {
	c := New()

	var changes []Phase
	c.SetEventHandler(func(e Event) {
		if e.Type == EventPhaseChange {
			changes = append(changes, e.Phase)
		}
	})

	run(c, GreenTime, false)
	s := c.State()
	if s.Phase != PhaseGreen || s.Remaining != 0 {
		t.Fatalf("After %d ticks expected green with timer 0, got %+v", GreenTime, s)
	}
	if len(changes) != 0 {
		t.Fatalf("Expected no transition yet, got %v", changes)
	}

	out := c.Tick(false)
	if !out.Amber || out.Green || out.Red {
		t.Fatalf("Expected amber only, got %+v", out)
	}
	if c.State().Remaining != AmberTime {
		t.Errorf("Expected amber timer %d, got %d", AmberTime, c.State().Remaining)
	}

	run(c, AmberTime, false)
	if c.State().Phase != PhaseAmber {
		t.Fatalf("Amber ended early: %+v", c.State())
	}

	out = c.Tick(false)
	if !out.Red || out.Amber || out.Green || out.Buzzer {
		t.Fatalf("Expected red only, got %+v", out)
	}
	if c.State().Remaining != RedTime {
		t.Errorf("Expected red timer %d, got %d", RedTime, c.State().Remaining)
	}
	if c.State().Walking {
		t.Error("Unrequested red must not start a crossing")
	}

	if len(changes) != 2 || changes[0] != PhaseAmber || changes[1] != PhaseRed {
		t.Errorf("Expected [amber red], got %v", changes)
	}
}

func TestRequestShortensGreen(t *testing.T) {
	tests := []struct {
		name      string
		greenRuns int
	}{
		{"first tick", 0},
		{"mid green", 750},
		{"last counting tick", GreenTime - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			run(c, tt.greenRuns, false)

			out := c.Tick(true)
			s := c.State()
			if !out.Green || s.Remaining != 0 || !s.Requested {
				t.Fatalf("Expected green with timer zeroed and request latched, got %+v", s)
			}

			out = c.Tick(false)
			if !out.Amber {
				t.Fatalf("Expected amber on the tick after the press, got %+v", out)
			}
			if !c.State().Requested {
				t.Error("Request must stay latched through amber")
			}
		})
	}
}

func TestRequestDoesNotShortenAmber(t *testing.T) {
	c := New()
	toAmber(t, c)

	// Hold the button through the whole amber phase.
	amberTicks := 1 // the transition tick
	for {
		out := c.Tick(true)
		if !out.Amber {
			break
		}
		amberTicks++
	}

	if amberTicks != AmberTime+1 {
		t.Errorf("Expected amber to last %d ticks, got %d", AmberTime+1, amberTicks)
	}
}

func TestRequestDuringAmberStartsCrossing(t *testing.T) {
	c := New()
	run(c, GreenTime+1, false)
	if c.State().Phase != PhaseAmber {
		t.Fatalf("Expected amber, got %v", c.State().Phase)
	}

	c.Tick(true)
	run(c, AmberTime-1, false)
	if c.State().Phase != PhaseAmber || c.State().Remaining != 0 {
		t.Fatalf("Expected exhausted amber, got %+v", c.State())
	}

	var starts []Event
	c.SetEventHandler(func(e Event) {
		if e.Type == EventCrossingStart {
			starts = append(starts, e)
		}
	})

	out := c.Tick(false)
	s := c.State()
	want := State{
		Phase:     PhaseRed,
		Remaining: RedTime + WalkTime,
		Walking:   true,
		Beeping:   true,
		BeepLeft:  BeepOnTime,
	}
	if s != want {
		t.Fatalf("Expected %+v, got %+v", want, s)
	}
	if !out.Red || !out.Buzzer {
		t.Errorf("Expected red and buzzer, got %+v", out)
	}
	if len(starts) != 1 || starts[0].Value != RedTime+WalkTime {
		t.Errorf("Expected one crossing start with value %d, got %+v", RedTime+WalkTime, starts)
	}
}

func TestBeepPattern(t *testing.T) {
	c := New()
	toAmber(t, c)
	run(c, AmberTime+1, false)
	if !c.State().Walking {
		t.Fatalf("Expected crossing to start, got %+v", c.State())
	}

	// Index 0 is the amber->red tick. The tick that toggles the buzzer
	// belongs to the new period, so on lasts BeepOnTime+1 ticks and off
	// lasts BeepOffTime+1 ticks.
	const period = BeepOnTime + 1 + BeepOffTime + 1
	redTicks := RedTime + WalkTime + 1

	for i := 0; i < redTicks; i++ {
		var out Outputs
		if i == 0 {
			out = c.Outputs()
		} else {
			out = c.Tick(false)
		}
		if !out.Red {
			t.Fatalf("Red ended early at red tick %d", i)
		}
		want := i%period < BeepOnTime+1
		if out.Buzzer != want {
			t.Fatalf("Red tick %d: expected buzzer %v, got %v", i, want, out.Buzzer)
		}
		checkInvariants(t, c, i)
	}

	out := c.Tick(false)
	if !out.Green || out.Buzzer {
		t.Fatalf("Expected green with buzzer off after the crossing, got %+v", out)
	}
	if c.State() != InitialState() {
		t.Errorf("Expected initial state after crossing, got %+v", c.State())
	}
}

func TestRequestDuringPlainRedExtends(t *testing.T) {
	c := New()
	toRed(t, c)

	run(c, 500, false)
	if c.State().Remaining != RedTime-500 {
		t.Fatalf("Expected red timer %d, got %d", RedTime-500, c.State().Remaining)
	}

	out := c.Tick(true)
	s := c.State()
	if !s.Walking || !s.Beeping || s.Requested || s.BeepLeft != BeepOnTime {
		t.Fatalf("Expected crossing to start, got %+v", s)
	}
	if s.Remaining != RedTime-501+WalkTime {
		t.Errorf("Expected red timer %d, got %d", RedTime-501+WalkTime, s.Remaining)
	}
	if !out.Buzzer {
		t.Error("Expected buzzer on at crossing start")
	}
}

func TestRequestOnLastRedTickExtends(t *testing.T) {
	c := New()
	toRed(t, c)

	run(c, RedTime-1, false)
	c.Tick(true)

	s := c.State()
	if s.Phase != PhaseRed || !s.Walking || s.Remaining != WalkTime {
		t.Fatalf("Expected a walk-only red extension, got %+v", s)
	}
}

func TestPressDuringCrossingIsDiscarded(t *testing.T) {
	c := New()
	toAmber(t, c)
	run(c, AmberTime+1, false)
	if !c.State().Walking {
		t.Fatalf("Expected crossing, got %+v", c.State())
	}

	discarded := 0
	starts := 0
	c.SetEventHandler(func(e Event) {
		switch e.Type {
		case EventPressDiscarded:
			discarded++
		case EventCrossingStart:
			starts++
		}
	})

	before := c.State().Remaining
	for i := 1; i <= 300; i++ {
		c.Tick(true)
		s := c.State()
		if s.Remaining != before-uint32(i) {
			t.Fatalf("Press %d changed the red timer: expected %d, got %d", i, before-uint32(i), s.Remaining)
		}
		if s.Requested {
			t.Fatalf("Press %d stayed latched during the crossing", i)
		}
	}

	if discarded != 300 {
		t.Errorf("Expected 300 discarded presses, got %d", discarded)
	}
	if starts != 0 {
		t.Errorf("Expected no second crossing, got %d", starts)
	}

	// The red phase ends on schedule and the next green is a full one.
	for c.State().Phase == PhaseRed {
		c.Tick(false)
	}
	if c.State() != InitialState() {
		t.Errorf("Expected initial state after red, got %+v", c.State())
	}
}

func TestPressOnRedToGreenTickCarriesOver(t *testing.T) {
	c := New()
	toRed(t, c)
	run(c, RedTime, false)

	out := c.Tick(true)
	s := c.State()
	if !out.Green || !s.Requested || s.Remaining != GreenTime {
		t.Fatalf("Expected green with latched request, got %+v", s)
	}

	c.Tick(false)
	if c.State().Remaining != 0 {
		t.Errorf("Expected the carried request to cut green, got timer %d", c.State().Remaining)
	}
}

func TestIdleCycleRoundTrip(t *testing.T) {
	c := New()

	for cycle := 0; cycle < 10; cycle++ {
		run(c, CycleTicks, false)
		if c.State() != InitialState() {
			t.Fatalf("Cycle %d: expected %+v, got %+v", cycle, InitialState(), c.State())
		}
	}

	if c.Ticks() != 10*CycleTicks {
		t.Errorf("Expected %d ticks, got %d", 10*CycleTicks, c.Ticks())
	}
}

func TestBeepEvents(t *testing.T) {
	c := New()

	on, off := 0, 0
	c.SetEventHandler(func(e Event) {
		switch e.Type {
		case EventBeepOn:
			on++
			if e.Value != BeepOnTime {
				t.Errorf("Beep on event value %d", e.Value)
			}
		case EventBeepOff:
			off++
			if e.Value != BeepOffTime {
				t.Errorf("Beep off event value %d", e.Value)
			}
		}
	})

	toAmber(t, c)
	for {
		c.Tick(false)
		if c.State().Phase == PhaseGreen {
			break
		}
	}

	// 4001 red ticks hold 7 full periods plus an on period and part of an off period.
	if off != 8 || on != 7 {
		t.Errorf("Expected 8 off and 7 on toggles, got %d off and %d on", off, on)
	}
}

func TestInvariantsUnderRandomPresses(t *testing.T) {
	c := New()
	rng := rand.New(rand.NewSource(42))

	startsThisRed := 0
	c.SetEventHandler(func(e Event) {
		switch e.Type {
		case EventCrossingStart:
			startsThisRed++
			if startsThisRed > 1 {
				t.Fatalf("Tick %d: second crossing in one red phase", e.Tick)
			}
		case EventPhaseChange:
			if e.Phase == PhaseRed {
				startsThisRed = 0
			}
		}
	})

	for i := 0; i < 200000; i++ {
		// Dense and sparse presses both show up across the run.
		pressed := rng.Intn(1000) == 0
		if (i/20000)%2 == 1 {
			pressed = rng.Intn(10) == 0
		}
		c.Tick(pressed)
		checkInvariants(t, c, i)
	}
}

func TestOutputsBits(t *testing.T) {
	for b := uint8(0); b < 16; b++ {
		if got := OutputsFromBits(b).Bits(); got != b {
			t.Errorf("Bits(OutputsFromBits(%#x)) = %#x", b, got)
		}
	}

	if got := (Outputs{Red: true, Buzzer: true}).Bits(); got != OutRed|OutBuzzer {
		t.Errorf("Expected %#x, got %#x", OutRed|OutBuzzer, got)
	}
}

func TestPhaseString(t *testing.T) {
	tests := map[Phase]string{
		PhaseGreen: "green",
		PhaseAmber: "amber",
		PhaseRed:   "red",
		Phase(9):   "unknown",
	}
	for p, want := range tests {
		if p.String() != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, p.String(), want)
		}
	}
}

func TestPhaseRunLengths(t *testing.T) {
	c := New()

	// Polls spent showing each light, counted from power-up through one
	// idle cycle
	shown := map[Phase]int{}
	for i := 0; i < CycleTicks; i++ {
		out := c.Tick(false)
		switch {
		case out.Green:
			shown[PhaseGreen]++
		case out.Amber:
			shown[PhaseAmber]++
		case out.Red:
			shown[PhaseRed]++
		}
	}

	// Green counts GreenTime polls after power-up plus the tick that
	// returns to green at the end of the window
	want := map[Phase]int{
		PhaseGreen: GreenTime + 1,
		PhaseAmber: AmberTime + 1,
		PhaseRed:   RedTime + 1,
	}
	for p, n := range want {
		if shown[p] != n {
			t.Errorf("%v shown for %d polls, want %d", p, shown[p], n)
		}
	}
}
