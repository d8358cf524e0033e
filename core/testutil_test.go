package core

import "testing"

var testPins = SignalPins{
	Red:    14,
	Amber:  15,
	Green:  16,
	Button: 17,
	Buzzer: 19,
}

// setupSim installs a fresh simulated driver and clears scheduler state
func setupSim(t *testing.T) *SimGPIODriver {
	t.Helper()
	sim := NewSimGPIODriver()
	SetGPIODriver(sim)
	ResetTimers()
	ClearEventRing()
	SetTime(0)
	t.Cleanup(func() {
		ResetTimers()
		SetGPIODriver(nil)
	})
	return sim
}

func newConfiguredSignal(t *testing.T) (*Signal, *SimGPIODriver) {
	t.Helper()
	sim := setupSim(t)
	s := NewSignal(testPins, nil)
	if err := s.Configure(); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	return s, sim
}

func pollN(t *testing.T, s *Signal, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := s.Poll(); err != nil {
			t.Fatalf("Poll %d failed: %v", i, err)
		}
	}
}
