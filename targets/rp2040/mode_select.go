//go:build rp2040

package main

import (
	"time"

	"pelican/core"
)

// ModeConfig determines which mode to run
type ModeConfig struct {
	// Run the bring-up diagnostics instead of the signal
	Diagnostics bool
}

// GetMode returns the mode for this boot.
// Holding the call button during power-up selects diagnostics.
func GetMode(pins core.SignalPins) ModeConfig {
	held, err := core.ReadButton(pins.Button)
	if err != nil {
		return ModeConfig{}
	}
	return ModeConfig{Diagnostics: held}
}

// runDiagnostics blinks each output in turn, then echoes the button onto
// the green light forever
func runDiagnostics(pins core.SignalPins) {
	for _, pin := range []core.GPIOPin{pins.Red, pins.Amber, pins.Green, pins.Buzzer} {
		if err := core.BlinkLED(pin, 3); err != nil {
			core.DebugPrintln("[DIAG] blink failed: " + err.Error())
		}
	}

	gpio := core.MustGPIO()
	for {
		pressed, err := core.ReadButton(pins.Button)
		if err == nil {
			_ = gpio.SetPin(pins.Green, pressed)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
