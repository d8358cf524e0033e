package core

import "time"

// Bring-up helpers for checking breadboard wiring. They block and must
// not be called while a Signal is polling.

// diagSleep is replaced in tests
var diagSleep = time.Sleep

// BlinkHalfPeriod is how long BlinkLED keeps the pin high, then low
const BlinkHalfPeriod = 500 * time.Millisecond

// BlinkLED toggles an output pin on and off n times
func BlinkLED(pin GPIOPin, n int) error {
	gpio := MustGPIO()
	if err := gpio.ConfigureOutput(pin); err != nil {
		return err
	}

	DebugPrintln("[DIAG] blink gpio" + utoa(uint32(pin)) + " x" + itoa(n))
	for i := 0; i < n; i++ {
		if err := gpio.SetPin(pin, true); err != nil {
			return err
		}
		diagSleep(BlinkHalfPeriod)
		if err := gpio.SetPin(pin, false); err != nil {
			return err
		}
		diagSleep(BlinkHalfPeriod)
	}
	return nil
}

// ReadButton configures pin as a pulled-down input and reads it once
func ReadButton(pin GPIOPin) (bool, error) {
	gpio := MustGPIO()
	if err := gpio.ConfigureInputPullDown(pin); err != nil {
		return false, err
	}
	return gpio.GetPin(pin)
}
