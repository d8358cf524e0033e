package core

// Buzzer is the audible crossing signal. Targets with a buzzer driver
// supply their own; PinBuzzer covers a buzzer wired to a plain GPIO.
type Buzzer interface {
	On() error
	Off() error
}

// PinBuzzer drives an active buzzer through the registered GPIO driver
type PinBuzzer struct {
	Pin GPIOPin
}

// Configure sets the buzzer pin as an output
func (b PinBuzzer) Configure() error {
	return MustGPIO().ConfigureOutput(b.Pin)
}

func (b PinBuzzer) On() error {
	return MustGPIO().SetPin(b.Pin, true)
}

func (b PinBuzzer) Off() error {
	return MustGPIO().SetPin(b.Pin, false)
}
