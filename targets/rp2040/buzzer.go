//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/buzzer"

	"pelican/core"
)

// piezoBuzzer drives the crossing buzzer through the TinyGo buzzer driver
type piezoBuzzer struct {
	dev buzzer.Device
}

// newPiezoBuzzer configures pin as an output and wraps it
func newPiezoBuzzer(pin core.GPIOPin) *piezoBuzzer {
	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	return &piezoBuzzer{dev: buzzer.New(p)}
}

func (b *piezoBuzzer) On() error {
	return b.dev.On()
}

func (b *piezoBuzzer) Off() error {
	return b.dev.Off()
}
