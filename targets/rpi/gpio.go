//go:build linux && (arm || arm64)

package main

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"pelican/core"
)

// PiGPIODriver implements the GPIODriver interface on a Raspberry Pi using
// periph.io. Pins are BCM numbers.
type PiGPIODriver struct {
	pins map[core.GPIOPin]gpio.PinIO
}

// NewPiGPIODriver initialises the periph host drivers
func NewPiGPIODriver() (*PiGPIODriver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	return &PiGPIODriver{pins: make(map[core.GPIOPin]gpio.PinIO)}, nil
}

func (d *PiGPIODriver) lookup(pin core.GPIOPin) (gpio.PinIO, error) {
	if p, ok := d.pins[pin]; ok {
		return p, nil
	}
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", pin))
	if p == nil {
		return nil, fmt.Errorf("gpio%d: %w", pin, core.ErrPinNotConfigured)
	}
	return p, nil
}

// ConfigureOutput configures a pin as an output driven low
func (d *PiGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	p, err := d.lookup(pin)
	if err != nil {
		return err
	}
	if err := p.Out(gpio.Low); err != nil {
		return fmt.Errorf("gpio%d out: %w", pin, err)
	}
	d.pins[pin] = p
	return nil
}

func (d *PiGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	return d.configureInput(pin, gpio.PullUp)
}

func (d *PiGPIODriver) ConfigureInputPullDown(pin core.GPIOPin) error {
	return d.configureInput(pin, gpio.PullDown)
}

func (d *PiGPIODriver) configureInput(pin core.GPIOPin, pull gpio.Pull) error {
	p, err := d.lookup(pin)
	if err != nil {
		return err
	}
	// Polled; no edge detection
	if err := p.In(pull, gpio.NoEdge); err != nil {
		return fmt.Errorf("gpio%d in: %w", pin, err)
	}
	d.pins[pin] = p
	return nil
}

// SetPin drives a configured output
func (d *PiGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	p, ok := d.pins[pin]
	if !ok {
		return core.ErrPinNotConfigured
	}
	return p.Out(gpio.Level(value))
}

// GetPin reads a configured pin
func (d *PiGPIODriver) GetPin(pin core.GPIOPin) (bool, error) {
	p, ok := d.pins[pin]
	if !ok {
		return false, core.ErrPinNotConfigured
	}
	return p.Read() == gpio.High, nil
}
