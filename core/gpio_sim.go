package core

// SimGPIODriver is an in-memory GPIODriver for host simulation and tests.
// Inputs are driven with SetInput; outputs are observed with Level.
type SimGPIODriver struct {
	outputs map[GPIOPin]bool
	inputs  map[GPIOPin]bool
	pullUp  map[GPIOPin]bool

	// Writes counts SetPin calls per pin
	Writes map[GPIOPin]int

	// FailWrites and FailReads make every SetPin/GetPin return the error
	FailWrites error
	FailReads  error
}

// NewSimGPIODriver creates an empty simulated driver
func NewSimGPIODriver() *SimGPIODriver {
	return &SimGPIODriver{
		outputs: make(map[GPIOPin]bool),
		inputs:  make(map[GPIOPin]bool),
		pullUp:  make(map[GPIOPin]bool),
		Writes:  make(map[GPIOPin]int),
	}
}

func (d *SimGPIODriver) ConfigureOutput(pin GPIOPin) error {
	delete(d.inputs, pin)
	d.outputs[pin] = false
	return nil
}

func (d *SimGPIODriver) ConfigureInputPullUp(pin GPIOPin) error {
	return d.configureInput(pin, true)
}

func (d *SimGPIODriver) ConfigureInputPullDown(pin GPIOPin) error {
	return d.configureInput(pin, false)
}

// configureInput keeps a level already driven with SetInput, otherwise
// the pin idles at its pull level
func (d *SimGPIODriver) configureInput(pin GPIOPin, pullUp bool) error {
	delete(d.outputs, pin)
	if _, ok := d.inputs[pin]; !ok {
		d.inputs[pin] = pullUp
	}
	d.pullUp[pin] = pullUp
	return nil
}

func (d *SimGPIODriver) SetPin(pin GPIOPin, value bool) error {
	if d.FailWrites != nil {
		return d.FailWrites
	}
	if _, ok := d.outputs[pin]; !ok {
		return ErrPinNotConfigured
	}
	d.outputs[pin] = value
	d.Writes[pin]++
	return nil
}

func (d *SimGPIODriver) GetPin(pin GPIOPin) (bool, error) {
	if d.FailReads != nil {
		return false, d.FailReads
	}
	if v, ok := d.inputs[pin]; ok {
		return v, nil
	}
	if v, ok := d.outputs[pin]; ok {
		return v, nil
	}
	return false, ErrPinNotConfigured
}

// SetInput drives the level seen on an input pin
func (d *SimGPIODriver) SetInput(pin GPIOPin, level bool) {
	d.inputs[pin] = level
}

// Level returns the last level written to an output pin
func (d *SimGPIODriver) Level(pin GPIOPin) bool {
	return d.outputs[pin]
}

// IsOutput reports whether pin was configured as an output
func (d *SimGPIODriver) IsOutput(pin GPIOPin) bool {
	_, ok := d.outputs[pin]
	return ok
}

// IsPullUp reports whether an input pin was configured with a pull-up
func (d *SimGPIODriver) IsPullUp(pin GPIOPin) bool {
	return d.pullUp[pin]
}
