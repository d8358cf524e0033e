package crossing

// Phase is the signal colour currently shown to road traffic.
type Phase uint8

const (
	PhaseGreen Phase = iota
	PhaseAmber
	PhaseRed
)

func (p Phase) String() string {
	switch p {
	case PhaseGreen:
		return "green"
	case PhaseAmber:
		return "amber"
	case PhaseRed:
		return "red"
	default:
		return "unknown"
	}
}

// Outputs is the level each signal line should be driven to after a tick.
type Outputs struct {
	Red    bool
	Amber  bool
	Green  bool
	Buzzer bool
}

// Output bit positions used when packing Outputs into a byte
const (
	OutRed    = 1 << 0
	OutAmber  = 1 << 1
	OutGreen  = 1 << 2
	OutBuzzer = 1 << 3
)

// Bits packs the outputs into OutRed|OutAmber|OutGreen|OutBuzzer.
func (o Outputs) Bits() uint8 {
	var b uint8
	if o.Red {
		b |= OutRed
	}
	if o.Amber {
		b |= OutAmber
	}
	if o.Green {
		b |= OutGreen
	}
	if o.Buzzer {
		b |= OutBuzzer
	}
	return b
}

// OutputsFromBits is the inverse of Outputs.Bits.
func OutputsFromBits(b uint8) Outputs {
	return Outputs{
		Red:    b&OutRed != 0,
		Amber:  b&OutAmber != 0,
		Green:  b&OutGreen != 0,
		Buzzer: b&OutBuzzer != 0,
	}
}
