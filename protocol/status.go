package protocol

import "errors"

// ErrUnexpectedMessage is returned when a payload carries another message ID
var ErrUnexpectedMessage = errors.New("unexpected message id")

// Status flag bits
const (
	StatusRequested = 1 << 0
	StatusWalking   = 1 << 1
	StatusBeeping   = 1 << 2
)

// StatusReport is the periodic snapshot a board sends to the host
type StatusReport struct {
	Clock     uint32 // Board timer clock when the report was taken
	Tick      uint32 // Controller ticks executed
	Phase     uint8
	Remaining uint32 // Ticks left in the phase
	Flags     uint8  // Status* bits
	BeepLeft  uint32
	Outputs   uint8  // Output bits as driven
	Faults    uint32 // Hardware access failures so far
}

// Encode writes the report payload, message ID first
func (r *StatusReport) Encode(out OutputBuffer) {
	EncodeVLQUint(out, MsgStatus)
	EncodeVLQUint(out, r.Clock)
	EncodeVLQUint(out, r.Tick)
	EncodeVLQUint(out, uint32(r.Phase))
	EncodeVLQUint(out, r.Remaining)
	EncodeVLQUint(out, uint32(r.Flags))
	EncodeVLQUint(out, r.BeepLeft)
	EncodeVLQUint(out, uint32(r.Outputs))
	EncodeVLQUint(out, r.Faults)
}

// DecodeStatus parses a status payload as written by Encode
func DecodeStatus(payload []byte) (StatusReport, error) {
	var r StatusReport

	id, err := DecodeVLQUint(&payload)
	if err != nil {
		return r, err
	}
	if id != MsgStatus {
		return r, ErrUnexpectedMessage
	}

	fields := [8]uint32{}
	for i := range fields {
		fields[i], err = DecodeVLQUint(&payload)
		if err != nil {
			return r, err
		}
	}

	r.Clock = fields[0]
	r.Tick = fields[1]
	r.Phase = uint8(fields[2])
	r.Remaining = fields[3]
	r.Flags = uint8(fields[4])
	r.BeepLeft = fields[5]
	r.Outputs = uint8(fields[6])
	r.Faults = fields[7]
	return r, nil
}

// Requested reports whether a pedestrian request was latched
func (r *StatusReport) Requested() bool { return r.Flags&StatusRequested != 0 }

// Walking reports whether a crossing was active
func (r *StatusReport) Walking() bool { return r.Flags&StatusWalking != 0 }

// Beeping reports whether the buzzer was sounding
func (r *StatusReport) Beeping() bool { return r.Flags&StatusBeeping != 0 }
