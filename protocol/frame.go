package protocol

import "errors"

// ErrFrameTooLong is returned when a payload does not fit in one frame
var ErrFrameTooLong = errors.New("frame payload too long")

// Frame is one decoded message block
type Frame struct {
	Seq     uint8 // Low nibble of the sequence byte
	Payload []byte
}

// EncodeFrame writes a complete frame around the payload produced by
// payload. seq is masked to its low nibble.
func EncodeFrame(out OutputBuffer, seq uint8, payload func(OutputBuffer)) error {
	cursor := out.CurPosition()

	// Length placeholder, sequence
	out.Output([]byte{0, MessageDest | (seq & MessageSeqMask)})

	payload(out)

	msgLen := len(out.DataSince(cursor)) + MessageTrailerSize
	if msgLen > MessageLengthMax {
		return ErrFrameTooLong
	}
	out.Update(cursor, uint8(msgLen))

	crc := CRC16(out.DataSince(cursor))
	out.Output([]byte{
		uint8((crc & 0xFF00) >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})
	return nil
}

// FrameDecoder reassembles frames from a byte stream. On a bad length,
// sequence byte, trailer or CRC it drops bytes up to the next sync byte.
type FrameDecoder struct {
	buf          *FifoBuffer
	synchronized bool
	dropped      uint32
}

// NewFrameDecoder creates a decoder buffering up to capacity bytes
func NewFrameDecoder(capacity int) *FrameDecoder {
	if capacity < MessageLengthMax+1 {
		capacity = MessageLengthMax + 1
	}
	return &FrameDecoder{
		buf:          NewFifoBuffer(capacity),
		synchronized: true,
	}
}

// Dropped returns how many times the decoder lost sync
func (d *FrameDecoder) Dropped() uint32 {
	return d.dropped
}

// Feed adds received bytes and returns every frame completed by them
func (d *FrameDecoder) Feed(data []byte) []Frame {
	var frames []Frame
	for len(data) > 0 {
		n := d.buf.Write(data)
		data = data[n:]
		frames = append(frames, d.parse()...)
	}
	return frames
}

// Reset discards buffered bytes
func (d *FrameDecoder) Reset() {
	d.buf.Reset()
	d.synchronized = true
}

func (d *FrameDecoder) parse() []Frame {
	var frames []Frame
	data := d.buf.Data()
	start := len(data)

	for len(data) > 0 {
		if !d.synchronized {
			syncPos := -1
			for i, b := range data {
				if b == MessageValueSync {
					syncPos = i
					break
				}
			}
			if syncPos < 0 {
				data = nil
				break
			}
			data = data[syncPos+1:]
			d.synchronized = true
			continue
		}

		// Skip leading sync bytes
		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}

		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			d.desync()
			continue
		}

		seq := data[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			d.desync()
			continue
		}

		// Wait for the full message
		if len(data) < msgLen {
			break
		}

		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			d.desync()
			continue
		}

		frameCRC := uint16(data[msgLen-MessageTrailerCRC])<<8 |
			uint16(data[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(data[:msgLen-MessageTrailerSize]) {
			d.desync()
			continue
		}

		payload := make([]byte, msgLen-MessageLengthMin)
		copy(payload, data[MessageHeaderSize:msgLen-MessageTrailerSize])
		frames = append(frames, Frame{Seq: seq & MessageSeqMask, Payload: payload})
		data = data[msgLen:]
	}

	d.buf.Pop(start - len(data))
	return frames
}

func (d *FrameDecoder) desync() {
	d.synchronized = false
	d.dropped++
}
