// Package protocol implements the telemetry link between a crossing
// controller board and a host.
//
// Frames reuse the Klipper message block layout:
//
//	<len> <seq> <payload...> <crc16 hi> <crc16 lo> <sync 0x7E>
//
// with VLQ-encoded integers in the payload.
package protocol

// Version is the telemetry protocol version reported by host tools
const Version = "0.1.0"

// Frame layout constants
const (
	MessageMax         = 256 // Scratch buffer size
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10

	MessageSeqMask = 0x0F
)

// Message IDs, the first VLQ of every payload
const (
	MsgStatus = 1
)
