//go:build rp2040

package main

import (
	"machine"
)

// InitUSB initializes USB serial communication.
// On RP2040, machine.Serial is USB CDC, set up by the TinyGo runtime.
func InitUSB() {
	_ = machine.Serial.Configure(machine.UARTConfig{})
}

// USBWriteBytes writes a telemetry frame to USB
func USBWriteBytes(data []byte) (int, error) {
	return machine.Serial.Write(data)
}

// usbDebugWriter prints debug lines on the USB console
func usbDebugWriter(msg string) {
	machine.Serial.Write([]byte(msg))
	machine.Serial.Write([]byte("\r\n"))
}
