//go:build rp2040

package main

import (
	"machine"
	"strconv"
	"time"

	"pelican/config"
	"pelican/core"
)

var (
	// debugBuild turns on USB debug output:
	//   tinygo flash -target pico -ldflags "-X main.debugBuild=true" ./targets/rp2040
	debugBuild string

	// Debug counters
	usbWriteErrors uint32
	panics         uint32
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()

	cfg := config.DefaultPicoConfig()
	cfg.Debug = config.BuildFlag(debugBuild)
	pins, err := cfg.SignalPins()
	if err != nil {
		haltBlink()
	}

	core.SetGPIODriver(NewRPGPIODriver())

	mode := GetMode(pins)

	// Diagnostics always report over USB
	if cfg.Debug || mode.Diagnostics {
		core.SetDebugWriter(usbDebugWriter)
		core.SetDebugEnabled(true)
		core.InitAsyncDebug()
	}

	if mode.Diagnostics {
		runDiagnostics(pins)
	}

	signal := core.NewSignal(pins, newPiezoBuzzer(pins.Buzzer))
	if err := signal.Configure(); err != nil {
		core.DebugPrintln("[MAIN] configure failed: " + err.Error())
		haltBlink()
	}

	UpdateSystemTime()
	if err := signal.Start(cfg.PollPeriod()); err != nil {
		haltBlink()
	}

	if period := cfg.TelemetryPeriod(); period > 0 {
		telemetry := core.NewTelemetry(signal, func(frame []byte) {
			if _, err := USBWriteBytes(frame); err != nil {
				usbWriteErrors++
				core.DebugAsync("[USB] write failed: " + err.Error() +
					" errors=" + strconv.FormatUint(uint64(usbWriteErrors), 10))
			}
		})
		telemetry.Start(period)
	}

	// Main loop
	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					panics++
					core.DebugPrintln("[MAIN] recovered panic #" + strconv.FormatUint(uint64(panics), 10))
					core.DumpEventRing()
				}
			}()

			UpdateSystemTime()
			core.ProcessTimers()
		}()

		// Yield to other goroutines
		time.Sleep(10 * time.Microsecond)
	}
}

// haltBlink flashes the onboard LED forever after a setup failure
func haltBlink() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
