//go:build linux && (arm || arm64)

// Command pelican-rpi runs the crossing signal on a Raspberry Pi
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pelican/config"
	"pelican/core"
	"pelican/host/monitor"
	"pelican/host/udp"
)

var (
	configPath = flag.String("config", "", "Board config JSON (default: Pico pin map on BCM numbers)")
	udpAddr    = flag.String("udp", "", "Send telemetry frames to this UDP address, e.g. 192.168.1.255:7400")
	text       = flag.Bool("text", true, "Print telemetry to stdout")
)

var start = time.Now()

// UpdateSystemTime feeds the core timer from the monotonic clock in us
func UpdateSystemTime() {
	core.SetTime(uint32(time.Since(start).Microseconds()))
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.DefaultPicoConfig()
	cfg.Board = "rpi"
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		if cfg, err = config.LoadConfig(data); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	pins, err := cfg.SignalPins()
	if err != nil {
		return err
	}

	driver, err := NewPiGPIODriver()
	if err != nil {
		return err
	}
	core.SetGPIODriver(driver)

	if cfg.Debug {
		core.SetDebugWriter(func(msg string) { fmt.Fprintln(os.Stderr, msg) })
		core.SetDebugEnabled(true)
		core.InitAsyncDebug()
	}

	sig := core.NewSignal(pins, nil)
	if err := sig.Configure(); err != nil {
		return fmt.Errorf("configure signal: %w", err)
	}
	defer sig.Shutdown()

	UpdateSystemTime()
	if err := sig.Start(cfg.PollPeriod()); err != nil {
		return err
	}

	var conn *udp.Sender
	if *udpAddr != "" {
		conn, err = udp.Dial(*udpAddr)
		if err != nil {
			return fmt.Errorf("telemetry socket: %w", err)
		}
		defer conn.Close()
	}

	var telemetry *core.Telemetry
	telemetry = core.NewTelemetry(sig, func(frame []byte) {
		if conn != nil {
			// Datagrams are best effort; the monitor counts gaps
			_, _ = conn.Write(frame)
		}
		if *text {
			fmt.Println(monitor.FormatReport(telemetry.Snapshot()))
		}
	})
	if period := cfg.TelemetryPeriod(); period > 0 && (conn != nil || *text) {
		telemetry.Start(period)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	fmt.Printf("Running on %s: red=gpio%d amber=gpio%d green=gpio%d button=gpio%d buzzer=gpio%d\n",
		cfg.Board, pins.Red, pins.Amber, pins.Green, pins.Button, pins.Buzzer)

	for {
		select {
		case <-stop:
			fmt.Printf("Stopping after %d ticks, %d faults, %d overruns\n",
				sig.Controller().Ticks(), sig.Faults(), sig.Overruns())
			if cfg.Debug {
				core.DumpEventRing()
			}
			return nil
		default:
		}

		UpdateSystemTime()
		core.ProcessTimers()

		time.Sleep(100 * time.Microsecond)
	}
}
