package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"pelican/config"
	"pelican/core"
	"pelican/crossing"
	"pelican/host/monitor"
	"pelican/host/serial"
	"pelican/host/sim"
	"pelican/host/udp"
	"pelican/protocol"
)

var (
	device     = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud       = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	udpListen  = flag.String("udp", "", "Monitor telemetry datagrams on this address (e.g. :7400) instead of a serial port")
	simulate   = flag.Bool("simulate", false, "Run the controller in virtual time instead of monitoring a board")
	ticks      = flag.Uint("ticks", crossing.CycleTicks, "Polls to simulate")
	press      = flag.String("press", "", "Comma-separated button presses to simulate, as tick or tick:duration")
	configPath = flag.String("config", "", "Board config JSON (default: Pico pin map)")
	telemetry  = flag.Bool("telemetry", false, "Print simulated status reports")
	verbose    = flag.Bool("verbose", false, "Print beep events")
)

func main() {
	flag.Parse()

	fmt.Printf("Pelican Host %s\n", protocol.Version)

	var err error
	if *simulate {
		err = runSimulation()
	} else {
		err = runMonitor()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openSource returns the telemetry stream selected by the flags
func openSource() (io.ReadCloser, error) {
	if *udpListen != "" {
		fmt.Printf("Listening on udp %s...\n", *udpListen)
		conn, err := udp.Listen(*udpListen)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	fmt.Printf("Opening %s...\n", *device)
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := port.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: flush failed: %v\n", err)
	}
	return port, nil
}

func runMonitor() error {
	src, err := openSource()
	if err != nil {
		return err
	}

	mon := monitor.New(src, func(r protocol.StatusReport) {
		fmt.Println(monitor.FormatReport(r))
	})
	mon.Start()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigs:
	case <-mon.Done():
		fmt.Println("Port closed")
	}

	err = mon.Close()
	st := mon.Stats()
	fmt.Printf("\nframes=%d reports=%d lost=%d repeated=%d bad=%d unknown=%d\n",
		st.Frames, st.Reports, st.Lost, st.Repeated, st.BadFrames, st.Unknown)
	return err
}

func runSimulation() error {
	cfg := config.DefaultPicoConfig()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		cfg, err = config.LoadConfig(data)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	presses, err := parsePresses(*press)
	if err != nil {
		return err
	}

	s, err := sim.New(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, p := range presses {
		s.PressAt(p.Tick, p.Duration)
	}

	s.SetEventHandler(func(e crossing.Event) {
		if !*verbose && (e.Type == crossing.EventBeepOn || e.Type == crossing.EventBeepOff) {
			return
		}
		fmt.Printf("%8d  %-15s phase=%-5s value=%d\n", e.Tick, e.Type, e.Phase, e.Value)
	})

	if *telemetry {
		period := cfg.TelemetryPeriod()
		if period == 0 {
			period = core.TimerFromMS(100)
		}
		mon := monitor.New(nil, func(r protocol.StatusReport) {
			fmt.Println(monitor.FormatReport(r))
		})
		s.EnableTelemetry(period, mon.Process)
	}

	out := s.Run(uint32(*ticks))
	st := s.State()
	fmt.Printf("\nafter %d ticks: phase=%s remaining=%d outputs=%+v\n", s.Ticks(), st.Phase, st.Remaining, out)
	return nil
}

// parsePresses reads "100,2500:40" into presses at tick 100 (one poll)
// and tick 2500 (held for 40 polls)
func parsePresses(list string) ([]sim.Press, error) {
	var presses []sim.Press
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		tickStr, durStr, hasDur := strings.Cut(field, ":")
		tick, err := strconv.ParseUint(tickStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid press %q: %w", field, err)
		}
		p := sim.Press{Tick: uint32(tick), Duration: 1}
		if hasDur {
			dur, err := strconv.ParseUint(durStr, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid press %q: %w", field, err)
			}
			p.Duration = uint32(dur)
		}
		presses = append(presses, p)
	}
	return presses, nil
}
