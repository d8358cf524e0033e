// Package config loads the board description for a crossing signal:
// which GPIO drives which line and how often the loop runs.
// Signal timing is fixed in package crossing and is not configurable.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pelican/core"
)

// DefaultTelemetryMS is the status report interval when none is configured
const DefaultTelemetryMS = 100

var (
	ErrUnknownPin   = errors.New("unknown pin name")
	ErrDuplicatePin = errors.New("pin assigned twice")
)

// BoardConfig describes one board wired to one signal head
type BoardConfig struct {
	Board string `json:"board"` // "pico", "rpi", "sim"

	RedPin    string `json:"red_pin"`
	AmberPin  string `json:"amber_pin"`
	GreenPin  string `json:"green_pin"`
	ButtonPin string `json:"button_pin"`
	BuzzerPin string `json:"buzzer_pin"`

	// PollIntervalUS is the time between controller ticks
	PollIntervalUS uint32 `json:"poll_interval_us"`

	// TelemetryIntervalMS is the time between status reports. Omitted
	// means DefaultTelemetryMS; an explicit 0 disables them.
	TelemetryIntervalMS *uint32 `json:"telemetry_interval_ms,omitempty"`

	Debug bool `json:"debug"`
}

// LoadConfig parses a JSON configuration and fills in defaults
func LoadConfig(jsonData []byte) (*BoardConfig, error) {
	var cfg BoardConfig

	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if _, err := cfg.SignalPins(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in missing values from the Pico wiring
func applyDefaults(cfg *BoardConfig) {
	def := DefaultPicoConfig()

	if cfg.Board == "" {
		cfg.Board = def.Board
	}
	if cfg.RedPin == "" {
		cfg.RedPin = def.RedPin
	}
	if cfg.AmberPin == "" {
		cfg.AmberPin = def.AmberPin
	}
	if cfg.GreenPin == "" {
		cfg.GreenPin = def.GreenPin
	}
	if cfg.ButtonPin == "" {
		cfg.ButtonPin = def.ButtonPin
	}
	if cfg.BuzzerPin == "" {
		cfg.BuzzerPin = def.BuzzerPin
	}
	if cfg.PollIntervalUS == 0 {
		cfg.PollIntervalUS = def.PollIntervalUS
	}
	if cfg.TelemetryIntervalMS == nil {
		cfg.TelemetryIntervalMS = def.TelemetryIntervalMS
	}
}

// DefaultPicoConfig is the breadboard wiring: LEDs on GP14-GP16, button
// on GP17, buzzer on GP19, 1 ms poll
func DefaultPicoConfig() *BoardConfig {
	return &BoardConfig{
		Board:               "pico",
		RedPin:              "gpio14",
		AmberPin:            "gpio15",
		GreenPin:            "gpio16",
		ButtonPin:           "gpio17",
		BuzzerPin:           "gpio19",
		PollIntervalUS:      1000,
		TelemetryIntervalMS: Millis(DefaultTelemetryMS),
	}
}

// Millis returns a pointer to ms, for setting TelemetryIntervalMS
func Millis(ms uint32) *uint32 {
	return &ms
}

// BuildFlag reads a boolean set at link time with -ldflags "-X ...".
// Unset or unparsable values are false.
func BuildFlag(value string) bool {
	on, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && on
}

// ParsePin converts "gpio14", "GPIO14", "gp14" or "14" to a pin number
func ParsePin(name string) (core.GPIOPin, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.HasPrefix(s, "gpio"):
		s = s[len("gpio"):]
	case strings.HasPrefix(s, "gp"):
		s = s[len("gp"):]
	}

	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, ErrUnknownPin
	}
	return core.GPIOPin(n), nil
}

// SignalPins resolves the configured pin names
func (c *BoardConfig) SignalPins() (core.SignalPins, error) {
	var pins core.SignalPins

	fields := []struct {
		name string
		dst  *core.GPIOPin
	}{
		{c.RedPin, &pins.Red},
		{c.AmberPin, &pins.Amber},
		{c.GreenPin, &pins.Green},
		{c.ButtonPin, &pins.Button},
		{c.BuzzerPin, &pins.Buzzer},
	}

	seen := make(map[core.GPIOPin]bool, len(fields))
	for _, f := range fields {
		pin, err := ParsePin(f.name)
		if err != nil {
			return pins, fmt.Errorf("%w: %q", ErrUnknownPin, f.name)
		}
		if seen[pin] {
			return pins, fmt.Errorf("%w: %q", ErrDuplicatePin, f.name)
		}
		seen[pin] = true
		*f.dst = pin
	}
	return pins, nil
}

// PollPeriod returns the poll interval in core timer ticks
func (c *BoardConfig) PollPeriod() uint32 {
	return core.TimerFromUS(c.PollIntervalUS)
}

// TelemetryPeriod returns the report interval in core timer ticks, 0 if disabled
func (c *BoardConfig) TelemetryPeriod() uint32 {
	if c.TelemetryIntervalMS == nil {
		return core.TimerFromMS(DefaultTelemetryMS)
	}
	return core.TimerFromMS(*c.TelemetryIntervalMS)
}
