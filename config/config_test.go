package config

import (
	"errors"
	"testing"

	"pelican/core"
)

func TestParsePin(t *testing.T) {
	tests := []struct {
		name    string
		want    core.GPIOPin
		wantErr bool
	}{
		{"gpio14", 14, false},
		{"GPIO17", 17, false},
		{"gp19", 19, false},
		{" 4 ", 4, false},
		{"gpio", 0, true},
		{"adc0", 0, true},
		{"gpio300", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParsePin(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePin(%q): expected error, got %d", tt.name, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParsePin(%q) = %d, %v; want %d", tt.name, got, err, tt.want)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig([]byte(`{"board": "rpi", "button_pin": "gpio27"}`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Board != "rpi" {
		t.Errorf("Expected board rpi, got %q", cfg.Board)
	}
	if cfg.PollIntervalUS != 1000 {
		t.Errorf("Expected default poll interval 1000, got %d", cfg.PollIntervalUS)
	}
	if cfg.TelemetryIntervalMS == nil || *cfg.TelemetryIntervalMS != DefaultTelemetryMS {
		t.Errorf("Expected default telemetry interval %d when omitted, got %v", DefaultTelemetryMS, cfg.TelemetryIntervalMS)
	}
	if cfg.TelemetryPeriod() != 100000 {
		t.Errorf("Expected telemetry period 100000 ticks, got %d", cfg.TelemetryPeriod())
	}

	pins, err := cfg.SignalPins()
	if err != nil {
		t.Fatalf("SignalPins failed: %v", err)
	}
	want := core.SignalPins{Red: 14, Amber: 15, Green: 16, Button: 27, Buzzer: 19}
	if pins != want {
		t.Errorf("Expected %+v, got %+v", want, pins)
	}
}

func TestTelemetryIntervalExplicitZero(t *testing.T) {
	cfg, err := LoadConfig([]byte(`{"telemetry_interval_ms": 0}`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.TelemetryIntervalMS == nil || *cfg.TelemetryIntervalMS != 0 {
		t.Fatalf("Expected explicit 0 to be kept, got %v", cfg.TelemetryIntervalMS)
	}
	if cfg.TelemetryPeriod() != 0 {
		t.Errorf("Expected telemetry disabled, got period %d", cfg.TelemetryPeriod())
	}

	cfg, err = LoadConfig([]byte(`{"telemetry_interval_ms": 250}`))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.TelemetryPeriod() != 250000 {
		t.Errorf("Expected period 250000 ticks, got %d", cfg.TelemetryPeriod())
	}

	var bare BoardConfig
	if bare.TelemetryPeriod() != 100000 {
		t.Errorf("Expected unset interval to use the default, got %d", bare.TelemetryPeriod())
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want error
	}{
		{"unknown pin", `{"red_pin": "led1"}`, ErrUnknownPin},
		{"duplicate pin", `{"amber_pin": "gpio14"}`, ErrDuplicatePin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig([]byte(tt.json))
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := LoadConfig([]byte(`{`)); err == nil {
		t.Error("Expected a JSON syntax error")
	}
}

func TestDefaultPicoConfigPeriods(t *testing.T) {
	cfg := DefaultPicoConfig()

	if cfg.PollPeriod() != 1000 {
		t.Errorf("Expected poll period 1000 ticks, got %d", cfg.PollPeriod())
	}
	if cfg.TelemetryPeriod() != 100000 {
		t.Errorf("Expected telemetry period 100000 ticks, got %d", cfg.TelemetryPeriod())
	}
	if _, err := cfg.SignalPins(); err != nil {
		t.Errorf("Default wiring invalid: %v", err)
	}
}

func TestBuildFlag(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"true", true},
		{"1", true},
		{" TRUE ", true},
		{"false", false},
		{"yes", false},
	}

	for _, tt := range tests {
		if got := BuildFlag(tt.value); got != tt.want {
			t.Errorf("BuildFlag(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
