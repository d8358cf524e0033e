//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/hex"
	"syscall/js"

	"pelican/crossing"
	"pelican/host/monitor"
	"pelican/host/sim"
	"pelican/protocol"
)

// Simulator driven from the page, created by simCreate
var simulator *sim.Simulator

func main() {
	// Export functions to JavaScript
	js.Global().Set("pelicanWasm", js.ValueOf(map[string]interface{}{
		"crc16":        js.FuncOf(crc16Wrapper),
		"decodeFrames": js.FuncOf(decodeFramesWrapper),
		"simCreate":    js.FuncOf(simCreateWrapper),
		"simPress":     js.FuncOf(simPressWrapper),
		"simRun":       js.FuncOf(simRunWrapper),
		"simState":     js.FuncOf(simStateWrapper),
		"version":      protocol.Version,
	}))

	// Keep the program running
	select {}
}

// crc16Wrapper calculates CRC16 checksum
// Args: hexString (string)
// Returns: number (uint16)
func crc16Wrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(0)
	}

	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return js.ValueOf(0)
	}

	return js.ValueOf(int(protocol.CRC16(data)))
}

// decodeFramesWrapper decodes a captured telemetry stream
// Args: hexString (string)
// Returns: {reports: [{seq, clock, tick, phase, remaining, ..., text}], dropped, error}
func decodeFramesWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("missing hex string argument")
	}

	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return makeError("invalid hex string: " + err.Error())
	}

	dec := protocol.NewFrameDecoder(len(data))
	frames := dec.Feed(data)

	reports := make([]interface{}, 0, len(frames))
	for _, f := range frames {
		r, err := protocol.DecodeStatus(f.Payload)
		if err != nil {
			continue
		}
		m := reportMap(r)
		m["seq"] = int(f.Seq)
		reports = append(reports, m)
	}

	result := make(map[string]interface{})
	result["reports"] = reports
	result["dropped"] = int(dec.Dropped())
	return js.ValueOf(result)
}

// simCreateWrapper starts a fresh simulator on the default pin map
// Returns: state object, or {error}
func simCreateWrapper(this js.Value, args []js.Value) interface{} {
	if simulator != nil {
		simulator.Close()
	}

	s, err := sim.New(nil)
	if err != nil {
		simulator = nil
		return makeError(err.Error())
	}
	simulator = s
	return stateMap()
}

// simPressWrapper schedules a button press
// Args: tick (number), duration (number, optional)
func simPressWrapper(this js.Value, args []js.Value) interface{} {
	if simulator == nil {
		return makeError("simulator not created")
	}
	if len(args) < 1 {
		return makeError("missing tick argument")
	}

	duration := 1
	if len(args) > 1 {
		duration = args[1].Int()
	}
	simulator.PressAt(uint32(args[0].Int()), uint32(duration))
	return js.ValueOf(true)
}

// simRunWrapper advances the simulator
// Args: ticks (number)
// Returns: state object with the events raised during the run
func simRunWrapper(this js.Value, args []js.Value) interface{} {
	if simulator == nil {
		return makeError("simulator not created")
	}
	if len(args) < 1 {
		return makeError("missing ticks argument")
	}

	before := len(simulator.Events())
	simulator.Run(uint32(args[0].Int()))

	events := []interface{}{}
	for _, e := range simulator.Events()[before:] {
		events = append(events, map[string]interface{}{
			"type":  e.Type.String(),
			"tick":  int(e.Tick),
			"phase": e.Phase.String(),
			"value": int(e.Value),
		})
	}

	result := stateMap()
	result["events"] = events
	return js.ValueOf(result)
}

// simStateWrapper returns the current simulator state
func simStateWrapper(this js.Value, args []js.Value) interface{} {
	if simulator == nil {
		return makeError("simulator not created")
	}
	return js.ValueOf(stateMap())
}

func stateMap() map[string]interface{} {
	st := simulator.State()
	out := simulator.Outputs()

	result := make(map[string]interface{})
	result["ticks"] = int(simulator.Ticks())
	result["phase"] = st.Phase.String()
	result["remaining"] = int(st.Remaining)
	result["requested"] = st.Requested
	result["walking"] = st.Walking
	result["beeping"] = st.Beeping
	result["beepLeft"] = int(st.BeepLeft)
	result["outputs"] = outputsMap(out)
	return result
}

func reportMap(r protocol.StatusReport) map[string]interface{} {
	result := make(map[string]interface{})
	result["clock"] = int(r.Clock)
	result["tick"] = int(r.Tick)
	result["phase"] = crossing.Phase(r.Phase).String()
	result["remaining"] = int(r.Remaining)
	result["requested"] = r.Requested()
	result["walking"] = r.Walking()
	result["beeping"] = r.Beeping()
	result["beepLeft"] = int(r.BeepLeft)
	result["outputs"] = outputsMap(crossing.OutputsFromBits(r.Outputs))
	result["faults"] = int(r.Faults)
	result["text"] = monitor.FormatReport(r)
	return result
}

func outputsMap(o crossing.Outputs) map[string]interface{} {
	return map[string]interface{}{
		"red":    o.Red,
		"amber":  o.Amber,
		"green":  o.Green,
		"buzzer": o.Buzzer,
	}
}

func makeError(errMsg string) js.Value {
	result := make(map[string]interface{})
	result["error"] = errMsg
	return js.ValueOf(result)
}
