package core

import "pelican/protocol"

// FrameWriter receives one encoded telemetry frame. The slice is only
// valid for the duration of the call.
type FrameWriter func(frame []byte)

// Telemetry periodically reports a signal's state as status frames
type Telemetry struct {
	signal *Signal
	write  FrameWriter

	out *protocol.ScratchOutput
	seq uint8

	Timer   Timer
	period  uint32
	running bool

	sent uint32
}

// NewTelemetry creates a reporter for signal writing frames to write
func NewTelemetry(signal *Signal, write FrameWriter) *Telemetry {
	return &Telemetry{
		signal: signal,
		write:  write,
		out:    protocol.NewScratchOutput(),
	}
}

// Snapshot builds a status report from the signal's current state
func (t *Telemetry) Snapshot() protocol.StatusReport {
	ctrl := t.signal.Controller()
	st := ctrl.State()

	var flags uint8
	if st.Requested {
		flags |= protocol.StatusRequested
	}
	if st.Walking {
		flags |= protocol.StatusWalking
	}
	if st.Beeping {
		flags |= protocol.StatusBeeping
	}

	return protocol.StatusReport{
		Clock:     GetTime(),
		Tick:      ctrl.Ticks(),
		Phase:     uint8(st.Phase),
		Remaining: st.Remaining,
		Flags:     flags,
		BeepLeft:  st.BeepLeft,
		Outputs:   t.signal.Applied().Bits(),
		Faults:    t.signal.Faults(),
	}
}

// Send encodes and writes one status frame now
func (t *Telemetry) Send() error {
	report := t.Snapshot()

	t.out.Reset()
	if err := protocol.EncodeFrame(t.out, t.seq, report.Encode); err != nil {
		return err
	}
	t.seq = (t.seq + 1) & protocol.MessageSeqMask
	t.sent++

	if t.write != nil {
		t.write(t.out.Result())
	}
	return nil
}

// Sent returns the number of frames written
func (t *Telemetry) Sent() uint32 {
	return t.sent
}

// Start schedules a report every period timer ticks
func (t *Telemetry) Start(period uint32) {
	if period == 0 {
		period = TimerFromMS(100)
	}
	if t.running {
		CancelTimer(&t.Timer)
	}
	t.period = period
	t.running = true
	t.Timer.Next = nil
	t.Timer.WakeTime = GetTime() + period
	t.Timer.Handler = t.reportEvent
	ScheduleTimer(&t.Timer)
}

// Stop cancels periodic reports
func (t *Telemetry) Stop() {
	if !t.running {
		return
	}
	CancelTimer(&t.Timer)
	t.running = false
}

func (t *Telemetry) reportEvent(tm *Timer) uint8 {
	if !t.running {
		return SF_DONE
	}
	_ = t.Send()

	tm.WakeTime += t.period
	if !timerBefore(currentTime, tm.WakeTime) {
		tm.WakeTime = currentTime + t.period
	}
	return SF_RESCHEDULE
}
