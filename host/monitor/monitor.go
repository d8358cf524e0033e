// Package monitor decodes the status frames a signal board streams over
// its serial port.
package monitor

import (
	"fmt"
	"io"
	"sync"
	"time"

	"pelican/crossing"
	"pelican/protocol"
)

// TimeoutReader is a source whose Read gives up after ReadTimeout.
// A serial port in VTIME mode reports such a timeout as (0, io.EOF), so
// for these sources that result means idle rather than end of stream.
type TimeoutReader interface {
	io.Reader
	ReadTimeout() time.Duration
}

// ReportHandler is called for every decoded status report
type ReportHandler func(protocol.StatusReport)

// Stats counts what the monitor has seen
type Stats struct {
	Frames    uint32 // Frames with a valid CRC
	Reports   uint32 // Status reports delivered to the handler
	Lost      uint32 // Frames missing according to the sequence numbers
	Repeated  uint32 // Frames carrying the same sequence number as the one before
	BadFrames uint32 // Times the decoder lost sync
	Unknown   uint32 // Valid frames that were not status reports
}

// Monitor reads frames from r and dispatches status reports
type Monitor struct {
	r       io.Reader
	dec     *protocol.FrameDecoder
	handler ReportHandler

	// (0, io.EOF) from r is a read timeout, not end of stream
	eofIsIdle bool

	mu      sync.Mutex
	stats   Stats
	lastSeq uint8
	haveSeq bool

	stopChan  chan struct{}
	doneChan  chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

// New creates a monitor for r. handler may be nil.
func New(r io.Reader, handler ReportHandler) *Monitor {
	eofIsIdle := false
	if tr, ok := r.(TimeoutReader); ok {
		eofIsIdle = tr.ReadTimeout() > 0
	}
	return &Monitor{
		r:         r,
		dec:       protocol.NewFrameDecoder(512),
		handler:   handler,
		eofIsIdle: eofIsIdle,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start runs the background reader. It stops at end of stream or on Close.
func (m *Monitor) Start() {
	m.startOnce.Do(func() {
		go m.readLoop()
	})
}

// Done is closed when the background reader has exited
func (m *Monitor) Done() <-chan struct{} {
	return m.doneChan
}

// Close stops the reader and closes r if it is closable
func (m *Monitor) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.stopChan)
		if c, ok := m.r.(io.Closer); ok {
			err = c.Close()
		}
		// Never started: nothing will close doneChan
		m.startOnce.Do(func() {
			close(m.doneChan)
		})
		<-m.doneChan
	})
	return err
}

// Stats returns a copy of the counters
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	s.BadFrames = m.dec.Dropped()
	return s
}

// Process feeds received bytes through the decoder. The background
// reader calls it; tests and replay tools may call it directly.
func (m *Monitor) Process(data []byte) {
	m.mu.Lock()
	frames := m.dec.Feed(data)
	var reports []protocol.StatusReport
	for _, f := range frames {
		m.stats.Frames++
		m.trackSeq(f.Seq)

		report, err := protocol.DecodeStatus(f.Payload)
		if err != nil {
			m.stats.Unknown++
			continue
		}
		m.stats.Reports++
		reports = append(reports, report)
	}
	m.mu.Unlock()

	if m.handler == nil {
		return
	}
	for _, r := range reports {
		m.handler(r)
	}
}

func (m *Monitor) trackSeq(seq uint8) {
	if m.haveSeq {
		if seq == m.lastSeq {
			m.stats.Repeated++
			return
		}
		expected := (m.lastSeq + 1) & protocol.MessageSeqMask
		m.stats.Lost += uint32((seq - expected) & protocol.MessageSeqMask)
	}
	m.lastSeq = seq
	m.haveSeq = true
}

func (m *Monitor) readLoop() {
	defer close(m.doneChan)

	buffer := make([]byte, 256)

	for {
		select {
		case <-m.stopChan:
			return
		default:
		}

		n, err := m.r.Read(buffer)
		if n > 0 {
			m.Process(buffer[:n])
		}
		if err != nil {
			if err == io.EOF {
				if n == 0 && m.eofIsIdle {
					// Quiet line: the read timed out
					continue
				}
				return
			}
			select {
			case <-m.stopChan:
				return
			default:
			}
			// Transient read error, e.g. a serial timeout
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// FormatReport renders a report as one line of text
func FormatReport(r protocol.StatusReport) string {
	out := crossing.OutputsFromBits(r.Outputs)
	lights := []byte("---")
	if out.Red {
		lights[0] = 'R'
	}
	if out.Amber {
		lights[1] = 'A'
	}
	if out.Green {
		lights[2] = 'G'
	}
	buzz := ' '
	if out.Buzzer {
		buzz = '*'
	}

	flags := ""
	if r.Requested() {
		flags += " requested"
	}
	if r.Walking() {
		flags += " walking"
	}

	return fmt.Sprintf("clock=%d tick=%d %-5s [%s]%c remaining=%d beep_left=%d faults=%d%s",
		r.Clock, r.Tick, crossing.Phase(r.Phase), lights, buzz,
		r.Remaining, r.BeepLeft, r.Faults, flags)
}
