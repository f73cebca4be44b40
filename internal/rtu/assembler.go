// internal/rtu/assembler.go
package rtu

import "time"

// bitsPerChar is one serial character on the wire: start + 8 data + parity +
// stop. The framing gap is 3.5 of these.
const bitsPerChar = 11

// SilenceInterval returns the inter-frame gap (3.5 character times) for the
// given baud rate.
func SilenceInterval(baud int) time.Duration {
	if baud <= 0 {
		baud = 9600
	}
	bit := time.Second / time.Duration(baud)
	return bit * bitsPerChar * 7 / 2
}

type asmState uint8

const (
	asmIdle asmState = iota
	asmReceiving
)

// Assembler turns the inbound byte stream into discrete frames using the
// silence-based delimiting rule. It is tick-driven and never blocks: Input
// feeds one received byte, Tick advances the silence clock. A frame is
// complete when it reaches FrameLen bytes or when the gap elapses mid-frame;
// undersized completions are left to the dispatcher to drop, and bytes
// arriving without a leading gap are counted as noise.
type Assembler struct {
	gap          time.Duration
	state        asmState
	buf          []byte
	lastActivity time.Time
	gapSeen      bool

	// NoiseBytes counts bytes discarded outside a frame.
	NoiseBytes uint64
}

// NewAssembler creates an assembler with the given inter-frame gap.
// The transport is assumed idle at start, so the first byte opens a frame.
func NewAssembler(gap time.Duration) *Assembler {
	return &Assembler{
		gap:     gap,
		buf:     make([]byte, 0, FrameLen),
		gapSeen: true,
	}
}

// Input feeds one received byte stamped with its arrival time. It returns a
// completed frame when the byte fills it to FrameLen.
func (a *Assembler) Input(now time.Time, b byte) ([]byte, bool) {
	a.lastActivity = now

	if a.state == asmIdle {
		if !a.gapSeen {
			// Mid-stream byte with no preceding silence: frame noise.
			a.NoiseBytes++
			return nil, false
		}
		a.gapSeen = false
		a.state = asmReceiving
		a.buf = append(a.buf[:0], b)
		return nil, false
	}

	a.buf = append(a.buf, b)
	if len(a.buf) == FrameLen {
		return a.take(), true
	}
	return nil, false
}

// Tick advances the silence clock. When the gap elapses it marks the line
// quiet and, if a frame was in progress, completes it as-is.
func (a *Assembler) Tick(now time.Time) ([]byte, bool) {
	if !a.lastActivity.IsZero() && now.Sub(a.lastActivity) < a.gap {
		return nil, false
	}

	var frame []byte
	done := false
	if a.state == asmReceiving && len(a.buf) > 0 {
		frame = a.take()
		done = true
	}
	a.state = asmIdle
	a.gapSeen = true
	return frame, done
}

func (a *Assembler) take() []byte {
	frame := make([]byte, len(a.buf))
	copy(frame, a.buf)
	a.buf = a.buf[:0]
	a.state = asmIdle
	// The tail of the frame is not a leading gap for the next one.
	a.gapSeen = false
	return frame
}
