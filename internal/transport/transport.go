// internal/transport/transport.go

// Package transport is the byte-stream boundary of the protocol engine. A
// Transport delivers received bytes and accepts bytes to send, both
// non-blocking: the engine polls once per tick and suspension means doing
// nothing this step.
package transport

// Transport is the exact contract the engine drives.
type Transport interface {
	// Recv pops one received byte, false when none is pending.
	Recv() (byte, bool)
	// ReadySend reports whether the transport accepts another byte now.
	ReadySend() bool
	// Send pushes one byte out. Callers gate on ReadySend; a byte pushed
	// while saturated is dropped.
	Send(b byte)

	Close() error
}

// Loopback is an in-memory Transport for tests and demo runs. The host
// side of the pair is driven with HostWrite/HostRead.
type Loopback struct {
	rx chan byte // host -> device
	tx chan byte // device -> host
}

// NewLoopback creates a loopback pair with the given queue depth per
// direction. The queues are the clock-domain-crossing FIFOs of the real
// transports.
func NewLoopback(depth int) *Loopback {
	if depth < 1 {
		depth = 64
	}
	return &Loopback{
		rx: make(chan byte, depth),
		tx: make(chan byte, depth),
	}
}

func (l *Loopback) Recv() (byte, bool) {
	select {
	case b := <-l.rx:
		return b, true
	default:
		return 0, false
	}
}

func (l *Loopback) ReadySend() bool { return len(l.tx) < cap(l.tx) }

func (l *Loopback) Send(b byte) {
	select {
	case l.tx <- b:
	default:
	}
}

func (l *Loopback) Close() error { return nil }

// ---- HOST SIDE ----

// HostWrite feeds bytes into the device's receive queue.
func (l *Loopback) HostWrite(p []byte) {
	for _, b := range p {
		select {
		case l.rx <- b:
		default:
		}
	}
}

// HostRead drains everything the device has transmitted so far.
func (l *Loopback) HostRead() []byte {
	var out []byte
	for {
		select {
		case b := <-l.tx:
			out = append(out, b)
		default:
			return out
		}
	}
}
