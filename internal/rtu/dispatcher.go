// internal/rtu/dispatcher.go
package rtu

import (
	"time"

	"github.com/yashaswikaran/ModVend/internal/registers"
)

// RegisterBank is the exact contract the dispatcher uses against the shared
// register space. IMPORTANT: there must be NO other version of this
// interface anywhere.
type RegisterBank interface {
	Read(addr uint16) uint16
	Write(addr, value uint16)
}

// Commerce receives the side effects of control-address writes.
type Commerce interface {
	SelectItem(id uint8)
	RequestDispense()
}

type dispState uint8

const (
	dispIdle dispState = iota
	dispWaitGap
	dispTransmit
)

// Dispatcher maps validated frames to register reads, register writes and
// commerce side effects, and paces the response back onto the wire.
//
// IDLE -> VALIDATE -> PROCESS -> RESPOND -> transmit -> IDLE. Validation
// failures either drop the frame silently (wrong address, bad framing) or
// branch to an exception response (bad CRC, unknown function).
type Dispatcher struct {
	slave    uint8
	gap      time.Duration
	bank     RegisterBank
	commerce Commerce

	state   dispState
	resp    []byte
	next    int
	quietAt time.Time

	// LastFunction is the function code of the last processed frame,
	// surfaced in the status register.
	LastFunction uint8

	// FramesDropped counts silently discarded frames (framing errors and
	// address mismatches).
	FramesDropped uint64
}

// NewDispatcher creates a dispatcher for the given slave address.
// gap is the inter-frame silence the response must wait for before
// transmitting, symmetric with receive framing.
func NewDispatcher(slave uint8, gap time.Duration, bank RegisterBank, commerce Commerce) *Dispatcher {
	return &Dispatcher{
		slave:    slave,
		gap:      gap,
		bank:     bank,
		commerce: commerce,
	}
}

// Busy reports whether a response is still pending or in flight.
func (d *Dispatcher) Busy() bool { return d.state != dispIdle }

// Dispatch validates and processes one assembled frame. Any response is
// queued for transmission; Tick drains it. A frame arriving while a
// response is still in flight is dropped, the wire is half-duplex.
func (d *Dispatcher) Dispatch(now time.Time, raw []byte) {
	if d.state != dispIdle {
		d.FramesDropped++
		return
	}

	// (a) framing: anything but a full frame is noise, no response
	f, ok := DecodeFrame(raw)
	if !ok {
		d.FramesDropped++
		return
	}

	// (b) addressing: not for this device, silent discard
	if f.Slave != d.slave && f.Slave != Broadcast {
		d.FramesDropped++
		return
	}
	broadcast := f.Slave == Broadcast

	// (c) integrity: CRC over everything before the checksum field
	if !ValidChecksum(raw) {
		d.respond(now, broadcast, ExceptionResponse(f.Slave, f.Function, ExcDeviceFailure))
		return
	}

	// (d) function support
	switch f.Function {
	case FuncReadHolding:
		d.LastFunction = f.Function
		d.respond(now, broadcast, ReadResponse(f.Slave, d.bank.Read(f.Address)))

	case FuncWriteSingle:
		d.LastFunction = f.Function
		d.bank.Write(f.Address, f.Value)
		switch f.Address {
		case registers.AddrItemSelect:
			d.commerce.SelectItem(uint8(f.Value & registers.ItemIDMask))
		case registers.AddrDispense:
			if f.Value == 1 {
				d.commerce.RequestDispense()
			}
		}
		d.respond(now, broadcast, EchoResponse(f))

	default:
		d.respond(now, broadcast, ExceptionResponse(f.Slave, f.Function, ExcIllegalFunction))
	}
}

func (d *Dispatcher) respond(now time.Time, broadcast bool, resp []byte) {
	if broadcast {
		// Broadcast requests are processed but never answered.
		return
	}
	d.resp = resp
	d.next = 0
	d.quietAt = now
	d.state = dispWaitGap
}

// Tick advances the response machine. ready is the transport's
// ready-to-send signal for this step; at most one byte is emitted per tick.
func (d *Dispatcher) Tick(now time.Time, ready bool) (byte, bool) {
	switch d.state {
	case dispWaitGap:
		if now.Sub(d.quietAt) < d.gap {
			return 0, false
		}
		d.state = dispTransmit
		fallthrough

	case dispTransmit:
		if !ready {
			return 0, false
		}
		b := d.resp[d.next]
		d.next++
		if d.next >= len(d.resp) {
			d.resp = nil
			d.state = dispIdle
		}
		return b, true

	default:
		return 0, false
	}
}
