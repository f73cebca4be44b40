// internal/rtu/dispatcher_test.go
package rtu

import (
	"testing"
	"time"

	"github.com/yashaswikaran/ModVend/internal/registers"
)

// ---- fakes ----

type fakeBank struct {
	regs   map[uint16]uint16
	writes int
}

func newFakeBank() *fakeBank {
	return &fakeBank{regs: make(map[uint16]uint16)}
}

func (f *fakeBank) Read(addr uint16) uint16 { return f.regs[addr] }

func (f *fakeBank) Write(addr, value uint16) {
	f.writes++
	if addr <= registers.PriceEnd {
		f.regs[addr] = value
	}
}

type fakeCommerce struct {
	selected  []uint8
	dispenses int
}

func (f *fakeCommerce) SelectItem(id uint8) { f.selected = append(f.selected, id) }
func (f *fakeCommerce) RequestDispense() { f.dispenses++ }

// ---- helpers ----

var dispStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const testGap = 4 * time.Millisecond

// drain runs the response machine with the transport always ready until it
// goes idle.
func drain(t *testing.T, d *Dispatcher, now time.Time) []byte {
	t.Helper()
	var out []byte
	for i := 0; i < 100; i++ {
		now = now.Add(time.Millisecond)
		if b, send := d.Tick(now, true); send {
			out = append(out, b)
		}
		if !d.Busy() {
			return out
		}
	}
	t.Fatalf("response machine never went idle")
	return nil
}

func request(slave, fc uint8, addr, value uint16) []byte {
	return AppendChecksum([]byte{
		slave, fc,
		byte(addr >> 8), byte(addr),
		byte(value >> 8), byte(value),
	})
}

// ---- tests ----

func TestDispatchReadHolding(t *testing.T) {
	bank := newFakeBank()
	bank.regs[0x0100] = 50
	d := NewDispatcher(1, testGap, bank, &fakeCommerce{})

	d.Dispatch(dispStart, request(1, FuncReadHolding, 0x0100, 1))
	resp := drain(t, d, dispStart)

	want := ReadResponse(1, 50)
	if string(resp) != string(want) {
		t.Fatalf("response mismatch: got % X want % X", resp, want)
	}
	if d.LastFunction != FuncReadHolding {
		t.Fatalf("last function = 0x%02X, want 0x03", d.LastFunction)
	}
}

func TestDispatchWriteEchoesAndRoundTrips(t *testing.T) {
	bank := newFakeBank()
	d := NewDispatcher(1, testGap, bank, &fakeCommerce{})

	req := request(1, FuncWriteSingle, 0x0005, 0x1234)
	d.Dispatch(dispStart, req)
	resp := drain(t, d, dispStart)

	if string(resp) != string(req) {
		t.Fatalf("write response is not an echo: got % X want % X", resp, req)
	}
	if bank.regs[0x0005] != 0x1234 {
		t.Fatalf("register not written: got %d", bank.regs[0x0005])
	}

	d.Dispatch(dispStart.Add(time.Second), request(1, FuncReadHolding, 0x0005, 1))
	resp = drain(t, d, dispStart.Add(time.Second))
	want := ReadResponse(1, 0x1234)
	if string(resp) != string(want) {
		t.Fatalf("read-back mismatch: got % X want % X", resp, want)
	}
}

func TestDispatchControlAddresses(t *testing.T) {
	bank := newFakeBank()
	com := &fakeCommerce{}
	d := NewDispatcher(1, testGap, bank, com)

	d.Dispatch(dispStart, request(1, FuncWriteSingle, registers.AddrItemSelect, 0x0003))
	drain(t, d, dispStart)
	d.Dispatch(dispStart.Add(time.Second), request(1, FuncWriteSingle, registers.AddrDispense, 1))
	drain(t, d, dispStart.Add(time.Second))

	if len(com.selected) != 1 || com.selected[0] != 3 {
		t.Fatalf("item select not forwarded: %v", com.selected)
	}
	if com.dispenses != 1 {
		t.Fatalf("dispense trigger not forwarded: %d", com.dispenses)
	}
}

func TestDispatchDispenseTriggerNeedsValueOne(t *testing.T) {
	com := &fakeCommerce{}
	d := NewDispatcher(1, testGap, newFakeBank(), com)

	d.Dispatch(dispStart, request(1, FuncWriteSingle, registers.AddrDispense, 0))
	drain(t, d, dispStart)

	if com.dispenses != 0 {
		t.Fatalf("dispense fired on value 0")
	}
}

func TestDispatchUnknownFunction(t *testing.T) {
	bank := newFakeBank()
	d := NewDispatcher(1, testGap, bank, &fakeCommerce{})

	d.Dispatch(dispStart, request(1, 0x99, 0x0001, 1))
	resp := drain(t, d, dispStart)

	want := ExceptionResponse(1, 0x99, ExcIllegalFunction)
	if string(resp) != string(want) {
		t.Fatalf("exception mismatch: got % X want % X", resp, want)
	}
	if bank.writes != 0 {
		t.Fatalf("unknown function mutated the bank")
	}
}

func TestDispatchCorruptedChecksum(t *testing.T) {
	bank := newFakeBank()
	d := NewDispatcher(1, testGap, bank, &fakeCommerce{})

	req := request(1, FuncWriteSingle, 0x0005, 0x1234)
	req[4] ^= 0xFF
	d.Dispatch(dispStart, req)
	resp := drain(t, d, dispStart)

	want := ExceptionResponse(1, FuncWriteSingle, ExcDeviceFailure)
	if string(resp) != string(want) {
		t.Fatalf("exception mismatch: got % X want % X", resp, want)
	}
	if bank.writes != 0 {
		t.Fatalf("corrupted frame mutated the bank")
	}
}

func TestDispatchAddressMismatchSilent(t *testing.T) {
	d := NewDispatcher(1, testGap, newFakeBank(), &fakeCommerce{})

	d.Dispatch(dispStart, request(9, FuncReadHolding, 0x0000, 1))

	if d.Busy() {
		t.Fatalf("frame for another slave produced a response")
	}
	if d.FramesDropped != 1 {
		t.Fatalf("drop not counted: %d", d.FramesDropped)
	}
}

func TestDispatchBroadcastProcessedNotAnswered(t *testing.T) {
	bank := newFakeBank()
	d := NewDispatcher(1, testGap, bank, &fakeCommerce{})

	d.Dispatch(dispStart, request(Broadcast, FuncWriteSingle, 0x0002, 7))

	if d.Busy() {
		t.Fatalf("broadcast produced a response")
	}
	if bank.regs[0x0002] != 7 {
		t.Fatalf("broadcast write not applied")
	}
}

func TestDispatchShortFrameDropped(t *testing.T) {
	d := NewDispatcher(1, testGap, newFakeBank(), &fakeCommerce{})

	d.Dispatch(dispStart, []byte{0x01, 0x03, 0x00})

	if d.Busy() {
		t.Fatalf("short frame produced a response")
	}
	if d.FramesDropped != 1 {
		t.Fatalf("drop not counted: %d", d.FramesDropped)
	}
}

func TestRespondWaitsForGapAndReady(t *testing.T) {
	d := NewDispatcher(1, testGap, newFakeBank(), &fakeCommerce{})
	d.Dispatch(dispStart, request(1, FuncReadHolding, 0x0000, 1))

	// Inside the gap nothing is sent even with the transport ready.
	if _, send := d.Tick(dispStart.Add(time.Millisecond), true); send {
		t.Fatalf("byte sent before the inter-frame gap elapsed")
	}

	// After the gap, a not-ready transport still blocks.
	after := dispStart.Add(testGap + time.Millisecond)
	if _, send := d.Tick(after, false); send {
		t.Fatalf("byte sent while transport not ready")
	}

	// One byte per ready tick.
	if _, send := d.Tick(after.Add(time.Millisecond), true); !send {
		t.Fatalf("no byte sent after gap with ready transport")
	}
}
