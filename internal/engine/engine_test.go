// internal/engine/engine_test.go
package engine

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashaswikaran/ModVend/internal/hardware"
	"github.com/yashaswikaran/ModVend/internal/registers"
	"github.com/yashaswikaran/ModVend/internal/rtu"
	"github.com/yashaswikaran/ModVend/internal/transport"
	"github.com/yashaswikaran/ModVend/internal/vending"
)

// harness drives an engine tick by tick over a loopback wire with simulated
// hardware.
type harness struct {
	t     *testing.T
	e     *Engine
	lb    *transport.Loopback
	sim   *hardware.Sim
	store *registers.Store
	now   time.Time
}

func newHarness(t *testing.T, items ...registers.Item) *harness {
	t.Helper()

	store := registers.NewStore(items)
	lb := transport.NewLoopback(256)
	sim := hardware.NewSim(registers.ItemCount, vending.DenomCount)

	e, err := New(Config{
		SlaveAddress: 1,
		BaudRate:     9600, // 3.5 char gap ~ 4ms
		Tick:         time.Millisecond,
		ItemPulse:    3 * time.Millisecond,
		ChangePulse:  2 * time.Millisecond,
		ChangeGap:    2 * time.Millisecond,
	}, store, lb, sim, zerolog.Nop())
	require.NoError(t, err)

	return &harness{
		t:     t,
		e:     e,
		lb:    lb,
		sim:   sim,
		store: store,
		now:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// run advances n ticks of one millisecond each.
func (h *harness) run(n int) {
	h.t.Helper()
	for i := 0; i < n; i++ {
		h.now = h.now.Add(time.Millisecond)
		h.e.Tick(h.now)
	}
}

// exchange puts one request on the wire and returns whatever the device
// answered. Leading and trailing silence bracket the frame.
func (h *harness) exchange(frame []byte) []byte {
	h.t.Helper()
	h.run(8) // leading silence, well past the 4ms gap
	h.lb.HostWrite(frame)
	h.run(40) // assemble, dispatch, wait the gap, transmit
	return h.lb.HostRead()
}

func request(slave, fc uint8, addr, value uint16) []byte {
	return rtu.AppendChecksum([]byte{
		slave, fc,
		byte(addr >> 8), byte(addr),
		byte(value >> 8), byte(value),
	})
}

func (h *harness) status() uint16 {
	return h.store.Read(registers.AddrStatus)
}

const (
	statusChangeComplete = 1 << 15
	statusAccepted       = 1 << 14
	statusRejected       = 1 << 13
	statusDispenseActive = 1 << 12
	statusVendingError   = 1 << 11
)

// ---- tests ----

func TestWireWriteReadRoundTrip(t *testing.T) {
	h := newHarness(t)

	echo := h.exchange(request(1, rtu.FuncWriteSingle, registers.PriceBase+2, 20))
	assert.Equal(t, request(1, rtu.FuncWriteSingle, registers.PriceBase+2, 20), echo)

	resp := h.exchange(request(1, rtu.FuncReadHolding, registers.PriceBase+2, 1))
	assert.Equal(t, rtu.ReadResponse(1, 20), resp)
}

func TestWireUnknownFunction(t *testing.T) {
	h := newHarness(t, registers.Item{ID: 0, Price: 50, Stock: 10})

	resp := h.exchange(request(1, 0x10, 0x0000, 1))
	assert.Equal(t, rtu.ExceptionResponse(1, 0x10, rtu.ExcIllegalFunction), resp)

	// Store untouched.
	assert.Equal(t, uint16(10), h.store.Stock(0))
}

func TestWireCorruptedChecksum(t *testing.T) {
	h := newHarness(t, registers.Item{ID: 0, Price: 50, Stock: 10})

	bad := request(1, rtu.FuncWriteSingle, registers.InventoryBase, 0)
	bad[5] ^= 0x40
	resp := h.exchange(bad)

	assert.Equal(t, rtu.ExceptionResponse(1, rtu.FuncWriteSingle, rtu.ExcDeviceFailure), resp)
	assert.Equal(t, uint16(10), h.store.Stock(0))
}

func TestWireWrongSlaveSilent(t *testing.T) {
	h := newHarness(t)

	resp := h.exchange(request(9, rtu.FuncReadHolding, 0x0000, 1))
	assert.Empty(t, resp)
}

func TestPurchaseWithChange(t *testing.T) {
	h := newHarness(t,
		registers.Item{ID: 0, Price: 50, Stock: 10},
		registers.Item{ID: 1, Price: 100, Stock: 8},
	)

	// Select item 0 and trigger verification over the wire.
	h.exchange(request(1, rtu.FuncWriteSingle, registers.AddrItemSelect, 0))
	h.exchange(request(1, rtu.FuncWriteSingle, registers.AddrDispense, 1))

	h.e.InsertCoin(100)
	h.e.PaymentComplete()
	h.run(100)

	assert.Equal(t, uint16(9), h.store.Stock(0), "stock not decremented")
	assert.Equal(t, 1, h.sim.ItemPulses[0], "item motor pulse count")

	// Change 50 = one pulse on the 50 hopper line, nothing else.
	line50, ok := vending.DenomIndex(50)
	require.True(t, ok)
	for line, pulses := range h.sim.ChangePulses {
		if line == line50 {
			assert.Equal(t, 1, pulses, "50 line")
		} else {
			assert.Zero(t, pulses, "line %d", line)
		}
	}

	s := h.status()
	assert.NotZero(t, s&statusAccepted, "payment-accepted bit")
	assert.NotZero(t, s&statusChangeComplete, "change-complete bit")
	assert.Zero(t, s&statusDispenseActive, "dispense-active bit")
	assert.Zero(t, s&statusVendingError, "vending-error bit")
	assert.Equal(t, uint16(rtu.FuncWriteSingle), s&0x0F, "last function nibble")
}

func TestPurchaseRejectedInsufficient(t *testing.T) {
	h := newHarness(t,
		registers.Item{ID: 0, Price: 50, Stock: 10},
		registers.Item{ID: 1, Price: 100, Stock: 8},
	)

	h.exchange(request(1, rtu.FuncWriteSingle, registers.AddrItemSelect, 1))
	h.exchange(request(1, rtu.FuncWriteSingle, registers.AddrDispense, 1))

	h.e.InsertCoin(50)
	h.e.PaymentComplete()
	h.run(100)

	// No vend, stock unchanged, full refund of the 50.
	assert.Equal(t, uint16(8), h.store.Stock(1))
	assert.Zero(t, h.sim.ItemPulses[1])

	line50, _ := vending.DenomIndex(50)
	assert.Equal(t, 1, h.sim.ChangePulses[line50], "refund pulse")

	s := h.status()
	assert.NotZero(t, s&statusRejected, "payment-rejected bit")
	assert.Zero(t, s&statusAccepted, "payment-accepted bit")
}

func TestOutOfStockSetsVendingError(t *testing.T) {
	h := newHarness(t, registers.Item{ID: 2, Price: 20, Stock: 0})

	h.exchange(request(1, rtu.FuncWriteSingle, registers.AddrItemSelect, 2))
	h.exchange(request(1, rtu.FuncWriteSingle, registers.AddrDispense, 1))

	h.e.InsertCoin(20)
	h.e.PaymentComplete()
	h.run(100)

	assert.Zero(t, h.sim.ItemPulses[2])
	assert.Equal(t, uint16(0), h.store.Stock(2))
	assert.NotZero(t, h.status()&statusVendingError, "vending-error bit")
}

func TestStatusRegisterOverTheWire(t *testing.T) {
	h := newHarness(t)
	h.run(5)

	resp := h.exchange(request(1, rtu.FuncReadHolding, registers.AddrStatus, 1))
	require.Len(t, resp, 7)

	word := uint16(resp[3])<<8 | uint16(resp[4])
	// system-ready is up, nothing else is happening yet except this read.
	assert.NotZero(t, word&(1<<9), "system-ready bit")
}
