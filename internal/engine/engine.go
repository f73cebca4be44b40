// internal/engine/engine.go

// Package engine drives every state machine of the transaction controller
// from one cooperative tick loop. Per tick, in fixed order: user events,
// receive bytes -> frame assembler -> command dispatcher, payment machine,
// item dispense controller, change sequencer, status register, motor
// outputs. No machine blocks; suspension means doing nothing this step.
package engine

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/yashaswikaran/ModVend/internal/hardware"
	"github.com/yashaswikaran/ModVend/internal/registers"
	"github.com/yashaswikaran/ModVend/internal/rtu"
	"github.com/yashaswikaran/ModVend/internal/transport"
	"github.com/yashaswikaran/ModVend/internal/vending"
)

// Config is the minimal runtime config the engine needs. Durations are wall
// clock; the engine converts pulse durations to tick counts itself.
type Config struct {
	SlaveAddress uint8
	BaudRate     int
	Tick         time.Duration

	ItemPulse   time.Duration
	ChangePulse time.Duration
	ChangeGap   time.Duration

	// CommHold is how long the comm-active status bit stays up after a
	// processed frame.
	CommHold time.Duration
}

const eventDepth = 16

// Engine owns the machines and the shared register store.
type Engine struct {
	cfg   Config
	log   zerolog.Logger
	store *registers.Store
	tr    transport.Transport
	hw    hardware.Bank

	asm    *rtu.Assembler
	disp   *rtu.Dispatcher
	pay    *vending.Payment
	item   *vending.ItemController
	change *vending.Sequencer

	coins     chan uint32
	completes chan struct{}
	cancels   chan struct{}

	lastComm time.Time
	ready    bool
}

// New creates an engine with immutable config.
func New(cfg Config, store *registers.Store, tr transport.Transport, hw hardware.Bank, log zerolog.Logger) (*Engine, error) {
	if cfg.SlaveAddress < 1 || cfg.SlaveAddress > 247 {
		return nil, errors.New("engine: slave address must be 1..247")
	}
	if cfg.Tick <= 0 {
		return nil, errors.New("engine: tick must be > 0")
	}
	if store == nil || tr == nil || hw == nil {
		return nil, errors.New("engine: store, transport and hardware required")
	}

	if cfg.BaudRate <= 0 {
		cfg.BaudRate = 9600
	}
	if cfg.CommHold <= 0 {
		cfg.CommHold = time.Second
	}

	gap := rtu.SilenceInterval(cfg.BaudRate)

	e := &Engine{
		cfg:       cfg,
		log:       log,
		store:     store,
		tr:        tr,
		hw:        hw,
		asm:       rtu.NewAssembler(gap),
		pay:       vending.NewPayment(store),
		coins:     make(chan uint32, eventDepth),
		completes: make(chan struct{}, eventDepth),
		cancels:   make(chan struct{}, eventDepth),
	}
	e.disp = rtu.NewDispatcher(cfg.SlaveAddress, gap, store, e)
	e.item = vending.NewItemController(store, func(id uint8) bool {
		return hw.ItemPresent(int(id))
	}, ticks(cfg.ItemPulse, cfg.Tick))
	e.change = vending.NewSequencer(
		ticks(cfg.ChangePulse, cfg.Tick),
		ticks(cfg.ChangeGap, cfg.Tick),
	)
	return e, nil
}

func ticks(d, tick time.Duration) int {
	if d <= 0 || tick <= 0 {
		return 1
	}
	n := int(d / tick)
	if n < 1 {
		n = 1
	}
	return n
}

// ---- USER-FACING BOUNDARY ----

// InsertCoin queues a coin-inserted event carrying one face value.
func (e *Engine) InsertCoin(value uint32) {
	select {
	case e.coins <- value:
	default:
		e.log.Warn().Uint32("value", value).Msg("coin event queue full, dropped")
	}
}

// PaymentComplete queues the user's payment-complete signal.
func (e *Engine) PaymentComplete() {
	select {
	case e.completes <- struct{}{}:
	default:
	}
}

// CancelTransaction queues the user's cancel signal.
func (e *Engine) CancelTransaction() {
	select {
	case e.cancels <- struct{}{}:
	default:
	}
}

// ---- rtu.Commerce ----

// SelectItem is the dispatcher-side item-select control write.
func (e *Engine) SelectItem(id uint8) {
	if !e.pay.SelectItem(id) {
		e.log.Warn().Uint8("item", id).Msg("item select rejected, transaction in flight")
		return
	}
	e.log.Debug().Uint8("item", id).Msg("item selected")
}

// RequestDispense is the dispatcher-side dispense-trigger control write. It
// arms payment verification for the selected item.
func (e *Engine) RequestDispense() {
	if !e.pay.RequestDispense() {
		e.log.Warn().Msg("dispense trigger rejected, no selection or transaction in flight")
		return
	}
	e.log.Debug().Uint8("item", e.pay.ItemID()).Msg("transaction started")
}

// ---- TICK ----

// Tick advances every machine exactly one step.
func (e *Engine) Tick(now time.Time) {
	e.drainEvents()

	// Protocol side: bytes -> frames -> dispatch -> response bytes.
	for {
		b, ok := e.tr.Recv()
		if !ok {
			break
		}
		if frame, done := e.asm.Input(now, b); done {
			e.dispatch(now, frame)
		}
	}
	if frame, done := e.asm.Tick(now); done {
		e.dispatch(now, frame)
	}
	if b, send := e.disp.Tick(now, e.tr.ReadySend()); send {
		e.tr.Send(b)
	}

	// Commerce side.
	out := e.pay.Tick(vending.PaymentInputs{
		ItemDone:   e.item.Done(),
		ItemFailed: e.item.ReqFailed(),
	})
	if out.FireItem {
		e.item.Request(out.ItemID)
	}
	if out.QueueChange > 0 {
		e.log.Info().Uint32("amount", out.QueueChange).Msg("change queued")
		e.change.Queue(out.QueueChange)
	}
	e.item.Tick()
	e.change.Tick()

	// Physical outputs.
	for slot := 0; slot < registers.ItemCount; slot++ {
		e.hw.SetItemMotor(slot, e.item.Motor(uint8(slot)))
	}
	for line := 0; line < vending.DenomCount; line++ {
		e.hw.SetChangeMotor(line, e.change.Motor(line))
	}

	e.ready = true
	e.publishStatus(now)
}

func (e *Engine) dispatch(now time.Time, frame []byte) {
	e.disp.Dispatch(now, frame)
	e.lastComm = now
}

func (e *Engine) drainEvents() {
	for {
		select {
		case v := <-e.coins:
			e.pay.InsertCoin(v)
		case <-e.completes:
			e.pay.Complete()
		case <-e.cancels:
			e.pay.Cancel()
		default:
			return
		}
	}
}

func (e *Engine) publishStatus(now time.Time) {
	s := registers.Status{
		ChangeComplete:  e.change.Complete(),
		PaymentAccepted: e.pay.Accepted(),
		PaymentRejected: e.pay.Rejected(),
		DispenseActive:  e.item.Active() || e.change.Dispensing(),
		VendingError:    e.item.Failed(),
		CommActive:      !e.lastComm.IsZero() && now.Sub(e.lastComm) < e.cfg.CommHold,
		SystemReady:     e.ready,
		ItemID:          e.pay.ItemID(),
		LastFunction:    e.disp.LastFunction,
	}
	e.store.SetStatus(s.Encode())
}
