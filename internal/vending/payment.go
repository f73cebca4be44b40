// internal/vending/payment.go
package vending

// PaymentState is the payment machine's current state.
type PaymentState uint8

const (
	PayIdle PaymentState = iota
	PayWaitCoins
	PayCheckPrice
	PayVerify
	PayDispense
	PayReturnChange
	PayCancel
	PayComplete
)

// PaymentInputs carries the signals a payment step reads from the other
// machines. User-facing events (coins, complete, cancel) are latched on the
// machine itself between ticks.
type PaymentInputs struct {
	ItemDone   bool // item controller finished the requested dispense
	ItemFailed bool // ... and it aborted
}

// PaymentOutputs carries the side effects one payment step requests.
type PaymentOutputs struct {
	FireItem    bool   // start the item dispense controller
	ItemID      uint8  // ... for this slot
	QueueChange uint32 // amount to hand to the change sequencer, 0 = nothing
}

// Payment accumulates inserted value for the selected item, verifies it
// against the price and computes change owed. Exactly one transaction is
// live at a time; a select or dispense request arriving while one is in
// flight is rejected.
type Payment struct {
	inv Inventory

	state    PaymentState
	itemID   uint8
	selected bool
	inserted uint32
	price    uint32
	change   uint32

	// latched user events, consumed by the next Tick
	pendingCoins    []uint32
	pendingStart    bool
	pendingComplete bool
	pendingCancel   bool

	accepted bool
	rejected bool
}

// NewPayment creates an idle payment machine reading prices from inv.
func NewPayment(inv Inventory) *Payment {
	return &Payment{inv: inv}
}

// InFlight reports whether a transaction is currently open.
func (p *Payment) InFlight() bool { return p.state != PayIdle }

// SelectItem latches the item choice for the next transaction. Rejected
// while one is in flight: the open transaction keeps its item.
func (p *Payment) SelectItem(id uint8) bool {
	if p.InFlight() {
		return false
	}
	p.itemID = id & 0x0F
	p.selected = true
	return true
}

// RequestDispense arms the transaction start. Rejected while one is in
// flight or when no item has been selected.
func (p *Payment) RequestDispense() bool {
	if p.InFlight() || !p.selected {
		return false
	}
	p.pendingStart = true
	return true
}

// InsertCoin latches one coin event. The value is checked against the known
// denominations at the next Tick.
func (p *Payment) InsertCoin(value uint32) {
	p.pendingCoins = append(p.pendingCoins, value)
}

// Complete latches the user's payment-complete signal.
func (p *Payment) Complete() { p.pendingComplete = true }

// Cancel latches the user's cancel signal.
func (p *Payment) Cancel() { p.pendingCancel = true }

// Accepted reports the payment-accepted flag of the last transaction.
func (p *Payment) Accepted() bool { return p.accepted }

// Rejected reports the payment-rejected flag of the last transaction.
func (p *Payment) Rejected() bool { return p.rejected }

// State returns the current machine state.
func (p *Payment) State() PaymentState { return p.state }

// ItemID returns the selected item of the current or last transaction.
func (p *Payment) ItemID() uint8 { return p.itemID }

// Inserted returns the value accumulated so far.
func (p *Payment) Inserted() uint32 { return p.inserted }

// Tick advances the machine one step and returns the side effects it wants
// this step.
func (p *Payment) Tick(in PaymentInputs) PaymentOutputs {
	var out PaymentOutputs

	switch p.state {
	case PayIdle:
		if p.pendingStart {
			p.pendingStart = false
			p.inserted = 0
			p.accepted = false
			p.rejected = false
			p.pendingCoins = p.pendingCoins[:0]
			p.pendingComplete = false
			p.pendingCancel = false
			p.state = PayWaitCoins
		}

	case PayWaitCoins:
		for _, v := range p.pendingCoins {
			if _, ok := DenomIndex(v); !ok {
				// Unrecognized denomination: flag and drop, the
				// transaction keeps running.
				p.rejected = true
				continue
			}
			p.inserted += v
		}
		p.pendingCoins = p.pendingCoins[:0]

		switch {
		case p.pendingCancel:
			p.pendingCancel = false
			p.rejected = true
			p.state = PayCancel
		case p.pendingComplete:
			p.pendingComplete = false
			p.state = PayCheckPrice
		}

	case PayCheckPrice:
		p.price = uint32(p.inv.Price(p.itemID))
		p.state = PayVerify

	case PayVerify:
		if p.pendingCancel {
			p.pendingCancel = false
			p.rejected = true
			p.state = PayCancel
			break
		}
		if p.inserted >= p.price {
			p.accepted = true
			p.change = p.inserted - p.price
			out.FireItem = true
			out.ItemID = p.itemID
			p.state = PayDispense
		} else {
			p.rejected = true
			p.state = PayCancel
		}

	case PayDispense:
		if !in.ItemDone {
			break
		}
		if in.ItemFailed {
			// Aborted vend: the error signal is the surface, refund
			// policy lives above this layer.
			p.state = PayComplete
			break
		}
		p.state = PayReturnChange

	case PayReturnChange:
		out.QueueChange = p.change
		p.change = 0
		p.state = PayComplete

	case PayCancel:
		// Full refund of everything inserted.
		out.QueueChange = p.inserted
		p.state = PayComplete

	case PayComplete:
		p.inserted = 0
		p.selected = false
		p.state = PayIdle

	default:
		// Unreachable state combination: defensive return to idle.
		p.state = PayIdle
	}

	return out
}
