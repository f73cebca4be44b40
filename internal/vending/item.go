// internal/vending/item.go
package vending

// Inventory is the commerce port into the register store: price reads and
// inventory read/writes only.
type Inventory interface {
	Price(id uint8) uint16
	Stock(id uint8) uint16
	DecrementStock(id uint8)
}

// SlotSensor reports whether the item-present sensor for a slot reads true.
type SlotSensor func(id uint8) bool

type itemState uint8

const (
	itemIdle itemState = iota
	itemCheckStock
	itemDispensing
)

// ItemController sequences one physical item release:
// IDLE -> CHECK_STOCK -> DISPENSE -> UPDATE_INVENTORY -> IDLE.
// Out-of-stock or a dead sensor aborts with a persistent error and no
// inventory change.
type ItemController struct {
	inv           Inventory
	present       SlotSensor
	dispenseTicks int

	state     itemState
	itemID    uint8
	countdown int

	done      bool
	reqFailed bool
	failed    bool
}

// NewItemController creates a controller holding the motor for
// dispenseTicks steps per vend.
func NewItemController(inv Inventory, present SlotSensor, dispenseTicks int) *ItemController {
	if dispenseTicks < 1 {
		dispenseTicks = 1
	}
	return &ItemController{inv: inv, present: present, dispenseTicks: dispenseTicks}
}

// Request starts a dispense for an item slot. Ignored while one is already
// running.
func (c *ItemController) Request(id uint8) {
	if c.state != itemIdle {
		return
	}
	c.itemID = id
	c.done = false
	c.reqFailed = false
	c.state = itemCheckStock
}

// Tick advances the controller one step.
func (c *ItemController) Tick() {
	switch c.state {
	case itemCheckStock:
		if c.inv.Stock(c.itemID) == 0 || !c.present(c.itemID) {
			c.failed = true
			c.reqFailed = true
			c.done = true
			c.state = itemIdle
			return
		}
		c.countdown = c.dispenseTicks
		c.state = itemDispensing

	case itemDispensing:
		c.countdown--
		if c.countdown > 0 {
			return
		}
		c.inv.DecrementStock(c.itemID)
		c.done = true
		c.state = itemIdle
	}
}

// Active reports whether the dispense motor is held this step.
func (c *ItemController) Active() bool { return c.state == itemDispensing }

// Motor reports whether the motor output for slot id is asserted this step.
func (c *ItemController) Motor(id uint8) bool {
	return c.state == itemDispensing && id == c.itemID
}

// Done reports whether the last requested dispense has finished, in success
// or failure. Cleared by the next Request.
func (c *ItemController) Done() bool { return c.done }

// Failed reports the persistent vending-error state. It stays asserted
// until Clear.
func (c *ItemController) Failed() bool { return c.failed }

// ReqFailed reports whether the last requested dispense aborted. Cleared by
// the next Request.
func (c *ItemController) ReqFailed() bool { return c.reqFailed }

// Clear drops the persistent error state.
func (c *ItemController) Clear() { c.failed = false }

// ItemID returns the slot of the current or last dispense.
func (c *ItemController) ItemID() uint8 { return c.itemID }
