// internal/registers/store.go
package registers

import "sync"

// Item seeds one slot of the store.
type Item struct {
	ID    uint8
	Price uint16
	Stock uint16
}

// Store is the shared register space. Each address range occupies its own
// block, peamodbus-style. The protocol dispatcher and the commerce machines
// are the two logical ports; they target disjoint sub-ranges in normal
// operation, and a single RWMutex serializes the rare overlap so the
// contract stays last-write-wins per address per step.
type Store struct {
	mu        sync.RWMutex
	inventory [InventoryEnd - InventoryBase + 1]uint16
	price     [PriceEnd - PriceBase + 1]uint16
	status    uint16
}

// NewStore creates a store seeded with the given items. Slots not listed
// stay at zero price and zero stock.
func NewStore(items []Item) *Store {
	s := &Store{}
	for _, it := range items {
		if int(it.ID) >= ItemCount {
			continue
		}
		s.inventory[it.ID] = it.Stock
		s.price[it.ID] = it.Price
	}
	return s
}

// Read returns the value at addr. Undefined addresses read as zero; the two
// write-only control addresses also read as zero.
func (s *Store) Read(addr uint16) uint16 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case addr <= InventoryEnd:
		return s.inventory[addr-InventoryBase]
	case addr >= PriceBase && addr <= PriceEnd:
		return s.price[addr-PriceBase]
	case addr == AddrStatus:
		return s.status
	default:
		return 0
	}
}

// Write stores value at addr. Writes outside the inventory and price ranges
// are silent no-ops: the control addresses are intercepted by the dispatcher
// before they reach the store, and the status register is engine-owned.
func (s *Store) Write(addr, value uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case addr <= InventoryEnd:
		s.inventory[addr-InventoryBase] = value
	case addr >= PriceBase && addr <= PriceEnd:
		s.price[addr-PriceBase] = value
	}
}

// ---- COMMERCE PORT ----
//
// The commerce machines only read prices and read/write inventory. These
// helpers keep call sites honest about that partition.

// Price returns the price register of an item slot.
func (s *Store) Price(id uint8) uint16 {
	if int(id) >= ItemCount {
		return 0
	}
	return s.Read(PriceBase + uint16(id))
}

// Stock returns the inventory register of an item slot.
func (s *Store) Stock(id uint8) uint16 {
	if int(id) >= ItemCount {
		return 0
	}
	return s.Read(InventoryBase + uint16(id))
}

// DecrementStock lowers an item's inventory by one, saturating at zero.
func (s *Store) DecrementStock(id uint8) {
	if int(id) >= ItemCount {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inventory[id] > 0 {
		s.inventory[id]--
	}
}

// SetStatus publishes the status word. Engine use only.
func (s *Store) SetStatus(word uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = word
}
