// internal/registers/constants.go
package registers

// Register map. These values define the device protocol and MUST NOT be
// configurable.

// ---- ADDRESS RANGES ----

// Inventory counts, one register per item, index = item id.
const (
	InventoryBase uint16 = 0x0000
	InventoryEnd  uint16 = 0x00FF
)

// Item prices, one register per item, index = item id.
const (
	PriceBase uint16 = 0x0100
	PriceEnd  uint16 = 0x01FF
)

// ---- CONTROL / STATUS ADDRESSES ----

// AddrStatus is the read-only status register.
const AddrStatus uint16 = 0xFF00

// AddrDispense is the write-only dispense trigger. Writing 1 fires it.
const AddrDispense uint16 = 0xFF10

// AddrItemSelect is the write-only item select. Low 4 bits carry the item id.
const AddrItemSelect uint16 = 0xFF11

// ---- LIMITS ----

// ItemCount is the number of item slots the machine drives.
const ItemCount = 16

// ItemIDMask extracts the item id from an item-select write.
const ItemIDMask uint16 = 0x000F
