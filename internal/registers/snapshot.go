// internal/registers/snapshot.go
package registers

// Status is exactly what the engine publishes into the status register each
// step. It contains no logic and no memory of the past beyond current state.
type Status struct {
	ChangeComplete  bool
	PaymentAccepted bool
	PaymentRejected bool
	DispenseActive  bool
	VendingError    bool
	CommActive      bool
	SystemReady     bool

	ItemID       uint8 // current item id, low 4 bits used
	LastFunction uint8 // last processed function code, low 4 bits used
}

// Status register bit positions, MSB first. Bit 8 is reserved.
const (
	bitChangeComplete  = 15
	bitPaymentAccepted = 14
	bitPaymentRejected = 13
	bitDispenseActive  = 12
	bitVendingError    = 11
	bitCommActive      = 10
	bitSystemReady     = 9
)

// Encode packs a Status into the 16-bit status word. Layout is
// protocol-locked. No IO. No side effects.
func (s Status) Encode() uint16 {
	var w uint16
	set := func(bit int, on bool) {
		if on {
			w |= 1 << bit
		}
	}
	set(bitChangeComplete, s.ChangeComplete)
	set(bitPaymentAccepted, s.PaymentAccepted)
	set(bitPaymentRejected, s.PaymentRejected)
	set(bitDispenseActive, s.DispenseActive)
	set(bitVendingError, s.VendingError)
	set(bitCommActive, s.CommActive)
	set(bitSystemReady, s.SystemReady)

	w |= uint16(s.ItemID&0x0F) << 4
	w |= uint16(s.LastFunction & 0x0F)
	return w
}
