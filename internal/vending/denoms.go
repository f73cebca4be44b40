// internal/vending/denoms.go
package vending

// Denominations is the fixed set of accepted coin and note face values,
// largest-first. The order is load-bearing: change computation walks it
// front to back, and the change sequencer owns one hopper line per entry.
var Denominations = [...]uint32{2000, 500, 100, 50, 20, 10, 5, 2, 1}

// DenomCount is the number of hopper lines.
const DenomCount = len(Denominations)

// DenomIndex returns the hopper index for a face value, or false for a
// value the machine does not accept.
func DenomIndex(value uint32) (int, bool) {
	for i, d := range Denominations {
		if d == value {
			return i, true
		}
	}
	return 0, false
}
