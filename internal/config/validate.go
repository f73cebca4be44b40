// internal/config/validate.go
package config

import (
	"fmt"
)

const maxItems = 16

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	v := cfg.Vendd

	// ------------------------------------------------------------
	// PROTOCOL IDENTITY
	// ------------------------------------------------------------

	if v.SlaveAddress > 247 {
		return fmt.Errorf("slave_address %d out of range 1..247", v.SlaveAddress)
	}

	if v.BaudRate < 0 {
		return fmt.Errorf("baud_rate must be positive, got %d", v.BaudRate)
	}

	if v.TickMs < 0 {
		return fmt.Errorf("tick_ms must be positive, got %d", v.TickMs)
	}

	// ------------------------------------------------------------
	// DISPENSE TIMING
	// ------------------------------------------------------------

	if v.Dispense.ItemPulseMs < 0 {
		return fmt.Errorf("item_pulse_ms must be positive, got %d", v.Dispense.ItemPulseMs)
	}
	if v.Dispense.ChangePulseMs < 0 {
		return fmt.Errorf("change_pulse_ms must be positive, got %d", v.Dispense.ChangePulseMs)
	}
	if v.Dispense.ChangeGapMs < 0 {
		return fmt.Errorf("change_gap_ms must be positive, got %d", v.Dispense.ChangeGapMs)
	}

	// ------------------------------------------------------------
	// ITEM SEEDS
	// ------------------------------------------------------------

	if len(v.Items) > maxItems {
		return fmt.Errorf("at most %d items supported, got %d", maxItems, len(v.Items))
	}

	seen := make(map[uint8]struct{})
	for _, it := range v.Items {
		if int(it.ID) >= maxItems {
			return fmt.Errorf("item id %d out of range 0..%d", it.ID, maxItems-1)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("item id %d configured twice", it.ID)
		}
		seen[it.ID] = struct{}{}
	}

	return nil
}
