// internal/hardware/hardware.go

// Package hardware is the physical boundary of the machine: item-present
// sensors, item release motors and change hopper motors. The engine only
// sees booleans; pin mapping lives in the backends.
package hardware

// Bank is the exact contract the engine drives.
type Bank interface {
	// ItemPresent reports the item-present sensor of a slot.
	ItemPresent(slot int) bool
	// SetItemMotor drives the release motor of a slot.
	SetItemMotor(slot int, on bool)
	// SetChangeMotor drives a change hopper line.
	SetChangeMotor(line int, on bool)
}

// Sim is an in-memory Bank for tests and demo runs. Zero value is unusable,
// use NewSim.
type Sim struct {
	Present      []bool
	ItemMotors   []bool
	ChangeMotors []bool

	// ItemPulses and ChangePulses count rising edges per output, so tests
	// can assert how often a motor fired.
	ItemPulses   []int
	ChangePulses []int
}

// NewSim creates a sim bank with every item present.
func NewSim(slots, changeLines int) *Sim {
	s := &Sim{
		Present:      make([]bool, slots),
		ItemMotors:   make([]bool, slots),
		ChangeMotors: make([]bool, changeLines),
		ItemPulses:   make([]int, slots),
		ChangePulses: make([]int, changeLines),
	}
	for i := range s.Present {
		s.Present[i] = true
	}
	return s
}

func (s *Sim) ItemPresent(slot int) bool {
	if slot < 0 || slot >= len(s.Present) {
		return false
	}
	return s.Present[slot]
}

func (s *Sim) SetItemMotor(slot int, on bool) {
	if slot < 0 || slot >= len(s.ItemMotors) {
		return
	}
	if on && !s.ItemMotors[slot] {
		s.ItemPulses[slot]++
	}
	s.ItemMotors[slot] = on
}

func (s *Sim) SetChangeMotor(line int, on bool) {
	if line < 0 || line >= len(s.ChangeMotors) {
		return
	}
	if on && !s.ChangeMotors[line] {
		s.ChangePulses[line]++
	}
	s.ChangeMotors[line] = on
}
