// internal/vending/change.go
package vending

// ComputeChange breaks an owed amount into per-denomination counts, greedy
// largest-first. Exact for every amount because the set contains a 1-unit
// coin; the iteration bound is a guard against a future non-canonical
// denomination table looping forever.
func ComputeChange(amount uint32) [DenomCount]uint32 {
	var counts [DenomCount]uint32
	for i := 0; i < DenomCount && amount > 0; i++ {
		d := Denominations[i]
		counts[i] = amount / d
		amount %= d
	}
	return counts
}

type seqPhase uint8

const (
	seqIdle seqPhase = iota
	seqPulse
	seqGap
)

// Sequencer drives the change hoppers: per denomination with a nonzero
// count, one timed pulse per coin, separated by a quiet gap, largest
// denomination first. Tick-driven, one state advance per step.
type Sequencer struct {
	pulseTicks int
	gapTicks   int

	phase     seqPhase
	counts    [DenomCount]uint32
	denom     int
	countdown int
	complete  bool
}

// NewSequencer creates a sequencer with pulse and inter-pulse gap durations
// expressed in ticks.
func NewSequencer(pulseTicks, gapTicks int) *Sequencer {
	if pulseTicks < 1 {
		pulseTicks = 1
	}
	if gapTicks < 1 {
		gapTicks = 1
	}
	return &Sequencer{pulseTicks: pulseTicks, gapTicks: gapTicks}
}

// Queue adds an owed amount to the dispense plan. Zero is a no-op. Amounts
// queued while dispensing extend the current plan.
func (s *Sequencer) Queue(amount uint32) {
	if amount == 0 {
		return
	}
	add := ComputeChange(amount)
	for i := range s.counts {
		s.counts[i] += add[i]
	}
	s.complete = false
	if s.phase == seqIdle {
		s.denom = 0
		s.phase = seqGap
		s.countdown = 1
	}
}

// Tick advances the sequencer one step.
func (s *Sequencer) Tick() {
	switch s.phase {
	case seqIdle:
		return

	case seqPulse:
		s.countdown--
		if s.countdown > 0 {
			return
		}
		s.counts[s.denom]--
		s.phase = seqGap
		s.countdown = s.gapTicks

	case seqGap:
		s.countdown--
		if s.countdown > 0 {
			return
		}
		if !s.advance() {
			s.phase = seqIdle
			s.complete = true
			return
		}
		s.phase = seqPulse
		s.countdown = s.pulseTicks
	}
}

// advance moves denom to the largest entry with coins left to pay out.
// Scanning from the top keeps largest-first ordering even when a payout is
// queued mid-dispense.
func (s *Sequencer) advance() bool {
	for i := 0; i < DenomCount; i++ {
		if s.counts[i] > 0 {
			s.denom = i
			return true
		}
	}
	return false
}

// Dispensing reports whether a payout is in progress.
func (s *Sequencer) Dispensing() bool { return s.phase != seqIdle }

// Complete reports whether the last queued payout has finished. Cleared by
// the next Queue.
func (s *Sequencer) Complete() bool { return s.complete }

// Motor reports whether hopper line i is pulsed this step.
func (s *Sequencer) Motor(i int) bool {
	return s.phase == seqPulse && i == s.denom
}
