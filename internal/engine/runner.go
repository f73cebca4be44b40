// internal/engine/runner.go
package engine

import (
	"context"
	"time"
)

// Run starts the tick loop and blocks until ctx is canceled. One goroutine
// owns every machine; the event channels are the only way in.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.Tick)
	defer ticker.Stop()

	e.log.Info().
		Uint8("slave", e.cfg.SlaveAddress).
		Int("baud", e.cfg.BaudRate).
		Dur("tick", e.cfg.Tick).
		Msg("engine running")

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			e.Tick(now)
		}
	}
}
