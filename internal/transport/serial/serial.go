// internal/transport/serial/serial.go

// Package serial adapts a UART port to the engine's transport contract.
// Two pump goroutines move bytes between the blocking port and the
// non-blocking FIFOs the tick loop polls.
package serial

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	goserial "go.bug.st/serial"
)

const fifoDepth = 256

// Config is minimal port config.
type Config struct {
	Port string
	Baud int
}

// Transport is a UART-backed byte transport.
type Transport struct {
	port goserial.Port
	log  zerolog.Logger

	rx   chan byte
	tx   chan byte
	done chan struct{}
}

// Open opens the port 8N1 at the configured baud rate and starts the RX/TX
// pumps.
func Open(cfg Config, log zerolog.Logger) (*Transport, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("serial: port required")
	}
	if cfg.Baud <= 0 {
		cfg.Baud = 9600
	}

	mode := &goserial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   goserial.NoParity,
		StopBits: goserial.OneStopBit,
	}
	port, err := goserial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", cfg.Port, err)
	}
	if err := port.SetReadTimeout(100 * time.Millisecond); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("serial: set read timeout: %w", err)
	}

	t := &Transport{
		port: port,
		log:  log,
		rx:   make(chan byte, fifoDepth),
		tx:   make(chan byte, fifoDepth),
		done: make(chan struct{}),
	}
	go t.rxPump()
	go t.txPump()
	return t, nil
}

func (t *Transport) rxPump() {
	buf := make([]byte, 64)
	for {
		n, err := t.port.Read(buf)
		if err != nil {
			select {
			case <-t.done:
			default:
				t.log.Error().Err(err).Msg("serial read failed, rx pump stopped")
			}
			return
		}
		for _, b := range buf[:n] {
			select {
			case t.rx <- b:
			default:
				// Engine stalled long enough to fill the FIFO; the
				// frame will fail CRC and be dropped there.
			}
		}
	}
}

func (t *Transport) txPump() {
	for {
		select {
		case <-t.done:
			return
		case b := <-t.tx:
			if _, err := t.port.Write([]byte{b}); err != nil {
				t.log.Error().Err(err).Msg("serial write failed, tx pump stopped")
				return
			}
		}
	}
}

func (t *Transport) Recv() (byte, bool) {
	select {
	case b := <-t.rx:
		return b, true
	default:
		return 0, false
	}
}

func (t *Transport) ReadySend() bool { return len(t.tx) < cap(t.tx) }

func (t *Transport) Send(b byte) {
	select {
	case t.tx <- b:
	default:
	}
}

func (t *Transport) Close() error {
	close(t.done)
	return t.port.Close()
}
