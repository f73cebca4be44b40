// internal/hardware/gpio/gpio.go

// Package gpio drives the machine's sensors and motors through named GPIO
// pins via periph.io.
package gpio

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Config names the pins per slot and per change hopper line. A missing name
// leaves that input reading absent and that output unconnected.
type Config struct {
	SensorPins    []string
	ItemMotorPins []string
	ChangePins    []string
}

// Bank is a periph.io-backed hardware bank.
type Bank struct {
	sensors []gpio.PinIn
	items   []gpio.PinOut
	change  []gpio.PinOut
}

// Open initializes the host drivers and claims every configured pin.
func Open(cfg Config) (*Bank, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio: host init: %w", err)
	}

	b := &Bank{}

	for _, name := range cfg.SensorPins {
		pin, err := inPin(name)
		if err != nil {
			return nil, err
		}
		b.sensors = append(b.sensors, pin)
	}
	for _, name := range cfg.ItemMotorPins {
		pin, err := outPin(name)
		if err != nil {
			return nil, err
		}
		b.items = append(b.items, pin)
	}
	for _, name := range cfg.ChangePins {
		pin, err := outPin(name)
		if err != nil {
			return nil, err
		}
		b.change = append(b.change, pin)
	}

	return b, nil
}

func inPin(name string) (gpio.PinIn, error) {
	if name == "" {
		return nil, nil
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio: unknown pin %q", name)
	}
	if err := pin.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("gpio: configure input %q: %w", name, err)
	}
	return pin, nil
}

func outPin(name string) (gpio.PinOut, error) {
	if name == "" {
		return nil, nil
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio: unknown pin %q", name)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("gpio: configure output %q: %w", name, err)
	}
	return pin, nil
}

func (b *Bank) ItemPresent(slot int) bool {
	if slot < 0 || slot >= len(b.sensors) || b.sensors[slot] == nil {
		return false
	}
	return b.sensors[slot].Read() == gpio.High
}

func (b *Bank) SetItemMotor(slot int, on bool) {
	if slot < 0 || slot >= len(b.items) || b.items[slot] == nil {
		return
	}
	_ = b.items[slot].Out(gpio.Level(on))
}

func (b *Bank) SetChangeMotor(line int, on bool) {
	if line < 0 || line >= len(b.change) || b.change[line] == nil {
		return
	}
	_ = b.change[line].Out(gpio.Level(on))
}
