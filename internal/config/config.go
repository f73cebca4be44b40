// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Vendd VenddConfig `yaml:"vendd"`
}

type VenddConfig struct {
	SlaveAddress uint8 `yaml:"slave_address"`
	BaudRate     int   `yaml:"baud_rate"`
	TickMs       int   `yaml:"tick_ms"`

	Serial   SerialConfig   `yaml:"serial"`
	Dispense DispenseConfig `yaml:"dispense"`
	Items    []ItemConfig   `yaml:"items"`
	GPIO     *GPIOConfig    `yaml:"gpio"`
}

// ---- TRANSPORT ----

type SerialConfig struct {
	// Port is the UART device. Empty means demo mode: in-memory loopback
	// transport and simulated hardware.
	Port string `yaml:"port"`
}

// ---- DISPENSE TIMING ----

type DispenseConfig struct {
	ItemPulseMs   int `yaml:"item_pulse_ms"`
	ChangePulseMs int `yaml:"change_pulse_ms"`
	ChangeGapMs   int `yaml:"change_gap_ms"`
}

// ---- ITEM SEEDS ----

type ItemConfig struct {
	ID    uint8  `yaml:"id"`
	Price uint16 `yaml:"price"`
	Stock uint16 `yaml:"stock"`
}

// ---- PIN MAP ----

type GPIOConfig struct {
	SensorPins    []string `yaml:"sensor_pins"`
	ItemMotorPins []string `yaml:"item_motor_pins"`
	ChangePins    []string `yaml:"change_pins"`
}

// Load reads and decodes a config file. Validation is a separate step.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return &cfg, nil
}
