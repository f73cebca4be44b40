// cmd/vendd/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/yashaswikaran/ModVend/internal/config"
	"github.com/yashaswikaran/ModVend/internal/engine"
	"github.com/yashaswikaran/ModVend/internal/hardware"
	"github.com/yashaswikaran/ModVend/internal/hardware/gpio"
	"github.com/yashaswikaran/ModVend/internal/registers"
	"github.com/yashaswikaran/ModVend/internal/transport"
	"github.com/yashaswikaran/ModVend/internal/transport/serial"
	"github.com/yashaswikaran/ModVend/internal/vending"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Str("app", "vendd").Logger()

	if len(os.Args) < 2 {
		log.Fatal().Msg("usage: vendd <config.yaml>")
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config validation failed")
	}
	config.Normalize(cfg)
	v := cfg.Vendd

	// --------------------
	// Register store
	// --------------------

	items := make([]registers.Item, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, registers.Item{ID: it.ID, Price: it.Price, Stock: it.Stock})
	}
	store := registers.NewStore(items)

	// --------------------
	// Transport + hardware
	// --------------------

	var tr transport.Transport
	if v.Serial.Port == "" {
		log.Info().Msg("no serial port configured, running demo loopback transport")
		tr = transport.NewLoopback(256)
	} else {
		st, err := serial.Open(serial.Config{Port: v.Serial.Port, Baud: v.BaudRate}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("serial open failed")
		}
		tr = st
	}
	defer tr.Close()

	var hw hardware.Bank
	if v.GPIO != nil {
		gb, err := gpio.Open(gpio.Config{
			SensorPins:    v.GPIO.SensorPins,
			ItemMotorPins: v.GPIO.ItemMotorPins,
			ChangePins:    v.GPIO.ChangePins,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("gpio open failed")
		}
		hw = gb
	} else {
		log.Info().Msg("no gpio pin map configured, running simulated hardware")
		hw = hardware.NewSim(registers.ItemCount, vending.DenomCount)
	}

	// --------------------
	// Engine
	// --------------------

	eng, err := engine.New(engine.Config{
		SlaveAddress: v.SlaveAddress,
		BaudRate:     v.BaudRate,
		Tick:         time.Duration(v.TickMs) * time.Millisecond,
		ItemPulse:    time.Duration(v.Dispense.ItemPulseMs) * time.Millisecond,
		ChangePulse:  time.Duration(v.Dispense.ChangePulseMs) * time.Millisecond,
		ChangeGap:    time.Duration(v.Dispense.ChangeGapMs) * time.Millisecond,
	}, store, tr, hw, log)
	if err != nil {
		log.Fatal().Err(err).Msg("engine build failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng.Run(ctx)
	log.Info().Msg("shutting down")
}
