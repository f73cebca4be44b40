// internal/config/normalize.go
package config

// Reference deployment seeds: four demo items.
var demoItems = []ItemConfig{
	{ID: 0, Price: 50, Stock: 10},
	{ID: 1, Price: 100, Stock: 8},
	{ID: 2, Price: 20, Stock: 12},
	{ID: 3, Price: 500, Stock: 4},
}

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	v := &cfg.Vendd

	if v.SlaveAddress == 0 {
		v.SlaveAddress = 1
	}
	if v.BaudRate == 0 {
		v.BaudRate = 9600
	}
	if v.TickMs == 0 {
		v.TickMs = 1
	}

	if v.Dispense.ItemPulseMs == 0 {
		v.Dispense.ItemPulseMs = 500
	}
	if v.Dispense.ChangePulseMs == 0 {
		v.Dispense.ChangePulseMs = 120
	}
	if v.Dispense.ChangeGapMs == 0 {
		v.Dispense.ChangeGapMs = 80
	}

	if len(v.Items) == 0 {
		v.Items = append(v.Items, demoItems...)
	}
}
