package generator

import "time"

// Config drives the synthetic data generator.
type Config struct {
	NumCustomers      int
	NumTransactions   int
	P2PChance         float64
	ReturnChance      float64
	DeviceShareChance float64
	Seed              int64
	Start             time.Time
}

// DefaultConfig returns settings that produce a dataset shaped like the public feed.
func DefaultConfig() Config {
	return Config{
		NumCustomers:      50,
		NumTransactions:   500,
		P2PChance:         0.2,
		ReturnChance:      0.1,
		DeviceShareChance: 0.3,
		Seed:              42,
		Start:             time.Date(2022, 9, 1, 9, 0, 0, 0, time.UTC),
	}
}
