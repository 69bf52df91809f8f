package config

import "time"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Thought constraints
	MinThoughtLength int
	MaxThoughtLength int

	// Echo constraints
	MinWordsForEcho int
	MaxEchoLength   int
	MaxEchoes       int
	EchoProbability float64

	// Rate limiting
	RateLimit     int
	RateWindow    time.Duration
	RateWindowTTL time.Duration

	// Presence
	PresenceTTL  time.Duration
	PresenceSalt string
	HashBytes    int

	// Counters
	DailyCounterTTL time.Duration
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MinThoughtLength: 3,
		MaxThoughtLength: 200,

		MinWordsForEcho: 2,
		MaxEchoLength:   100,
		MaxEchoes:       500,
		EchoProbability: 0.2,

		RateLimit:     10,
		RateWindow:    time.Minute,
		RateWindowTTL: 120 * time.Second,

		PresenceTTL:  120 * time.Second,
		PresenceSalt: "void-salt",
		HashBytes:    8,

		DailyCounterTTL: 48 * time.Hour,
	}
}
