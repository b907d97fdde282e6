package netlist

// Config controls connectivity analysis.
type Config struct {
	// Tolerance is the maximum coordinate distance at which two points
	// count as the same electrical location (schematic length units).
	Tolerance float64

	// HashDecimals is the grid precision used to bucket wire vertices
	// before the tolerance fallback pass.
	HashDecimals int

	// AnonPrefix prefixes synthetic names for unlabeled nets.
	AnonPrefix string
}

// DefaultConfig returns a Config with sensible defaults for most schematics.
func DefaultConfig() *Config {
	return &Config{
		Tolerance:    0.01,
		HashDecimals: 4,
		AnonPrefix:   "N",
	}
}

// Validate clamps out-of-range settings back to usable values.
func (c *Config) Validate() {
	if c.Tolerance <= 0 {
		c.Tolerance = 0.01
	}
	if c.HashDecimals < 0 || c.HashDecimals > 9 {
		c.HashDecimals = 4
	}
	if c.AnonPrefix == "" {
		c.AnonPrefix = "N"
	}
}
