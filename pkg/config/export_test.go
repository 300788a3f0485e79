package config

// Reset clears the per-type cache between tests.
func Reset() { reset() }
