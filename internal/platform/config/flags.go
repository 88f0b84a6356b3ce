package config

import "context"

// StaticFlags is a FeatureFlags implementation backed by the loaded
// configuration's flags map. Flags are fixed for the process lifetime;
// changing one requires a restart.
type StaticFlags struct {
	flags map[string]bool
}

// NewStaticFlags creates a flag evaluator over the given flag map.
// A nil map is valid; every lookup then returns its default.
func NewStaticFlags(flags map[string]bool) *StaticFlags {
	return &StaticFlags{flags: flags}
}

// IsEnabled returns the configured value for flag, or defaultValue when the
// flag is not configured.
func (s *StaticFlags) IsEnabled(_ context.Context, flag string, defaultValue bool) bool {
	if v, ok := s.flags[flag]; ok {
		return v
	}

	return defaultValue
}
