package assistant

import "sync/atomic"

// Settings holds the runtime toggles. They are not persisted and reset to the
// configured values on restart.
type Settings struct {
	aiEnabled       atomic.Bool
	fallbackEnabled atomic.Bool
}

func NewSettings(aiEnabled, fallbackEnabled bool) *Settings {
	s := &Settings{}
	s.aiEnabled.Store(aiEnabled)
	s.fallbackEnabled.Store(fallbackEnabled)
	return s
}

func (s *Settings) AIEnabled() bool {
	return s.aiEnabled.Load()
}

// SetAIEnabled returns the previous value.
func (s *Settings) SetAIEnabled(enabled bool) bool {
	return s.aiEnabled.Swap(enabled)
}

func (s *Settings) FallbackEnabled() bool {
	return s.fallbackEnabled.Load()
}

func (s *Settings) SetFallbackEnabled(enabled bool) bool {
	return s.fallbackEnabled.Swap(enabled)
}
