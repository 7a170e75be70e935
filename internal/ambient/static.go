package ambient

import (
	"sync"

	"github.com/strongdm/frontconf/internal/appconfig"
)

// Static is an externally writable source, the in-process equivalent of a
// global object assigned by the hosting page.
type Static struct {
	mu      sync.RWMutex
	cfg     *appconfig.AuthConfig
	user    string
	hasUser bool
}

// NewStatic returns a Static source with nothing published.
func NewStatic() *Static {
	return &Static{}
}

// Set publishes cfg. A nil cfg withdraws the published config.
func (s *Static) Set(cfg *appconfig.AuthConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg == nil {
		s.cfg = nil
		return
	}
	cp := *cfg
	s.cfg = &cp
}

// SetActiveUser publishes the active user identifier.
func (s *Static) SetActiveUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user, s.hasUser = id, true
}

// Clear withdraws everything.
func (s *Static) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = nil
	s.user, s.hasUser = "", false
}

// AppConfig returns a copy of the published config. A nil *Static publishes
// nothing.
func (s *Static) AppConfig() *appconfig.AuthConfig {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg == nil {
		return nil
	}
	cp := *s.cfg
	return &cp
}

func (s *Static) ActiveUserID() (string, bool) {
	if s == nil {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.hasUser
}
