package ambient

import "github.com/strongdm/frontconf/internal/appconfig"

// Chain consults sources in order; the first one with a value wins. Nil
// entries are skipped.
type Chain []appconfig.Source

func (c Chain) AppConfig() *appconfig.AuthConfig {
	for _, src := range c {
		if src == nil {
			continue
		}
		if cfg := src.AppConfig(); cfg != nil {
			return cfg
		}
	}
	return nil
}

func (c Chain) ActiveUserID() (string, bool) {
	for _, src := range c {
		if src == nil {
			continue
		}
		if id, ok := src.ActiveUserID(); ok {
			return id, true
		}
	}
	return "", false
}
