package ambient

import (
	"testing"

	"github.com/strongdm/frontconf/internal/appconfig"
)

func TestChainFirstValueWins(t *testing.T) {
	t.Parallel()
	first := NewStatic()
	second := NewStatic()
	second.Set(&appconfig.AuthConfig{ClientID: "second"})
	second.SetActiveUser("second-user")

	chain := Chain{nil, first, second}

	if cfg := chain.AppConfig(); cfg == nil || cfg.ClientID != "second" {
		t.Fatalf("AppConfig() = %+v, want second", cfg)
	}
	if id, ok := chain.ActiveUserID(); !ok || id != "second-user" {
		t.Fatalf("ActiveUserID() = %q, %v", id, ok)
	}

	first.Set(&appconfig.AuthConfig{ClientID: "first"})
	if cfg := chain.AppConfig(); cfg == nil || cfg.ClientID != "first" {
		t.Fatalf("AppConfig() = %+v, want first", cfg)
	}
	// Methods resolve independently.
	if id, _ := chain.ActiveUserID(); id != "second-user" {
		t.Fatalf("ActiveUserID() = %q, want second-user", id)
	}
}

func TestEmptyChain(t *testing.T) {
	t.Parallel()
	var chain Chain
	if cfg := chain.AppConfig(); cfg != nil {
		t.Fatalf("AppConfig() = %+v", cfg)
	}
	if _, ok := chain.ActiveUserID(); ok {
		t.Fatal("ActiveUserID() set on empty chain")
	}
}
