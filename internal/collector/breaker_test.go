package collector

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
)

func TestNewBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	cb := NewBreaker("test", BreakerConfig{MaxFailures: 2})

	fail := func() (any, error) { return nil, errors.New("down") }
	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(fail); err == nil {
			t.Fatal("expected failure")
		}
	}

	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("expected open state, got %s", cb.State())
	}

	_, err := cb.Execute(func() (any, error) { return "ok", nil })
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
}

func TestNewBreaker_Defaults(t *testing.T) {
	cb := NewBreaker("defaults", BreakerConfig{})
	if cb.Name() != "defaults" {
		t.Errorf("expected name defaults, got %s", cb.Name())
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected closed state, got %s", cb.State())
	}
}
