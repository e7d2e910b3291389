package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"blockfree/domain/register"
)

func TestObserverCountsRegisterEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewObserver(reg, "quotes")
	if err != nil {
		t.Fatalf("new observer: %v", err)
	}

	o, err := register.NewWithConfig(0, register.Config{Observer: obs})
	if err != nil {
		t.Fatalf("new register: %v", err)
	}
	o.Write(1)
	o.Write(2)
	o.Write(3)

	if got := testutil.ToFloat64(obs.writes); got != 3 {
		t.Errorf("expected 3 writes, got %v", got)
	}
	if got := testutil.ToFloat64(obs.version); got != 6 {
		t.Errorf("expected version 6, got %v", got)
	}
	if got := testutil.ToFloat64(obs.reclaimed); got != 3 {
		t.Errorf("expected 3 reclaimed, got %v", got)
	}
	if got := testutil.ToFloat64(obs.torn); got != 0 {
		t.Errorf("expected no torn reads, got %v", got)
	}
}

func TestNewObserverRejectsDuplicateName(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewObserver(reg, "dup"); err != nil {
		t.Fatalf("first observer: %v", err)
	}
	if _, err := NewObserver(reg, "dup"); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
