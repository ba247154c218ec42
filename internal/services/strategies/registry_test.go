package strategies

import (
	"errors"
	"testing"

	"EquityScout/internal/domain/models"
)

func TestRegistryNamesOrder(t *testing.T) {
	r := NewRegistry()
	want := []string{StrategyCloudTrend, StrategySqueeze, StrategyMAAlignment, StrategyCupHandle}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("names = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistrySelectUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Select([]string{StrategySqueeze, "macd"})
	if !errors.Is(err, models.ErrInvalidFilter) {
		t.Fatalf("expected invalid filter, got %v", err)
	}
}

func TestRegistrySelectEmpty(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Select(nil); !errors.Is(err, models.ErrInvalidFilter) {
		t.Fatalf("expected invalid filter, got %v", err)
	}
}

func TestRegistrySelectDedupes(t *testing.T) {
	r := NewRegistry()
	out, err := r.Select([]string{StrategySqueeze, StrategySqueeze, StrategyCupHandle})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("selected %d strategies, want 2", len(out))
	}
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()
	if r.Get(StrategyMAAlignment) == nil {
		t.Fatalf("expected registered strategy")
	}
	if r.Get("unknown") != nil {
		t.Fatalf("unexpected strategy for unknown name")
	}
}
