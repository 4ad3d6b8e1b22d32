package weather

import (
	"encoding/json"
	"math/rand"
	"testing"
)

func TestTransitionRowsSumTo100(t *testing.T) {
	for _, k := range All() {
		sum := 0
		for _, b := range Transitions[k] {
			if b.Weight <= 0 {
				t.Errorf("%s -> %s has weight %d", k, b.To, b.Weight)
			}
			sum += b.Weight
		}
		if sum != 100 {
			t.Errorf("%s row sums to %d", k, sum)
		}
	}
}

func TestNextOnlyFollowsTable(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, k := range All() {
		allowed := map[Kind]bool{}
		for _, b := range Transitions[k] {
			allowed[b.To] = true
		}
		for i := 0; i < 500; i++ {
			if got := Next(k, rng); !allowed[got] {
				t.Fatalf("Next(%s) = %s, not in table", k, got)
			}
		}
	}
}

func TestNextDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n = 20000
	stay := 0
	for i := 0; i < n; i++ {
		if Next(Clear, rng) == Clear {
			stay++
		}
	}
	ratio := float64(stay) / n
	if ratio < 0.47 || ratio > 0.53 {
		t.Errorf("Clear persisted %.3f of the time, want about 0.50", ratio)
	}
}

func TestModifiers(t *testing.T) {
	if m := For(Heatwave); m.ThirstMod != 3.0 || m.StaminaCost != 2.2 {
		t.Errorf("heatwave modifiers = %+v", m)
	}
	if m := For(Kind(200)); m != For(Clear) {
		t.Errorf("unknown weather should fall back to clear, got %+v", m)
	}
}

func TestCold(t *testing.T) {
	tests := []struct {
		k     Kind
		night bool
		want  bool
	}{
		{Snowstorm, false, true},
		{Rain, true, true},
		{Rain, false, false},
		{Thunderstorm, true, false},
		{Clear, true, false},
	}
	for _, tt := range tests {
		if got := tt.k.Cold(tt.night); got != tt.want {
			t.Errorf("%s.Cold(%v) = %v, want %v", tt.k, tt.night, got, tt.want)
		}
	}
}

func TestKindText(t *testing.T) {
	data, err := json.Marshal(DenseFog)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"Dense Fog"` {
		t.Errorf("encoded %s", data)
	}
	var k Kind
	if err := json.Unmarshal(data, &k); err != nil || k != DenseFog {
		t.Errorf("decoded %v, %v", k, err)
	}
	if err := json.Unmarshal([]byte(`"Hail"`), &k); err == nil {
		t.Error("expected error for unknown weather")
	}
}

func TestIdleLine(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, k := range All() {
		if IdleLine(k, rng) == "" {
			t.Errorf("empty idle line for %s", k)
		}
	}
}
