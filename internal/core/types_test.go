package core

import (
	"encoding/json"
	"testing"
)

func TestDirection_Constants(t *testing.T) {
	dirs := []Direction{DirectionLong, DirectionShort}
	expected := []string{"long", "short"}

	for i, d := range dirs {
		if string(d) != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], d)
		}
	}
}

func TestDirection_IsValid(t *testing.T) {
	tests := []struct {
		dir  Direction
		want bool
	}{
		{DirectionLong, true},
		{DirectionShort, true},
		{"LONG", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := tt.dir.IsValid(); got != tt.want {
			t.Errorf("Direction(%q).IsValid() = %v, want %v", tt.dir, got, tt.want)
		}
	}
}

func TestFloat(t *testing.T) {
	p := Float(1.5)
	if p == nil || *p != 1.5 {
		t.Fatalf("expected pointer to 1.5, got %v", p)
	}
	if Float(1.5) == p {
		t.Error("expected distinct pointers")
	}
}

func TestMarketRecord_NullFieldsDecodeAsNil(t *testing.T) {
	var rec MarketRecord
	payload := `{"symbol":"btc","current_price":90,"change_24h":null,"market_cap":0}`
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if rec.Change24h != nil {
		t.Errorf("expected nil 24h change, got %v", *rec.Change24h)
	}
	if rec.ATH != nil {
		t.Errorf("expected nil ATH for absent field, got %v", *rec.ATH)
	}
	if rec.MarketCap == nil || *rec.MarketCap != 0 {
		t.Errorf("expected explicit zero market cap, got %v", rec.MarketCap)
	}
}
