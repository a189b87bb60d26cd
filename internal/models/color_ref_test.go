package models

import (
	"encoding/json"
	"testing"
)

func TestColorRefRoundTripRawString(t *testing.T) {
	var c ColorRef
	if err := json.Unmarshal([]byte(`"Navy"`), &c); err != nil {
		t.Fatalf("unmarshal raw string failed: %v", err)
	}
	if c.Raw != "Navy" || c.Name != "" {
		t.Fatalf("raw form want Raw=Navy got %+v", c)
	}
	if c.Display() != "Navy" {
		t.Fatalf("display want Navy got %s", c.Display())
	}

	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `"Navy"` {
		t.Fatalf("raw form must round-trip as bare string, got %s", out)
	}
}

func TestColorRefRoundTripNamedObject(t *testing.T) {
	var c ColorRef
	if err := json.Unmarshal([]byte(`{"name":"Forest","hex":"#0b3d2e"}`), &c); err != nil {
		t.Fatalf("unmarshal object failed: %v", err)
	}
	if c.Name != "Forest" || c.Hex != "#0b3d2e" || c.Raw != "" {
		t.Fatalf("object form mismatch: %+v", c)
	}

	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var back ColorRef
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("round-trip unmarshal failed: %v", err)
	}
	if back != c {
		t.Fatalf("object form must round-trip unchanged: %+v vs %+v", back, c)
	}
}

func TestColorRefNullAndScan(t *testing.T) {
	var c ColorRef
	if err := json.Unmarshal([]byte(`null`), &c); err != nil {
		t.Fatalf("unmarshal null failed: %v", err)
	}
	if !c.IsZero() {
		t.Fatalf("null should produce zero color, got %+v", c)
	}

	if err := c.Scan([]byte(`"Charcoal"`)); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if c.Raw != "Charcoal" {
		t.Fatalf("scan want Raw=Charcoal got %+v", c)
	}

	value, err := ColorRef{}.Value()
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}
	if value != nil {
		t.Fatalf("zero color should store NULL, got %v", value)
	}
}

func TestOrderValueFallsBackToNetTotal(t *testing.T) {
	order := &Order{GrandTotal: mustMoney(t, "0"), NetTotal: mustMoney(t, "180.00")}
	if order.Value().String() != "180.00" {
		t.Fatalf("zero grand total should fall back to net, got %s", order.Value())
	}

	order.GrandTotal = mustMoney(t, "240.50")
	if order.Value().String() != "240.50" {
		t.Fatalf("positive grand total wins, got %s", order.Value())
	}
}

func mustMoney(t *testing.T, raw string) Money {
	t.Helper()
	var m Money
	if err := json.Unmarshal([]byte(`"`+raw+`"`), &m); err != nil {
		t.Fatalf("parse money %s failed: %v", raw, err)
	}
	return m
}
