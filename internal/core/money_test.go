package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "two decimals", input: "12.34", want: 1234},
		{name: "one decimal", input: "12.3", want: 1230},
		{name: "no decimals", input: "12", want: 1200},
		{name: "leading whitespace", input: "  5.00", want: 500},
		{name: "large amount", input: "999999.99", want: 99999999},
		{name: "smallest amount", input: "0.01", want: 1},
		{name: "zero rejected", input: "0", wantErr: true},
		{name: "zero with decimals rejected", input: "0.00", wantErr: true},
		{name: "negative rejected", input: "-4.20", wantErr: true},
		{name: "three decimals rejected", input: "12.345", wantErr: true},
		{name: "garbage rejected", input: "twelve", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
		{name: "lone dot rejected", input: ".", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) = %v, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidArgument) {
					t.Errorf("ParseAmount(%q) error = %v, want ErrInvalidArgument", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			if got.Cents != tt.want {
				t.Errorf("ParseAmount(%q) = %d cents, want %d", tt.input, got.Cents, tt.want)
			}
		})
	}
}

func TestParseMoneyAllowsZeroAndNegative(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"0", 0},
		{"0.00", 0},
		{"-50.25", -5025},
		{"-0.01", -1},
		{"100", 10000},
	}

	for _, tt := range tests {
		got, err := ParseMoney(tt.input)
		if err != nil {
			t.Fatalf("ParseMoney(%q) unexpected error: %v", tt.input, err)
		}
		if got.Cents != tt.want {
			t.Errorf("ParseMoney(%q) = %d cents, want %d", tt.input, got.Cents, tt.want)
		}
	}

	if _, err := ParseMoney("-1.234"); err == nil {
		t.Error("ParseMoney(-1.234) should reject three fractional digits")
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{1200, "12.00"},
		{1, "0.01"},
		{0, "0.00"},
		{-5025, "-50.25"},
		{100050, "1000.50"},
	}

	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, -1, 1234, -99999999} {
		m := Money{Cents: cents}
		data, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("Marshal(%d): %v", cents, err)
		}
		var back Money
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}
		if back.Cents != cents {
			t.Errorf("round trip %d -> %s -> %d", cents, data, back.Cents)
		}
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name string
		old  int64
		new  int64
		want float64
	}{
		{name: "simple increase", old: 10000, new: 15000, want: 50},
		{name: "simple decrease", old: 10000, new: 7500, want: -25},
		{name: "no change", old: 10000, new: 10000, want: 0},
		{name: "zero base positive new", old: 0, new: 500, want: 100},
		{name: "zero base zero new", old: 0, new: 0, want: 0},
		{name: "zero base negative new", old: 0, new: -500, want: 0},
		{name: "negative base", old: -10000, new: -5000, want: 50},
		{name: "cross zero", old: -10000, new: 10000, want: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentChange(Money{Cents: tt.old}, Money{Cents: tt.new})
			if got != tt.want {
				t.Errorf("PercentChange(%d, %d) = %v, want %v", tt.old, tt.new, got, tt.want)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1000}
	b := Money{Cents: 250}

	if got := a.Add(b); got.Cents != 1250 {
		t.Errorf("Add = %d, want 1250", got.Cents)
	}
	if got := a.Sub(b); got.Cents != 750 {
		t.Errorf("Sub = %d, want 750", got.Cents)
	}
	if got := b.Sub(a); got.Cents != -750 {
		t.Errorf("Sub = %d, want -750", got.Cents)
	}
	if !(Money{}).IsZero() {
		t.Error("zero Money should report IsZero")
	}
}
