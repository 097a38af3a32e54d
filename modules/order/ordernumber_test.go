package order

import (
	"testing"
	"time"
)

func TestOrderNumberGenerator_Format(t *testing.T) {
	gen, err := NewOrderNumberGenerator()
	if err != nil {
		t.Fatalf("NewOrderNumberGenerator() error = %v", err)
	}
	gen.now = func() time.Time { return time.UnixMilli(1700000000123) }

	number := gen.Next()
	if !IsValidOrderNumber(number) {
		t.Errorf("Next() generated invalid number: %s", number)
	}
	if got, want := number[:18], "ORD-1700000000123-"; got != want {
		t.Errorf("Next() prefix = %q, want %q", got, want)
	}
}

func TestOrderNumberGenerator_Uniqueness(t *testing.T) {
	gen, err := NewOrderNumberGenerator()
	if err != nil {
		t.Fatalf("NewOrderNumberGenerator() error = %v", err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		number := gen.Next()
		if seen[number] {
			t.Fatalf("Next() generated duplicate number: %s", number)
		}
		seen[number] = true
	}
}

func TestIsValidOrderNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   bool
	}{
		{name: "valid", number: "ORD-1700000000123-AB12CD34EF", want: true},
		{name: "wrong prefix", number: "INV-1700000000123-AB12CD34EF", want: false},
		{name: "lowercase suffix", number: "ORD-1700000000123-ab12cd34ef", want: false},
		{name: "short suffix", number: "ORD-1700000000123-AB12", want: false},
		{name: "non numeric time", number: "ORD-17000x0000123-AB12CD34EF", want: false},
		{name: "legacy three digit suffix", number: "ORD-1700000000123-042", want: false},
		{name: "empty", number: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidOrderNumber(tt.number); got != tt.want {
				t.Errorf("IsValidOrderNumber(%q) = %v, want %v", tt.number, got, tt.want)
			}
		})
	}
}
