package order

import (
	"fmt"
	"strings"
	"time"

	nanoid "github.com/jaevor/go-nanoid"
)

const (
	orderNumberPrefix   = "ORD"
	orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	orderNumberSuffix   = 10
)

// OrderNumberGenerator produces ORD-<unix ms>-<10 random [0-9A-Z]> numbers.
type OrderNumberGenerator struct {
	random func() string
	now    func() time.Time
}

// NewOrderNumberGenerator creates a generator backed by nanoid.
func NewOrderNumberGenerator() (*OrderNumberGenerator, error) {
	random, err := nanoid.CustomASCII(orderNumberAlphabet, orderNumberSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to create order number generator: %w", err)
	}
	return &OrderNumberGenerator{random: random, now: time.Now}, nil
}

// Next returns a new order number.
func (g *OrderNumberGenerator) Next() string {
	return fmt.Sprintf("%s-%d-%s", orderNumberPrefix, g.now().UnixMilli(), g.random())
}

// IsValidOrderNumber reports whether s has the order number shape.
func IsValidOrderNumber(s string) bool {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || parts[0] != orderNumberPrefix {
		return false
	}
	if parts[1] == "" || strings.Trim(parts[1], "0123456789") != "" {
		return false
	}
	if len(parts[2]) != orderNumberSuffix {
		return false
	}
	for _, c := range parts[2] {
		if !strings.ContainsRune(orderNumberAlphabet, c) {
			return false
		}
	}
	return true
}
