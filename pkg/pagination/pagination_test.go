package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		want        Params
		wantOffset  int
	}{
		{name: "defaults", page: 0, limit: 0, want: Params{Page: 1, Limit: 12}, wantOffset: 0},
		{name: "explicit", page: 3, limit: 20, want: Params{Page: 3, Limit: 20}, wantOffset: 40},
		{name: "limit capped", page: 1, limit: 500, want: Params{Page: 1, Limit: 100}, wantOffset: 0},
		{name: "negative page", page: -2, limit: 5, want: Params{Page: 1, Limit: 5}, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.page, tt.limit, 12, 100)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOffset, got.Offset())
		})
	}
}

func TestTotalPages(t *testing.T) {
	p := Params{Page: 1, Limit: 10}
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(10))
	assert.Equal(t, 2, p.TotalPages(11))
}
