package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostPerPage(t *testing.T) {
	tests := []struct {
		pages int
		want  string
	}{
		{pages: 0, want: "0"},
		{pages: 1, want: "0.3"},
		{pages: 10, want: "3"},
		{pages: 333, want: "99.9"},
	}

	for _, tt := range tests {
		got, err := Cost(ModelPerPage, tt.pages, 0)
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
			"pages=%d: got %s, want %s", tt.pages, got, tt.want)
	}
}

func TestCostPerCharBlock(t *testing.T) {
	tests := []struct {
		chars int
		want  string
	}{
		{chars: 0, want: "0"},
		{chars: 1860, want: "0.8"},
		{chars: 930, want: "0.4"},
		{chars: 3720, want: "1.6"},
		// 0.80 * 100 / 1860 = 0.04301... rounds to 0.04
		{chars: 100, want: "0.04"},
	}

	for _, tt := range tests {
		got, err := Cost(ModelPerCharBlock, 0, tt.chars)
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
			"chars=%d: got %s, want %s", tt.chars, got, tt.want)
	}
}

func TestCostRoundsHalfUp(t *testing.T) {
	// 0.80 * 1872 / 1860 = 0.805161... -> 0.81
	got, err := Cost(ModelPerCharBlock, 0, 1872)
	require.NoError(t, err)
	assert.Equal(t, "0.81", got.StringFixed(2))
}

func TestCostUnknownModel(t *testing.T) {
	_, err := Cost(99, 10, 10)
	assert.ErrorIs(t, err, ErrUnknownModel)

	_, err = Cost(0, 10, 10)
	assert.ErrorIs(t, err, ErrUnknownModel)
}
