package numerator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Format(t *testing.T) {
	cfg := DefaultConfig("INV")

	assert.Equal(t, "INV-000001", cfg.Format(1))
	assert.Equal(t, "INV-123456", cfg.Format(123456))
	assert.Equal(t, "INV-1234567", cfg.Format(1234567))
	assert.Equal(t, "inv", cfg.Key())
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"INV-000042", 42},
		{"INV-2024-00007", 7},
		{"000100", 100},
		{"INV-", -1},
		{"", -1},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumber(tt.in))
		})
	}
}

func TestMockGenerator_Sequential(t *testing.T) {
	gen := NewMockGenerator()
	cfg := DefaultConfig("INV")
	ctx := context.Background()

	first, err := gen.GetNextNumber(ctx, cfg)
	require.NoError(t, err)
	second, err := gen.GetNextNumber(ctx, cfg)
	require.NoError(t, err)

	assert.Equal(t, "INV-000001", first)
	assert.Equal(t, "INV-000002", second)

	require.NoError(t, gen.SetNextNumber(ctx, cfg, 99))
	third, err := gen.GetNextNumber(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "INV-000100", third)
}
