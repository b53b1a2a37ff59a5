package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"#d4a017", "#d4a017"},
		{"d4a017", "#d4a017"},
		{"0xd4a017", "#d4a017"},
		{"#fa0", "#ffaa00"},
		{" #d4a017 ", "#d4a017"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeHex(tt.in), tt.in)
	}
}

func TestDimColor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#7f7f7f", dimColor("#ffffff", 0.5))
	assert.Equal(t, "#000000", dimColor("#000000", 0.5))
}

func TestMixColors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#000000", mixColors("#000000", "#ffffff", 0))
	assert.Equal(t, "#ffffff", mixColors("#000000", "#ffffff", 1))
}
