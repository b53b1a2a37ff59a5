package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want uint64
	}{
		{"0 B", 0},
		{"512 B", 512},
		{"700 MB", 700_000_000},
		{"1.5 GB", 1_500_000_000},
		{"2.34 TB", 2_340_000_000_000},
		{"  1.5 GB  ", 1_500_000_000},
		{"1.5 gb", 1_500_000_000},
	}

	for _, tt := range tests {
		got, err := ParseSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseSizeMalformed(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "700", "MB", "700 XB", "many MB", "1.5GB extra words"} {
		_, err := ParseSize(in)
		require.Error(t, err, in)
		var malformed *MalformedSizeError
		assert.ErrorAs(t, err, &malformed, in)
	}
}

func TestFormatSizeAuto(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0.00 B"},
		{512, "512.00 B"},
		{999, "999.00 B"},
		{1_500, "1.50 KB"},
		{700_000_000, "700.00 MB"},
		{1_500_000_000, "1.50 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.in, ""))
	}
}

func TestFormatSizeFixedUnit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1500.00 MB", FormatSize(1_500_000_000, "MB"))
	assert.Equal(t, "0.00 TB", FormatSize(512, "TB"))
	assert.Equal(t, "1.50 GB", FormatSize(1_500_000_000, "gb"))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	// Formatting a parsed size lands back in the same unit family.
	for _, s := range []string{"1.50 GB", "700.00 MB", "512.00 B", "2.34 TB"} {
		n, err := ParseSize(s)
		require.NoError(t, err)
		assert.Equal(t, s, FormatSize(n, ""))
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Valid("GB"))
	assert.True(t, Valid("kb"))
	assert.False(t, Valid("XB"))
	assert.False(t, Valid(""))
}
