package timecode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1:15", 1.5},
		{"0:00", 0.0},
		{"10:29", 10 + 29.0/30},
		{"125:03", 125.1},
	}

	for _, tc := range cases {
		got, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.InDelta(t, tc.want, got, 1e-9, tc.in)
	}
}

func TestParseMalformed(t *testing.T) {
	for _, in := range []string{"115", "", "1:5", "ab:12", "1:x5", ":15"} {
		_, err := Parse(in)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q): expected ErrMalformed, got %v", in, err)
		}
	}
}

func TestMalformedReportsInput(t *testing.T) {
	_, err := Parse("115")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"115"`)
}

func TestTimeCodeSeconds(t *testing.T) {
	secs, err := TimeCode("0:15").Seconds()
	require.NoError(t, err)
	assert.Equal(t, 0.5, secs)
}
