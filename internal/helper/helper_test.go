package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKucoinType(t *testing.T) {
	cases := map[string]string{
		"1m":    "1min",
		"1min":  "1min",
		" 5M ":  "5min",
		"60m":   "1hour",
		"1h":    "1hour",
		"4hour": "4hour",
		"1d":    "1day",
	}
	for in, want := range cases {
		got, err := KucoinType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := KucoinType("7m")
	assert.Error(t, err)
}

func TestTimeframeToDuration(t *testing.T) {
	assert.Equal(t, time.Minute, TimeframeToDuration("1min"))
	assert.Equal(t, 4*time.Hour, TimeframeToDuration("4h"))
	assert.Equal(t, time.Duration(0), TimeframeToDuration("bogus"))
}
