package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimeframe(t *testing.T) {
	assert.Equal(t, TimeframeM5, ParseTimeframe(" m5 "))
	assert.Equal(t, TimeframeH1, ParseTimeframe("H1"))
	assert.Equal(t, Timeframe("M7"), ParseTimeframe("m7"))
}

func TestLookback(t *testing.T) {
	cases := map[Timeframe]int{
		TimeframeM1:  150,
		TimeframeM5:  150,
		TimeframeM15: 100,
		TimeframeH1:  75,
		TimeframeH4:  40,
		TimeframeD1:  15,
		"WEIRD":      40,
	}
	for tf, want := range cases {
		assert.Equal(t, want, tf.Lookback(), "timeframe %s", tf)
	}
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 5*time.Minute, TimeframeM5.Duration())
	assert.Equal(t, 24*time.Hour, TimeframeD1.Duration())
	assert.Equal(t, time.Duration(0), Timeframe("??").Duration())
}
