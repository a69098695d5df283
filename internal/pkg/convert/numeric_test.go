package convert

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToFloat64(t *testing.T) {
	assert.Equal(t, 1.5, ToFloat64(1.5))
	assert.Equal(t, 2.0, ToFloat64(2))
	assert.Equal(t, 3.0, ToFloat64(int64(3)))
	assert.Equal(t, 4.5, ToFloat64(" 4.5 "))
	assert.Equal(t, 5.5, ToFloat64(json.Number("5.5")))
	assert.Equal(t, 0.0, ToFloat64(nil))
	assert.Equal(t, 0.0, ToFloat64("not a number"))
	assert.Equal(t, 0.0, ToFloat64([]string{"x"}))
}
