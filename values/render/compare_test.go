package render

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wbrown/fieldvalues/values"
)

func TestOperator(t *testing.T) {
	tests := []struct {
		left, right values.Value
		want        string
	}{
		{values.Int(1), values.Int(2), "<"},
		{values.String("b"), values.Int(2), ">"},
		{values.Int(1), values.Int(1), "=="},
		{values.Int(1), values.Float(1), "~"},
		{values.Float(0), values.Float(math.Copysign(0, -1)), "~"},
		{values.Float(math.NaN()), values.FloatBits(0xfff8000000000001), "=="},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Operator(tt.left, tt.right), "%s vs %s", tt.left, tt.right)
	}
}

func TestComparisonString(t *testing.T) {
	assert.Equal(t, `1 < "a"`, ComparisonString(values.Int(1), values.String("a")))
	assert.Equal(t, "1 ~ 1.0", ComparisonString(values.Int(1), values.Float(1)))
}

func TestComparisonFormatterColor(t *testing.T) {
	var buf bytes.Buffer
	f := NewComparisonFormatter(&buf)
	assert.Equal(t, "1 > nil", f.Format(values.Int(1), values.Null()), "buffers are not terminals")

	colored := f.WithColor(true).Format(values.Int(1), values.Null())
	assert.Contains(t, colored, "\x1b[")
	assert.Contains(t, colored, ">")
	assert.NotEqual(t, "1 > nil", colored)
}
