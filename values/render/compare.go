package render

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/wbrown/fieldvalues/values"
)

// ComparisonFormatter describes how two values relate
type ComparisonFormatter struct {
	useColor bool
}

// NewComparisonFormatter creates a formatter that colours its output when
// w is a terminal
func NewComparisonFormatter(w io.Writer) *ComparisonFormatter {
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &ComparisonFormatter{useColor: useColor}
}

// WithColor forces colour on or off
func (f *ComparisonFormatter) WithColor(enabled bool) *ComparisonFormatter {
	f.useColor = enabled
	return f
}

// Operator returns the relation symbol for left and right:
// "<" or ">" when they order apart, "==" when they are equal and "~"
// when they sort together without being equal, such as 1 and 1.0
func Operator(left, right values.Value) string {
	switch values.Compare(left, right) {
	case values.Less:
		return "<"
	case values.Greater:
		return ">"
	}
	if values.Equal(left, right) {
		return "=="
	}
	return "~"
}

// Format renders "left op right"
func (f *ComparisonFormatter) Format(left, right values.Value) string {
	op := Operator(left, right)

	var attr color.Attribute
	switch op {
	case "<":
		attr = color.FgGreen
	case ">":
		attr = color.FgRed
	case "==":
		attr = color.FgCyan
	default:
		attr = color.FgYellow
	}

	return fmt.Sprintf("%s %s %s", left, f.colorize(op, attr, color.Bold), right)
}

func (f *ComparisonFormatter) colorize(text string, attrs ...color.Attribute) string {
	if !f.useColor {
		return text
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}

// ComparisonString renders "left op right" without colour
func ComparisonString(left, right values.Value) string {
	return (&ComparisonFormatter{}).Format(left, right)
}
