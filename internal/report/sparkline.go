package report

import (
	"math"
	"strings"
)

var sparkTicks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇'}

// Sparkline renders values as a row of block ticks. smallest/largest fix the
// scale; pass negative values to derive them from the data.
func Sparkline(values []float64, smallest, largest float64) string {
	if len(values) == 0 {
		return ""
	}

	if smallest < 0 {
		smallest = values[0]
		for _, v := range values {
			smallest = math.Min(smallest, v)
		}
	}
	if largest < 0 {
		largest = values[0]
		for _, v := range values {
			largest = math.Max(largest, v)
		}
	}

	rng := largest - smallest
	if rng == 0 {
		rng = largest
	}

	var b strings.Builder
	scale := float64(len(sparkTicks) - 1)
	for _, v := range values {
		if rng == 0 {
			b.WriteRune(sparkTicks[0])
			continue
		}
		tick := int(math.Round((v - smallest) / rng * scale))
		if tick > len(sparkTicks)-1 {
			tick = len(sparkTicks) - 1
		}
		if tick < 0 {
			tick = 0
		}
		b.WriteRune(sparkTicks[tick])
	}
	return b.String()
}

// SeriesSparkline renders a weekly series, drawing quarter breaks as gaps.
func SeriesSparkline(series []WeekEffort, smallest, largest float64) string {
	values := make([]float64, 0, len(series))
	for _, entry := range series {
		if entry.QuarterBreak {
			continue
		}
		values = append(values, float64(entry.Minutes))
	}
	spark := Sparkline(values, smallest, largest)

	var b strings.Builder
	ticks := []rune(spark)
	i := 0
	for _, entry := range series {
		if entry.QuarterBreak {
			b.WriteRune(' ')
			continue
		}
		if i < len(ticks) {
			b.WriteRune(ticks[i])
			i++
		}
	}
	return b.String()
}

// TruncateMiddle shortens s to at most n characters, replacing the middle
// with an ellipsis.
func TruncateMiddle(s string, n int) string {
	if len(s) <= n {
		return s
	}
	tail := n/2 - 3
	head := n - tail - 3
	if tail < 0 || head < 0 {
		return s[:n]
	}
	return s[:head] + "..." + s[len(s)-tail:]
}
