package transpiler

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/kubev2v/logql-transpiler/pkg/errors"
	"github.com/kubev2v/logql-transpiler/pkg/registry"
)

// ParseTimeOrDefault parses an RFC3339 timestamp, an integer of unix
// nanoseconds or a float of unix seconds. An empty value yields def.
func ParseTimeOrDefault(value string, def time.Time) (time.Time, error) {
	if value == "" {
		return def, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if ns, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(0, ns), nil
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(math.Round(frac*1e9))), nil
	}
	return time.Time{}, errors.NewInvalidExpressionError("time", value, nil)
}

// ParseDuration parses a LogQL duration such as 5m or 1h30m.
func ParseDuration(value string) (time.Duration, error) {
	ms, err := registry.DurationMs(value)
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// ParseStep parses a query step given in seconds or as a duration. An empty
// value means no step.
func ParseStep(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		if f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, errors.NewInvalidExpressionError("step", value, fmt.Errorf("step must be positive"))
		}
		return time.Duration(f * float64(time.Second)), nil
	}
	return ParseDuration(value)
}

// Align widens [start, end] to whole multiples of d.
func Align(start, end, d int64) (int64, int64) {
	if d <= 0 {
		return start, end
	}
	return floorDiv(start, d) * d, -floorDiv(-end, d) * d
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
