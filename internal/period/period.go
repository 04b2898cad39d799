// Package period implements the discrete time bucketing used to index
// published diagnosis-key batches, and the backfill planning over those
// buckets. Everything here is pure arithmetic on epoch milliseconds.
package period

import "time"

// Period is a fixed-length time bucket index since the Unix epoch.
type Period int64

const millisPerHour = int64(time.Hour / time.Millisecond)

// Since returns the period containing t at the given granularity.
func Since(t time.Time, hoursPerPeriod int) Period {
	return Period(floorDiv(t.UnixMilli(), int64(hoursPerPeriod)*millisPerHour))
}

// Start returns the first instant of period p, the inverse of Since.
func Start(p Period, hoursPerPeriod int) time.Time {
	return time.UnixMilli(int64(p) * int64(hoursPerPeriod) * millisPerHour).UTC()
}

// floorDiv divides rounding toward negative infinity, so the round-trip law
// holds for pre-epoch timestamps too.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
