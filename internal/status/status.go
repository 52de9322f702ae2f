// Package status turns a merged attendance record into its final daily
// status code plus derived lateness/overtime minute counts.
package status

import (
	"github.com/tomonapit/rekapabsen/internal/schema"
	"github.com/tomonapit/rekapabsen/internal/timeparse"
)

// Status vocabulary. The manual codes (S/I/C/DL) come from the override
// table and always win; the rest are derived from the scans.
const (
	Present    = "H"   // attended, on time or compensated by overtime
	Incomplete = "TL"  // missing clock-in or clock-out scan
	ShortDay   = "K8"  // left before the clock-out threshold
	LateBand1  = "TL1" // late 1-30 minutes, uncompensated
	LateBand2  = "TL2" // late 31-60 minutes, uncompensated
	LateBand3  = "TL3" // late >= 61 minutes, never compensated
	Sick       = "S"
	Permission = "I"
	Leave      = "C"
	DutyTravel = "DL"
)

// ManualAllowed is the set of accepted manual-exception codes. Override rows
// outside it are ignored, never an error.
var ManualAllowed = map[string]struct{}{
	Sick: {}, Permission: {}, Leave: {}, DutyTravel: {},
}

// Codes lists every status code in report column order.
var Codes = []string{
	Present, Sick, Permission, Leave, DutyTravel,
	ShortDay, Incomplete, LateBand1, LateBand2, LateBand3,
}

const (
	DefaultClockInLimit  = "07:30:00"
	DefaultClockOutLimit = "16:00:00"
)

// Thresholds holds the configured clock-in and clock-out limits.
type Thresholds struct {
	In  timeparse.TimeOfDay
	Out timeparse.TimeOfDay
}

// ParseThresholds builds thresholds from configuration strings. Malformed
// values fall back to the documented defaults rather than failing the run.
func ParseThresholds(clockIn, clockOut string) Thresholds {
	in, ok := timeparse.Clock(clockIn)
	if !ok {
		in, _ = timeparse.Clock(DefaultClockInLimit)
	}
	out, ok := timeparse.Clock(clockOut)
	if !ok {
		out, _ = timeparse.Clock(DefaultClockOutLimit)
	}
	return Thresholds{In: in, Out: out}
}

// Resolution is the resolver's output for one record.
type Resolution struct {
	Code            string
	LateMinutes     int
	OvertimeMinutes int
}

// Resolve applies the daily status policy. Decision order, first match wins:
//
//  1. a valid manual status is returned verbatim with zero minutes
//  2. a missing scan on either side is Incomplete, zero minutes
//  3. clocking out before the threshold is Short-day, keeping the lateness
//     count but never accruing overtime
//  4. on-time arrivals are Present with any overtime
//  5. late arrivals band at 30/60 minutes; bands 1 and 2 upgrade to Present
//     when overtime covers the lateness, band 3 never does
func Resolve(manual string, clockIn, clockOut *timeparse.TimeOfDay, th Thresholds) Resolution {
	if _, ok := ManualAllowed[manual]; ok && manual != "" {
		return Resolution{Code: manual}
	}

	if clockIn == nil || clockOut == nil {
		return Resolution{Code: Incomplete}
	}

	late := timeparse.Minutes(th.In, *clockIn)
	if late < 0 {
		late = 0
	}

	if clockOut.Before(th.Out) {
		return Resolution{Code: ShortDay, LateMinutes: late}
	}

	overtime := timeparse.Minutes(th.Out, *clockOut)
	if overtime < 0 {
		overtime = 0
	}

	if late == 0 {
		return Resolution{Code: Present, OvertimeMinutes: overtime}
	}

	code := LateBand3
	switch {
	case late <= 30:
		code = LateBand1
	case late <= 60:
		code = LateBand2
	}
	if code != LateBand3 && overtime >= late {
		code = Present
	}
	return Resolution{Code: code, LateMinutes: late, OvertimeMinutes: overtime}
}

// ResolveAll enriches every record with its resolution. The input order is
// preserved; resolving twice with the same thresholds is idempotent.
func ResolveAll(records []schema.Record, th Thresholds) []schema.Record {
	out := make([]schema.Record, len(records))
	for i, rec := range records {
		res := Resolve(rec.Manual, rec.ClockIn, rec.ClockOut, th)
		rec.Status = res.Code
		rec.LateMinutes = res.LateMinutes
		rec.OvertimeMinutes = res.OvertimeMinutes
		out[i] = rec
	}
	return out
}
