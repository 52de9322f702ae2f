package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// TimeOfDay is a clock value stored as seconds since midnight.
type TimeOfDay int

const secondsPerDay = 24 * 60 * 60

func At(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

func (t TimeOfDay) Hour() int   { return int(t) / 3600 }
func (t TimeOfDay) Minute() int { return (int(t) % 3600) / 60 }
func (t TimeOfDay) Second() int { return int(t) % 60 }

func (t TimeOfDay) Before(other TimeOfDay) bool { return t < other }

func (t TimeOfDay) String() string {
	return time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC).Format("15:04:05")
}

// HHMM renders the clock value the way scan times appear on reports.
func (t TimeOfDay) HHMM() string {
	return time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC).Format("15:04")
}

// Minutes returns the whole minutes from one clock value to another,
// floored toward negative infinity so that a 30 second shortfall still
// counts as a minute short.
func Minutes(from, to TimeOfDay) int {
	diff := int(to) - int(from)
	if diff >= 0 {
		return diff / 60
	}
	return -((-diff + 59) / 60)
}

var clockPattern = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)

// fractionEpoch anchors pure day fractions when a full timestamp is needed,
// matching how spreadsheet tools render a bare time cell.
var fractionEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Clock converts a cell value into a time of day. It accepts values that are
// already typed, day fractions in [0,1), absolute spreadsheet serials, bare
// H:MM / HH:MM:SS strings, and generic day-first date expressions. Anything
// unparseable reports ok=false rather than an error.
func Clock(v any) (TimeOfDay, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case TimeOfDay:
		return x, true
	case time.Time:
		if x.IsZero() {
			return 0, false
		}
		h, m, s := x.Clock()
		return At(h, m, s), true
	case float64:
		return clockFromNumber(x)
	case int:
		return clockFromNumber(float64(x))
	case string:
		return clockFromString(x)
	default:
		return 0, false
	}
}

// Stamp is the companion mode of Clock: it produces a full timestamp with
// the date part preserved instead of stripped.
func Stamp(v any) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return x, !x.IsZero()
	case float64:
		return stampFromNumber(x)
	case int:
		return stampFromNumber(float64(x))
	case string:
		return stampFromString(x)
	default:
		return time.Time{}, false
	}
}

// Date parses a calendar date, discarding any time component.
func Date(v any) (time.Time, bool) {
	stamp, ok := Stamp(v)
	if !ok {
		return time.Time{}, false
	}
	y, m, d := stamp.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

func clockFromNumber(f float64) (TimeOfDay, bool) {
	if f >= 0 && f < 1 {
		secs := int(f*secondsPerDay + 0.5)
		if secs >= secondsPerDay {
			secs = secondsPerDay - 1
		}
		return TimeOfDay(secs), true
	}
	parsed, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return 0, false
	}
	h, m, s := parsed.Clock()
	return At(h, m, s), true
}

func stampFromNumber(f float64) (time.Time, bool) {
	if f >= 0 && f < 1 {
		t, ok := clockFromNumber(f)
		if !ok {
			return time.Time{}, false
		}
		return fractionEpoch.Add(time.Duration(t) * time.Second), true
	}
	parsed, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func clockFromString(s string) (TimeOfDay, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return clockFromNumber(f)
	}
	if clockPattern.MatchString(s) {
		return clockLiteral(s)
	}
	parsed, ok := parseDayFirst(s)
	if !ok {
		return 0, false
	}
	h, m, sec := parsed.Clock()
	return At(h, m, sec), true
}

func stampFromString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return stampFromNumber(f)
	}
	if clockPattern.MatchString(s) {
		t, ok := clockLiteral(s)
		if !ok {
			return time.Time{}, false
		}
		return fractionEpoch.Add(time.Duration(t) * time.Second), true
	}
	return parseDayFirst(s)
}

func clockLiteral(s string) (TimeOfDay, bool) {
	parts := strings.Split(s, ":")
	if len(parts) == 2 {
		parts = append(parts, "00")
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	if h > 23 || m > 59 || sec > 59 {
		return 0, false
	}
	return At(h, m, sec), true
}

// dayFirstFormats lists accepted layouts, day-first variants ahead of the
// ISO and month-first fallbacks.
var dayFirstFormats = []string{
	"2/1/2006",
	"02/01/2006",
	"2-1-2006",
	"02-01-2006",
	"2.1.2006",
	"2/1/2006 15:04",
	"02/01/2006 15:04",
	"2/1/2006 15:04:05",
	"02/01/2006 15:04:05",
	"2/1/06",
	"02/01/06",
	"2 Jan 2006",
	"2 January 2006",
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"Jan 2, 2006",
	"January 2, 2006",
}

func parseDayFirst(s string) (time.Time, bool) {
	for _, layout := range dayFirstFormats {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
