// Package override carries the manually entered exception table (sick,
// permission, leave, duty-travel days) and merges it onto the attendance
// stream ahead of status resolution.
package override

import (
	"regexp"
	"strings"
	"time"

	"github.com/tomonapit/rekapabsen/internal/schema"
	"github.com/tomonapit/rekapabsen/internal/status"
)

// Record is one manual exception entry.
type Record struct {
	ID     int64
	Name   string
	NIK    string
	Date   time.Time
	Status string
	Note   string
}

func (r Record) DateKey() string { return r.Date.Format("2006-01-02") }

var (
	punctuation = regexp.MustCompile(`[^\w\s]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// CleanName canonicalizes an employee name for matching: uppercase, strip
// punctuation, collapse internal whitespace.
func CleanName(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	name = punctuation.ReplaceAllString(name, "")
	name = whitespace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// Apply attaches a manual status to every attendance record that an override
// row matches, and returns the enriched stream.
//
// Two lookup maps are built from the override table: one keyed by
// (NIK, date) from rows that carry a NIK, one keyed by (cleaned name, date)
// from rows that do not. Later rows overwrite earlier ones on key collision.
// Rows with a status outside the allowed set or a zero date never enter
// either map. Each attendance record tries the NIK map first, then the name
// map, and otherwise keeps an empty manual status.
func Apply(records []schema.Record, overrides []Record) []schema.Record {
	out := make([]schema.Record, len(records))
	copy(out, records)
	for i := range out {
		out[i].Manual = ""
	}
	if len(overrides) == 0 {
		return out
	}

	byNIK := make(map[string]string)
	byName := make(map[string]string)
	for _, ov := range overrides {
		st := strings.ToUpper(strings.TrimSpace(ov.Status))
		if _, ok := status.ManualAllowed[st]; !ok {
			continue
		}
		if ov.Date.IsZero() {
			continue
		}
		nik := strings.TrimSpace(ov.NIK)
		if nik != "" {
			byNIK[nik+"|"+ov.DateKey()] = st
		} else {
			byName[CleanName(ov.Name)+"|"+ov.DateKey()] = st
		}
	}

	for i := range out {
		rec := &out[i]
		if st, ok := byNIK[strings.TrimSpace(rec.NIK)+"|"+rec.DateKey()]; ok {
			rec.Manual = st
			continue
		}
		if st, ok := byName[CleanName(rec.Name)+"|"+rec.DateKey()]; ok {
			rec.Manual = st
		}
	}
	return out
}
