// Package schema normalizes heterogeneous attendance exports into the fixed
// record layout the rest of the pipeline works on. Attendance machines in the
// field disagree on almost every header name, so mapping runs in two phases:
// an exact alias lookup over a fixed synonym table, then a substring scan for
// the scan-in/scan-out columns. Missing columns never fail normalization;
// they come back empty.
package schema

import (
	"regexp"
	"strings"
	"time"

	"github.com/tomonapit/rekapabsen/internal/timeparse"
)

// Canonical column names, matching the export vocabulary of the upstream
// attendance machines.
const (
	ColName  = "Nama"
	ColNIK   = "NIK"
	ColUnit  = "Unit"
	ColGrade = "GOL"
	ColDate  = "Tanggal"
	ColIn    = "Scan Masuk"
	ColOut   = "Scan Pulang"
)

// Record is one scan entry after column normalization. The merge and resolve
// stages enrich it in place; nothing mutates it after resolution.
type Record struct {
	Name  string
	NIK   string
	Unit  string
	Grade string
	Date  time.Time

	ClockIn  *timeparse.TimeOfDay
	ClockOut *timeparse.TimeOfDay

	// Manual holds the matched override status, empty when none applies.
	Manual string

	// Resolution output.
	Status          string
	LateMinutes     int
	OvertimeMinutes int
}

// Day is the 1-based day of month of the record's date.
func (r Record) Day() int { return r.Date.Day() }

// DateKey renders the record's date the way override lookup keys expect it.
func (r Record) DateKey() string { return r.Date.Format("2006-01-02") }

var aliases = buildAliases()

func buildAliases() map[string]string {
	a := make(map[string]string)
	add := func(canonical string, names ...string) {
		for _, n := range names {
			a[n] = canonical
		}
	}
	add(ColName, "nama", "nama pegawai", "pegawai", "employee", "name")
	add(ColNIK, "nik", "nip", "id", "id pegawai", "employee id", "no pegawai")
	add(ColUnit, "unit", "bagian", "departemen", "department", "ruangan", "instalasi")
	add(ColGrade, "gol", "golongan", "grade", "level", "pangkat")
	add(ColDate, "tanggal", "tgl", "date", "tanggal absen", "tanggal absensi")
	add(ColIn,
		"scan masuk", "scan masuk 1", "scan masuk1",
		"jam masuk", "jam masuk 1", "jam masuk1",
		"check in", "checkin", "clock in", "in", "masuk")
	add(ColOut,
		"scan pulang", "scan pulang 1", "scan pulang1",
		"jam pulang", "jam pulang 1", "jam pulang1",
		"check out", "checkout", "clock out", "out", "pulang")
	return a
}

// substringFallbacks drives the second matching phase: if no alias claimed a
// scan column, the first unclaimed header containing one of these keywords is
// taken.
var substringFallbacks = []struct {
	canonical string
	keywords  []string
}{
	{ColIn, []string{"masuk", "check in", "clock in"}},
	{ColOut, []string{"pulang", "check out", "clock out"}},
}

var whitespace = regexp.MustCompile(`\s+`)

func normalizeHeader(header string) string {
	header = strings.ReplaceAll(header, "\n", " ")
	header = strings.ReplaceAll(header, "\r", " ")
	return whitespace.ReplaceAllString(strings.TrimSpace(header), " ")
}

// columnIndexes maps each canonical column to its index in the header row,
// or -1 when the export does not carry it.
func columnIndexes(header []string) map[string]int {
	idx := map[string]int{
		ColName: -1, ColNIK: -1, ColUnit: -1, ColGrade: -1,
		ColDate: -1, ColIn: -1, ColOut: -1,
	}
	cleaned := make([]string, len(header))
	for i, h := range header {
		cleaned[i] = normalizeHeader(h)
		key := strings.ToLower(cleaned[i])
		if canonical, ok := aliases[key]; ok && idx[canonical] == -1 {
			idx[canonical] = i
		}
	}
	for _, fb := range substringFallbacks {
		if idx[fb.canonical] != -1 {
			continue
		}
		for i, h := range cleaned {
			if claimed(idx, i) {
				continue
			}
			low := strings.ToLower(h)
			for _, kw := range fb.keywords {
				if strings.Contains(low, kw) {
					idx[fb.canonical] = i
					break
				}
			}
			if idx[fb.canonical] != -1 {
				break
			}
		}
	}
	return idx
}

func claimed(idx map[string]int, i int) bool {
	for _, v := range idx {
		if v == i {
			return true
		}
	}
	return false
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Normalize converts a raw sheet (header row first) into records. Rows whose
// date does not parse are discarded; every other field defaults to empty or
// nil rather than failing.
func Normalize(rows [][]string) []Record {
	if len(rows) < 2 {
		return nil
	}
	idx := columnIndexes(rows[0])

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		date, ok := timeparse.Date(cellValue(row, idx[ColDate]))
		if !ok {
			continue
		}
		rec := Record{
			Name:  cellValue(row, idx[ColName]),
			NIK:   cellValue(row, idx[ColNIK]),
			Unit:  cellValue(row, idx[ColUnit]),
			Grade: cellValue(row, idx[ColGrade]),
			Date:  date,
		}
		if in, ok := timeparse.Clock(cellValue(row, idx[ColIn])); ok {
			rec.ClockIn = &in
		}
		if out, ok := timeparse.Clock(cellValue(row, idx[ColOut])); ok {
			rec.ClockOut = &out
		}
		records = append(records, rec)
	}
	return records
}
