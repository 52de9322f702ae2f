// Package matrix pivots resolved attendance records into one row per
// employee with one column per day of month, plus category totals.
package matrix

import (
	"sort"

	"github.com/tomonapit/rekapabsen/internal/schema"
	"github.com/tomonapit/rekapabsen/internal/status"
)

// DayColumns is the fixed width of the day grid; short months simply leave
// the trailing columns blank.
const DayColumns = 31

// Row is one employee's month. Days is indexed by day-of-month minus one and
// holds a status code or the empty string; blank days are never defaulted to
// absent, they only show up in the Absent count.
type Row struct {
	No    int
	Name  string
	NIK   string
	Unit  string
	Grade string
	Days  [DayColumns]string

	Counts       map[string]int
	Absent       int
	DaysWithData int
}

type groupKey struct {
	name, nik, unit, grade string
}

// Build pivots resolved records into matrix rows. When an employee has more
// than one record on the same day, the last one in input order wins, the
// same overwrite rule the override merge uses. Rows are sorted by the
// natural order of (name, NIK, unit, grade) and numbered from 1.
func Build(records []schema.Record) []Row {
	grid := make(map[groupKey]*[DayColumns]string)
	var order []groupKey
	for _, rec := range records {
		key := groupKey{rec.Name, rec.NIK, rec.Unit, rec.Grade}
		days, ok := grid[key]
		if !ok {
			days = &[DayColumns]string{}
			grid[key] = days
			order = append(order, key)
		}
		day := rec.Day()
		if day < 1 || day > DayColumns {
			continue
		}
		days[day-1] = rec.Status
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.name != b.name {
			return a.name < b.name
		}
		if a.nik != b.nik {
			return a.nik < b.nik
		}
		if a.unit != b.unit {
			return a.unit < b.unit
		}
		return a.grade < b.grade
	})

	rows := make([]Row, 0, len(order))
	for i, key := range order {
		row := Row{
			No:    i + 1,
			Name:  key.name,
			NIK:   key.nik,
			Unit:  key.unit,
			Grade: key.grade,
			Days:  *grid[key],
		}
		row.tally()
		rows = append(rows, row)
	}
	return rows
}

func (r *Row) tally() {
	r.Counts = make(map[string]int, len(status.Codes))
	for _, code := range status.Codes {
		r.Counts[code] = 0
	}
	for _, cell := range r.Days {
		if cell == "" {
			r.Absent++
			continue
		}
		r.DaysWithData++
		if _, ok := r.Counts[cell]; ok {
			r.Counts[cell]++
		}
	}
}

// ForEmployee filters records by exact employee name before building, used
// for the per-employee matrix sheet.
func ForEmployee(records []schema.Record, name string) []Row {
	var subset []schema.Record
	for _, rec := range records {
		if rec.Name == name {
			subset = append(subset, rec)
		}
	}
	return Build(subset)
}
