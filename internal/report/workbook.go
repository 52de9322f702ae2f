package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/tomonapit/rekapabsen/internal/matrix"
	"github.com/tomonapit/rekapabsen/internal/schema"
	"github.com/tomonapit/rekapabsen/internal/timeparse"
)

// summaryRow aggregates one employee for the recap summary sheet.
type summaryRow struct {
	Name            string
	NIK             string
	Unit            string
	Grade           string
	Attended        int
	Incomplete      int
	LateMinutes     int
	OvertimeMinutes int
}

func summarize(records []schema.Record) []summaryRow {
	type key struct{ name, nik, unit, grade string }
	byEmployee := make(map[key]*summaryRow)
	order := make([]key, 0)
	for _, rec := range records {
		k := key{rec.Name, rec.NIK, rec.Unit, rec.Grade}
		row, ok := byEmployee[k]
		if !ok {
			row = &summaryRow{Name: rec.Name, NIK: rec.NIK, Unit: rec.Unit, Grade: rec.Grade}
			byEmployee[k] = row
			order = append(order, k)
		}
		if rec.ClockIn != nil {
			row.Attended++
		}
		if rec.ClockIn == nil || rec.ClockOut == nil {
			row.Incomplete++
		}
		row.LateMinutes += rec.LateMinutes
		row.OvertimeMinutes += rec.OvertimeMinutes
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
	rows := make([]summaryRow, 0, len(order))
	for _, k := range order {
		rows = append(rows, *byEmployee[k])
	}
	return rows
}

func overtimeHours(minutes int) float64 {
	return math.Round(float64(minutes)/60*100) / 100
}

func writeSummaryWorkbook(records []schema.Record, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "SUMMARY"
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}

	header := []string{"NO", "Nama", "NIK", "Unit", "GOL", "Hari Hadir", "Scan Tidak Lengkap", "Telat (menit)", "Lembur (jam)"}
	if err := setRow(f, sheet, 1, toAny(header)); err != nil {
		return err
	}
	for i, row := range summarize(records) {
		values := []any{
			i + 1, row.Name, row.NIK, row.Unit, row.Grade,
			row.Attended, row.Incomplete, row.LateMinutes, overtimeHours(row.OvertimeMinutes),
		}
		if err := setRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save summary workbook: %w", err)
	}
	return nil
}

// writeEmployeeWorkbook writes one employee's detail workbook: a RINCIAN
// sheet listing every scan day and a MATRIX sheet holding that employee's
// recap row.
func writeEmployeeWorkbook(records []schema.Record, name string, opts Options, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const detailSheet = "RINCIAN"
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), detailSheet); err != nil {
		return fmt.Errorf("rename detail sheet: %w", err)
	}

	head := [][]any{
		{"Nama", name},
		{"Periode", opts.Period},
	}
	if opts.Note != "" {
		head = append(head, []any{"Catatan", opts.Note})
	}
	for i, row := range head {
		if err := setRow(f, detailSheet, i+1, row); err != nil {
			return err
		}
	}

	tableStart := len(head) + 2
	header := []string{"No", "Tanggal", "Masuk", "Pulang", "Telat (menit)", "Lembur (jam)", "Status"}
	if err := setRow(f, detailSheet, tableStart, toAny(header)); err != nil {
		return err
	}

	sorted := make([]schema.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	for i, rec := range sorted {
		values := []any{
			i + 1,
			rec.Date.Format("02/01/2006"),
			clockCell(rec.ClockIn),
			clockCell(rec.ClockOut),
			rec.LateMinutes,
			overtimeHours(rec.OvertimeMinutes),
			rec.Status,
		}
		if err := setRow(f, detailSheet, tableStart+1+i, values); err != nil {
			return err
		}
	}

	const matrixSheet = "MATRIX"
	if _, err := f.NewSheet(matrixSheet); err != nil {
		return fmt.Errorf("add matrix sheet: %w", err)
	}
	if err := setRow(f, matrixSheet, 1, toAny(matrix.Header())); err != nil {
		return err
	}
	for i, row := range matrix.ForEmployee(records, name) {
		if err := setRow(f, matrixSheet, i+2, row.Values()); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook for %s: %w", name, err)
	}
	return nil
}

func clockCell(t *timeparse.TimeOfDay) string {
	if t == nil {
		return "-"
	}
	return t.HHMM()
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}
