package matrix

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tomonapit/rekapabsen/internal/status"
)

// totalColumns pairs each count column header with its status code, in the
// order the recap sheet lays them out.
var totalColumns = []struct {
	header string
	code   string
}{
	{"HADIR", status.Present},
	{"SAKIT", status.Sick},
	{"IZIN", status.Permission},
	{"CUTI", status.Leave},
	{"DL", status.DutyTravel},
	{"K8", status.ShortDay},
	{"TL", status.Incomplete},
	{"TL1", status.LateBand1},
	{"TL2", status.LateBand2},
	{"TL3", status.LateBand3},
}

// Header returns the full output column list: identity, day grid, totals.
func Header() []string {
	header := []string{"NO", "Nama", "NIK", "Unit", "GOL"}
	for d := 1; d <= DayColumns; d++ {
		header = append(header, strconv.Itoa(d))
	}
	for _, tc := range totalColumns {
		header = append(header, tc.header)
	}
	return append(header, "ALPA", "JUMLAH HARI")
}

// Values flattens a row in the same order as Header.
func (r Row) Values() []any {
	values := []any{r.No, r.Name, r.NIK, r.Unit, r.Grade}
	for _, cell := range r.Days {
		values = append(values, cell)
	}
	for _, tc := range totalColumns {
		values = append(values, r.Counts[tc.code])
	}
	return append(values, r.Absent, r.DaysWithData)
}

func writeSheet(f *excelize.File, sheet string, rows []Row) error {
	for i, h := range Header() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for rIdx, row := range rows {
		for cIdx, value := range row.Values() {
			cell, err := excelize.CoordinatesToCellName(cIdx+1, rIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteWorkbook writes the full matrix to a single-sheet workbook.
func WriteWorkbook(rows []Row, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "MATRIX"
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return fmt.Errorf("rename matrix sheet: %w", err)
	}
	if err := writeSheet(f, sheet, rows); err != nil {
		return fmt.Errorf("write matrix sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save matrix workbook: %w", err)
	}
	return nil
}

// WritePerEmployeeWorkbook writes one sheet per employee, each holding that
// employee's single matrix row.
func WritePerEmployeeWorkbook(rows []Row, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := f.GetSheetName(f.GetActiveSheetIndex())
	for i, row := range rows {
		sheet := sheetTitle(row.Name, i)
		if i == 0 {
			if err := f.SetSheetName(first, sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("add sheet: %w", err)
			}
		}
		single := row
		single.No = 1
		if err := writeSheet(f, sheet, []Row{single}); err != nil {
			return fmt.Errorf("write sheet %s: %w", sheet, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save per-employee workbook: %w", err)
	}
	return nil
}

// sheetTitle keeps names inside the 31 character sheet limit, free of
// characters Excel rejects, and never empty or colliding.
func sheetTitle(name string, idx int) string {
	title := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '-'
		}
		return r
	}, name)
	if title == "" {
		title = "PEGAWAI"
	}
	if len(title) > 25 {
		title = title[:25]
	}
	return fmt.Sprintf("%s_%d", title, idx+1)
}
