package override

import (
	"fmt"
	"strings"

	"github.com/tomonapit/rekapabsen/internal/timeparse"
)

// Import table column names. Nama, Tanggal and Status Manual are required;
// NIK and Catatan default to empty.
const (
	colName   = "Nama"
	colNIK    = "NIK"
	colDate   = "Tanggal"
	colStatus = "Status Manual"
	colNote   = "Catatan"
)

// FromRows converts an imported override sheet (header row first) into
// records. A sheet missing any required column is rejected wholesale; this
// is the one hard validation gate in the pipeline. Rows whose date does not
// parse are dropped silently, and status values are uppercased and trimmed
// here so the merge stage sees them in canonical form.
func FromRows(rows [][]string) ([]Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("override sheet is empty")
	}

	idx := make(map[string]int)
	for i, h := range rows[0] {
		idx[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, required := range []string{colName, colDate, colStatus} {
		if _, ok := idx[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("override sheet must have columns Nama, Tanggal, Status Manual (missing: %s)", strings.Join(missing, ", "))
	}

	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []Record
	for _, row := range rows[1:] {
		date, ok := timeparse.Date(cell(row, colDate))
		if !ok {
			continue
		}
		records = append(records, Record{
			Name:   cell(row, colName),
			NIK:    cell(row, colNIK),
			Date:   date,
			Status: strings.ToUpper(cell(row, colStatus)),
			Note:   cell(row, colNote),
		})
	}
	return records, nil
}
