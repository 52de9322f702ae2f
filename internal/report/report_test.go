package report

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tomonapit/rekapabsen/internal/schema"
	"github.com/tomonapit/rekapabsen/internal/status"
	"github.com/tomonapit/rekapabsen/internal/timeparse"
)

func clock(h, m int) *timeparse.TimeOfDay {
	t := timeparse.At(h, m, 0)
	return &t
}

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func sampleRecords() []schema.Record {
	return []schema.Record{
		{Name: "BUDI", NIK: "101", Unit: "IGD", Grade: "II", Date: day(3),
			ClockIn: clock(7, 20), ClockOut: clock(16, 5), Status: status.Present},
		{Name: "BUDI", NIK: "101", Unit: "IGD", Grade: "II", Date: day(4),
			ClockIn: clock(7, 45), ClockOut: clock(16, 0), Status: status.LateBand1, LateMinutes: 15},
		{Name: "SITI", NIK: "102", Unit: "FARMASI", Grade: "III", Date: day(3),
			Status: status.Sick},
	}
}

func TestGenerateWritesAllArtifacts(t *testing.T) {
	outDir := t.TempDir()
	result, err := Generate(context.Background(), sampleRecords(), Options{
		OutDir:  outDir,
		Period:  "Maret 2025",
		Workers: 2,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("unexpected failures: %+v", result.Failures)
	}
	for _, path := range []string{
		result.SummaryPath, result.MatrixPath, result.PerEmployeePath,
		result.ZipPath, result.BundlePath,
	} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing artifact %s: %v", path, err)
		}
	}

	entries, err := os.ReadDir(result.EmployeeDir)
	if err != nil {
		t.Fatalf("read employee dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 employee workbooks, got %d", len(entries))
	}

	// Workers clean their temp directories up behind themselves.
	rootEntries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	for _, e := range rootEntries {
		if e.IsDir() && e.Name() != "PEGAWAI" {
			t.Fatalf("leftover directory %s", e.Name())
		}
	}
}

func TestGenerateZipHoldsEmployeeWorkbooks(t *testing.T) {
	result, err := Generate(context.Background(), sampleRecords(), Options{
		OutDir: t.TempDir(), Period: "Maret 2025", Workers: 1,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	zr, err := zip.OpenReader(result.ZipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()
	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["REKAP_BUDI.xlsx"] || !names["REKAP_SITI.xlsx"] {
		t.Fatalf("zip entries wrong: %v", names)
	}
}

func TestGenerateEmployeeWorkbookContents(t *testing.T) {
	result, err := Generate(context.Background(), sampleRecords(), Options{
		OutDir: t.TempDir(), Period: "Maret 2025", Workers: 1, Note: "uji coba",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	f, err := excelize.OpenFile(filepath.Join(result.EmployeeDir, "REKAP_BUDI.xlsx"))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("RINCIAN")
	if err != nil {
		t.Fatalf("read detail sheet: %v", err)
	}
	// Head block, blank row, header, two scan days.
	if len(rows) < 6 {
		t.Fatalf("detail sheet too short: %d rows", len(rows))
	}
	if rows[0][1] != "BUDI" {
		t.Fatalf("name head wrong: %v", rows[0])
	}
	last := rows[len(rows)-1]
	if last[1] != "04/03/2025" || last[2] != "07:45" || last[6] != status.LateBand1 {
		t.Fatalf("detail row wrong: %v", last)
	}

	matrixRows, err := f.GetRows("MATRIX")
	if err != nil {
		t.Fatalf("read matrix sheet: %v", err)
	}
	if len(matrixRows) != 2 {
		t.Fatalf("matrix sheet should hold one employee row, got %d", len(matrixRows)-1)
	}
}

func TestSummarizeAggregatesPerEmployee(t *testing.T) {
	rows := summarize(sampleRecords())
	if len(rows) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(rows))
	}
	budi := rows[0]
	if budi.Name != "BUDI" || budi.Attended != 2 || budi.Incomplete != 0 || budi.LateMinutes != 15 {
		t.Fatalf("aggregation wrong: %+v", budi)
	}
	siti := rows[1]
	if siti.Attended != 0 || siti.Incomplete != 1 {
		t.Fatalf("missing scans should count as incomplete: %+v", siti)
	}
}

func TestPeriodLabel(t *testing.T) {
	records := []schema.Record{{Date: day(15)}, {Date: day(2)}}
	if got := PeriodLabel(records); got != "March 2025" {
		t.Fatalf("period label = %q", got)
	}
	if got := PeriodLabel(nil); got != "Periode" {
		t.Fatalf("empty fallback = %q", got)
	}
}

func TestSafeName(t *testing.T) {
	cases := map[string]string{
		"Maret 2025":        "Maret_2025",
		"Dr. Siti, S.Kep.":  "Dr._Siti_S.Kep.",
		"":                  "output",
		"a/b\\c":            "abc",
	}
	for in, want := range cases {
		if got := safeName(in); got != want {
			t.Fatalf("safeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOvertimeHoursRounds(t *testing.T) {
	if got := overtimeHours(90); got != 1.5 {
		t.Fatalf("90 minutes = %v hours", got)
	}
	if got := overtimeHours(50); got != 0.83 {
		t.Fatalf("50 minutes = %v hours", got)
	}
}
