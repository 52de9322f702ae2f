package schema

import (
	"testing"

	"github.com/tomonapit/rekapabsen/internal/timeparse"
)

func TestNormalizeAliasLookup(t *testing.T) {
	rows := [][]string{
		{"Nama Pegawai", "NIP", "Bagian", "Golongan", "Tgl", "Jam Masuk", "Jam Pulang"},
		{"BUDI SANTOSO", "1987", "IGD", "III/a", "14/03/2025", "07:20:00", "16:05:00"},
	}
	records := Normalize(rows)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.Name != "BUDI SANTOSO" || r.NIK != "1987" || r.Unit != "IGD" || r.Grade != "III/a" {
		t.Fatalf("identity fields wrong: %+v", r)
	}
	if r.Date.Day() != 14 {
		t.Fatalf("date should be day-first, got %v", r.Date)
	}
	if r.ClockIn == nil || *r.ClockIn != timeparse.At(7, 20, 0) {
		t.Fatalf("clock-in wrong: %v", r.ClockIn)
	}
	if r.ClockOut == nil || *r.ClockOut != timeparse.At(16, 5, 0) {
		t.Fatalf("clock-out wrong: %v", r.ClockOut)
	}
}

func TestNormalizeSubstringFallback(t *testing.T) {
	rows := [][]string{
		{"Nama", "Tanggal", "Waktu Scan Masuk Pagi", "Waktu Scan Pulang Sore"},
		{"SITI", "01/03/2025", "07:31", "16:40"},
	}
	records := Normalize(rows)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ClockIn == nil || records[0].ClockOut == nil {
		t.Fatalf("substring fallback did not find scan columns: %+v", records[0])
	}
}

func TestNormalizeMissingScanColumnsStayNil(t *testing.T) {
	rows := [][]string{
		{"Nama", "Tanggal"},
		{"ANDI", "02/03/2025"},
	}
	records := Normalize(rows)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ClockIn != nil || records[0].ClockOut != nil {
		t.Fatalf("missing scan columns should be nil")
	}
}

func TestNormalizeDropsUnparseableDates(t *testing.T) {
	rows := [][]string{
		{"Nama", "Tanggal", "Scan Masuk", "Scan Pulang"},
		{"A", "not-a-date", "07:00", "16:00"},
		{"B", "", "07:00", "16:00"},
		{"C", "03/03/2025", "07:00", "16:00"},
	}
	records := Normalize(rows)
	if len(records) != 1 || records[0].Name != "C" {
		t.Fatalf("expected only the dated row to survive, got %+v", records)
	}
}

func TestNormalizeHeaderWhitespace(t *testing.T) {
	rows := [][]string{
		{"  Nama \n", "Tanggal", " Scan   Masuk ", "Scan Pulang"},
		{"DEWI", "04/03/2025", "07:29", "16:00"},
	}
	records := Normalize(rows)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ClockIn == nil {
		t.Fatalf("collapsed header should still match scan masuk")
	}
}

func TestNormalizeEmptyScanCellsAreNil(t *testing.T) {
	rows := [][]string{
		{"Nama", "Tanggal", "Scan Masuk", "Scan Pulang"},
		{"EKO", "05/03/2025", "", "16:00"},
	}
	records := Normalize(rows)
	if records[0].ClockIn != nil {
		t.Fatalf("empty scan cell should stay nil")
	}
	if records[0].ClockOut == nil {
		t.Fatalf("present scan cell should parse")
	}
}
