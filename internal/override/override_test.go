package override

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomonapit/rekapabsen/internal/schema"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCleanName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  budi  santoso ", "BUDI SANTOSO"},
		{"Dr. Siti, S.Kep.", "DR SITI SKEP"},
		{"ANDI", "ANDI"},
		{"", ""},
	}
	for _, c := range cases {
		if got := CleanName(c.in); got != c.want {
			t.Fatalf("CleanName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestApplyMatchesByNIKThenName(t *testing.T) {
	records := []schema.Record{
		{Name: "BUDI SANTOSO", NIK: "100", Date: date(2025, 3, 14)},
		{Name: "Siti Aminah", NIK: "", Date: date(2025, 3, 14)},
		{Name: "ANDI", NIK: "300", Date: date(2025, 3, 15)},
	}
	overrides := []Record{
		{Name: "ignored", NIK: "100", Date: date(2025, 3, 14), Status: "S"},
		{Name: "SITI AMINAH", Date: date(2025, 3, 14), Status: "DL"},
	}
	got := Apply(records, overrides)
	if got[0].Manual != "S" {
		t.Fatalf("NIK match failed: %+v", got[0])
	}
	if got[1].Manual != "DL" {
		t.Fatalf("name match failed: %+v", got[1])
	}
	if got[2].Manual != "" {
		t.Fatalf("unmatched record should stay empty: %+v", got[2])
	}
}

func TestApplyNIKRowBeatsLaterNameRow(t *testing.T) {
	records := []schema.Record{
		{Name: "BUDI", NIK: "100", Date: date(2025, 3, 14)},
	}
	overrides := []Record{
		{NIK: "100", Date: date(2025, 3, 14), Status: "S"},
		{Name: "BUDI", Date: date(2025, 3, 14), Status: "C"},
	}
	got := Apply(records, overrides)
	if got[0].Manual != "S" {
		t.Fatalf("id-keyed override should win over later name-keyed row, got %q", got[0].Manual)
	}
}

func TestApplyLastRowWinsOnCollision(t *testing.T) {
	records := []schema.Record{
		{Name: "BUDI", NIK: "100", Date: date(2025, 3, 14)},
	}
	overrides := []Record{
		{NIK: "100", Date: date(2025, 3, 14), Status: "S"},
		{NIK: "100", Date: date(2025, 3, 14), Status: "I"},
	}
	got := Apply(records, overrides)
	if got[0].Manual != "I" {
		t.Fatalf("later row should overwrite, got %q", got[0].Manual)
	}
}

func TestApplyExcludesInvalidRows(t *testing.T) {
	records := []schema.Record{
		{Name: "BUDI", NIK: "100", Date: date(2025, 3, 14)},
	}
	overrides := []Record{
		{NIK: "100", Date: date(2025, 3, 14), Status: "HADIR"}, // not in allowed set
		{NIK: "100", Status: "S"},                              // zero date
	}
	got := Apply(records, overrides)
	if got[0].Manual != "" {
		t.Fatalf("invalid override rows must not match, got %q", got[0].Manual)
	}
}

func TestApplyStatusCaseInsensitive(t *testing.T) {
	records := []schema.Record{
		{Name: "BUDI", NIK: "100", Date: date(2025, 3, 14)},
	}
	overrides := []Record{
		{NIK: "100", Date: date(2025, 3, 14), Status: " dl "},
	}
	got := Apply(records, overrides)
	if got[0].Manual != "DL" {
		t.Fatalf("status should be uppercased and trimmed, got %q", got[0].Manual)
	}
}

func TestFromRowsSchemaGate(t *testing.T) {
	_, err := FromRows([][]string{{"Nama", "Tanggal"}})
	if err == nil {
		t.Fatalf("missing Status Manual column should reject the import")
	}

	records, err := FromRows([][]string{
		{"Nama", "Tanggal", "Status Manual"},
		{"BUDI", "14/03/2025", "s"},
		{"SITI", "bad-date", "I"},
	})
	if err != nil {
		t.Fatalf("valid sheet rejected: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("unparseable dates should be dropped, got %d rows", len(records))
	}
	if records[0].Status != "S" || records[0].NIK != "" || records[0].Note != "" {
		t.Fatalf("row not normalized: %+v", records[0])
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(filepath.Join(t.TempDir(), "overrides.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	id, err := store.Add(ctx, Record{Name: "BUDI", NIK: "100", Date: date(2025, 3, 14), Status: "S", Note: "surat dokter"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.AddAll(ctx, []Record{
		{Name: "SITI", Date: date(2025, 3, 15), Status: "C"},
		{Name: "ANDI", Date: date(2025, 3, 16), Status: "DL"},
	}); err != nil {
		t.Fatalf("add all: %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 overrides, got %d", len(list))
	}
	if list[0].ID != id || list[0].Note != "surat dokter" || !list[0].Date.Equal(date(2025, 3, 14)) {
		t.Fatalf("first row wrong: %+v", list[0])
	}

	if err := store.Remove(ctx, id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Remove(ctx, id); err == nil {
		t.Fatalf("removing a missing row should fail")
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	list, err = store.List(ctx)
	if err != nil {
		t.Fatalf("list after reset: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("reset should clear the table, got %d rows", len(list))
	}
}
