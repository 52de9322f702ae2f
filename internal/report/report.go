// Package report produces the per-period output folder: a recap summary
// workbook, the full and per-employee matrix workbooks, one detail workbook
// per employee (generated in parallel), and the merged archives.
package report

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomonapit/rekapabsen/internal/matrix"
	"github.com/tomonapit/rekapabsen/internal/schema"
)

// Options configures one generation run. Records must already be resolved.
type Options struct {
	OutDir  string
	Period  string
	Note    string
	Workers int
}

// Failure records one employee whose workbook could not be produced. A
// failure never aborts the run; the merge step proceeds with whatever
// succeeded.
type Failure struct {
	Employee string
	Err      error
}

// Result lists the artifacts a run produced.
type Result struct {
	SummaryPath     string
	MatrixPath      string
	PerEmployeePath string
	EmployeeDir     string
	ZipPath         string
	BundlePath      string
	Failures        []Failure
}

const employeeDirName = "PEGAWAI"

// Generate writes every artifact for the period into opts.OutDir.
func Generate(ctx context.Context, records []schema.Record, opts Options) (Result, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Period == "" {
		opts.Period = PeriodLabel(records)
	}

	empDir := filepath.Join(opts.OutDir, employeeDirName)
	if err := os.MkdirAll(empDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output directory: %w", err)
	}

	result := Result{
		EmployeeDir:     empDir,
		SummaryPath:     filepath.Join(opts.OutDir, "SUMMARY_REKAP_"+safeName(opts.Period)+".xlsx"),
		MatrixPath:      filepath.Join(opts.OutDir, "MATRIX_REKAP_"+safeName(opts.Period)+".xlsx"),
		PerEmployeePath: filepath.Join(opts.OutDir, "MATRIX_PER_PEGAWAI_"+safeName(opts.Period)+".xlsx"),
		ZipPath:         filepath.Join(opts.OutDir, "PEGAWAI_"+safeName(opts.Period)+".zip"),
		BundlePath:      filepath.Join(opts.OutDir, "BUNDLE_"+safeName(opts.Period)+".tar.xz"),
	}

	if err := writeSummaryWorkbook(records, result.SummaryPath); err != nil {
		return result, err
	}

	rows := matrix.Build(records)
	if err := matrix.WriteWorkbook(rows, result.MatrixPath); err != nil {
		return result, err
	}
	if err := matrix.WritePerEmployeeWorkbook(rows, result.PerEmployeePath); err != nil {
		return result, err
	}

	result.Failures = generateEmployeeWorkbooks(ctx, records, opts, empDir)

	if err := zipDir(empDir, result.ZipPath); err != nil {
		return result, fmt.Errorf("zip employee workbooks: %w", err)
	}
	if err := bundleTarXz(opts.OutDir, result.BundlePath); err != nil {
		return result, fmt.Errorf("bundle output: %w", err)
	}
	return result, nil
}

// generateEmployeeWorkbooks runs one worker per employee, bounded by
// opts.Workers. Every worker writes into its own uniquely named temp
// directory and only a finished workbook is moved into place, so workers
// never touch each other's output. Failures are collected, not fatal.
func generateEmployeeWorkbooks(ctx context.Context, records []schema.Record, opts Options, empDir string) []Failure {
	byName := make(map[string][]schema.Record)
	for _, rec := range records {
		if rec.Name == "" {
			continue
		}
		byName[rec.Name] = append(byName[rec.Name], rec)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []Failure
		sem      = make(chan struct{}, opts.Workers)
	)
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := generateOne(byName[name], name, opts, empDir); err != nil {
				mu.Lock()
				failures = append(failures, Failure{Employee: name, Err: err})
				mu.Unlock()
			}
		}(name)
	}
	wg.Wait()

	for _, f := range failures {
		log.Printf("report for %s failed: %v", f.Employee, f.Err)
	}
	return failures
}

func generateOne(records []schema.Record, name string, opts Options, empDir string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	tmpDir := filepath.Join(opts.OutDir, "_tmp_"+uuid.NewString())
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return fmt.Errorf("create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	filename := "REKAP_" + safeName(name) + ".xlsx"
	tmpPath := filepath.Join(tmpDir, filename)
	if err := writeEmployeeWorkbook(records, name, opts, tmpPath); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, filepath.Join(empDir, filename)); err != nil {
		return fmt.Errorf("move workbook into place: %w", err)
	}
	return nil
}

// PeriodLabel derives a period label from the earliest record date, for runs
// that do not name one explicitly.
func PeriodLabel(records []schema.Record) string {
	var earliest time.Time
	for _, rec := range records {
		if earliest.IsZero() || rec.Date.Before(earliest) {
			earliest = rec.Date
		}
	}
	if earliest.IsZero() {
		return "Periode"
	}
	return earliest.Format("January 2006")
}

// safeName makes a string usable as a file name fragment.
func safeName(text string) string {
	text = strings.ReplaceAll(strings.TrimSpace(text), " ", "_")
	var b strings.Builder
	for _, r := range text {
		if r == '_' || r == '-' || r == '.' ||
			(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > 80 {
		s = s[:80]
	}
	if s == "" {
		s = "output"
	}
	return s
}
