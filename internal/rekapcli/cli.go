// Package rekapcli wires the attendance pipeline behind the rekapabsen
// command: ingest, override merge, status resolution, and report output.
package rekapcli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/tomonapit/rekapabsen/internal/analytics"
	"github.com/tomonapit/rekapabsen/internal/config"
	"github.com/tomonapit/rekapabsen/internal/ingest"
	"github.com/tomonapit/rekapabsen/internal/matrix"
	"github.com/tomonapit/rekapabsen/internal/override"
	"github.com/tomonapit/rekapabsen/internal/report"
	"github.com/tomonapit/rekapabsen/internal/schema"
	"github.com/tomonapit/rekapabsen/internal/status"
	"github.com/tomonapit/rekapabsen/internal/timeparse"
)

var ErrUsage = errors.New("usage")

const defaultConfigPath = "rekapabsen.toml"

func Execute(args []string) error {
	if len(args) < 1 {
		return usageError()
	}

	switch args[0] {
	case "generate":
		return runGenerate(args[1:])
	case "matrix":
		return runMatrix(args[1:])
	case "kpi":
		return runKPI(args[1:])
	case "override":
		return runOverride(args[1:])
	default:
		return usageError()
	}
}

func usageError() error {
	return fmt.Errorf("%w: rekapabsen <generate|matrix|kpi|override> [...]", ErrUsage)
}

// PrintUsage writes the command synopsis.
func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: rekapabsen generate [--period \"Maret 2025\"] [--note text] [--out dir] <attendance.xlsx ...>")
	fmt.Fprintln(w, "       rekapabsen matrix [--employee name] [--out matrix.xlsx] <attendance.xlsx ...>")
	fmt.Fprintln(w, "       rekapabsen kpi <attendance.xlsx ...>")
	fmt.Fprintln(w, "       rekapabsen override add --name <name> --date <yyyy-mm-dd> --status <S|I|C|DL> [--nik id] [--note text]")
	fmt.Fprintln(w, "       rekapabsen override list|reset")
	fmt.Fprintln(w, "       rekapabsen override remove --id <id>")
	fmt.Fprintln(w, "       rekapabsen override import --file <overrides.xlsx>")
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	cfgPath := fs.String("config", defaultConfigPath, "path to settings file")
	period := fs.String("period", "", "period label, derived from the data when empty")
	note := fs.String("note", "", "note stamped into each employee workbook")
	out := fs.String("out", "", "output directory, defaults under output_root")
	workers := fs.Int("workers", 0, "parallel report workers, 0 uses the configured value")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("at least one attendance file is required")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	records, overrideCount, err := loadResolved(ctx, fs.Args(), cfg)
	if err != nil {
		return err
	}

	label := *period
	if label == "" {
		label = report.PeriodLabel(records)
	}
	outDir := *out
	if outDir == "" {
		outDir = filepath.Join(cfg.OutputRoot, time.Now().Format("20060102_150405"))
	}

	th := status.ParseThresholds(cfg.ClockInLimit, cfg.ClockOutLimit)
	kpi := analytics.ComputeKPI(records, overrideCount, th.In)
	fmt.Printf("period %s: %d rows, %d employees, %d present, %d late, %d absent, %d overrides\n",
		label, kpi.TotalRows, kpi.Employees, kpi.Present, kpi.Late, kpi.Absent, kpi.Overrides)

	result, err := report.Generate(ctx, records, report.Options{
		OutDir:  outDir,
		Period:  label,
		Note:    *note,
		Workers: cfg.Workers,
	})
	if err != nil {
		return err
	}
	for _, f := range result.Failures {
		fmt.Fprintf(os.Stderr, "report for %s failed: %v\n", f.Employee, f.Err)
	}
	fmt.Printf("wrote %s (%d employee reports, %d failed)\n",
		outDir, kpi.Employees-len(result.Failures), len(result.Failures))
	return nil
}

func runMatrix(args []string) error {
	fs := flag.NewFlagSet("matrix", flag.ContinueOnError)
	cfgPath := fs.String("config", defaultConfigPath, "path to settings file")
	employee := fs.String("employee", "", "restrict the matrix to one employee")
	out := fs.String("out", "matrix.xlsx", "output workbook path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("at least one attendance file is required")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	records, _, err := loadResolved(ctx, fs.Args(), cfg)
	if err != nil {
		return err
	}

	var rows []matrix.Row
	if *employee != "" {
		rows = matrix.ForEmployee(records, *employee)
		if len(rows) == 0 {
			return fmt.Errorf("no records for employee %q", *employee)
		}
	} else {
		rows = matrix.Build(records)
	}
	if err := matrix.WriteWorkbook(rows, *out); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d rows)\n", *out, len(rows))
	return nil
}

func runKPI(args []string) error {
	fs := flag.NewFlagSet("kpi", flag.ContinueOnError)
	cfgPath := fs.String("config", defaultConfigPath, "path to settings file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("at least one attendance file is required")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	records, overrideCount, err := loadResolved(ctx, fs.Args(), cfg)
	if err != nil {
		return err
	}

	th := status.ParseThresholds(cfg.ClockInLimit, cfg.ClockOutLimit)
	kpi := analytics.ComputeKPI(records, overrideCount, th.In)
	fmt.Printf("rows      %d\n", kpi.TotalRows)
	fmt.Printf("employees %d\n", kpi.Employees)
	fmt.Printf("present   %d\n", kpi.Present)
	fmt.Printf("late      %d\n", kpi.Late)
	fmt.Printf("absent    %d\n", kpi.Absent)
	fmt.Printf("overrides %d\n", kpi.Overrides)

	fmt.Println("\nstatus distribution:")
	for _, sc := range analytics.StatusDistribution(records) {
		fmt.Printf("  %-4s %d\n", sc.Status, sc.Rows)
	}

	fmt.Println("\ndaily presence:")
	for _, dc := range analytics.DailyTrend(records) {
		fmt.Printf("  %s %d\n", dc.Date.Format("2006-01-02"), dc.Present)
	}
	return nil
}

func runOverride(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: rekapabsen override <add|list|remove|reset|import> [...]", ErrUsage)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch args[0] {
	case "add":
		return overrideAdd(ctx, args[1:])
	case "list":
		return overrideList(ctx, args[1:])
	case "remove":
		return overrideRemove(ctx, args[1:])
	case "reset":
		return overrideReset(ctx, args[1:])
	case "import":
		return overrideImport(ctx, args[1:])
	default:
		return fmt.Errorf("unknown override action %q", args[0])
	}
}

func overrideAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("override add", flag.ContinueOnError)
	cfgPath := fs.String("config", defaultConfigPath, "path to settings file")
	name := fs.String("name", "", "employee name")
	nik := fs.String("nik", "", "employee id, optional")
	dateStr := fs.String("date", "", "date, yyyy-mm-dd or dd/mm/yyyy")
	statusCode := fs.String("status", "", "manual status: S, I, C or DL")
	note := fs.String("note", "", "free-form note")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *dateStr == "" || *statusCode == "" {
		return errors.New("--name, --date and --status are required")
	}

	code := strings.ToUpper(strings.TrimSpace(*statusCode))
	if _, ok := status.ManualAllowed[code]; !ok {
		return fmt.Errorf("status %q is not one of S, I, C, DL", *statusCode)
	}
	date, ok := timeparse.Date(*dateStr)
	if !ok {
		return fmt.Errorf("cannot parse date %q", *dateStr)
	}

	store, cfg, err := openStore(*cfgPath)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Add(ctx, override.Record{
		Name:   strings.TrimSpace(*name),
		NIK:    strings.TrimSpace(*nik),
		Date:   date,
		Status: code,
		Note:   *note,
	})
	if err != nil {
		return err
	}
	fmt.Printf("added override %d to %s\n", id, cfg.DBPath)
	return nil
}

func overrideList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("override list", flag.ContinueOnError)
	cfgPath := fs.String("config", defaultConfigPath, "path to settings file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, _, err := openStore(*cfgPath)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no overrides")
		return nil
	}
	for _, rec := range recs {
		fmt.Printf("%d\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID, rec.Name, rec.NIK, rec.DateKey(), rec.Status, rec.Note)
	}
	return nil
}

func overrideRemove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("override remove", flag.ContinueOnError)
	cfgPath := fs.String("config", defaultConfigPath, "path to settings file")
	id := fs.Int64("id", 0, "override id to remove")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("--id is required")
	}

	store, _, err := openStore(*cfgPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Remove(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("removed override %d\n", *id)
	return nil
}

func overrideReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("override reset", flag.ContinueOnError)
	cfgPath := fs.String("config", defaultConfigPath, "path to settings file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, _, err := openStore(*cfgPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Reset(ctx); err != nil {
		return err
	}
	fmt.Println("cleared all overrides")
	return nil
}

func overrideImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("override import", flag.ContinueOnError)
	cfgPath := fs.String("config", defaultConfigPath, "path to settings file")
	file := fs.String("file", "", "override workbook (.xlsx or .xls)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("--file is required")
	}

	rows, err := ingest.ReadFile(*file)
	if err != nil {
		return err
	}
	recs, err := override.FromRows(rows)
	if err != nil {
		return err
	}

	store, _, err := openStore(*cfgPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.AddAll(ctx, recs); err != nil {
		return err
	}
	fmt.Printf("imported %d overrides\n", len(recs))
	return nil
}

func openStore(cfgPath string) (*override.Store, config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, config.Config{}, err
	}
	if err := ensureParentDir(cfg.DBPath); err != nil {
		return nil, config.Config{}, err
	}
	store, err := override.OpenStore(cfg.DBPath)
	if err != nil {
		return nil, config.Config{}, err
	}
	return store, cfg, nil
}

// loadResolved runs the full pipeline up to status resolution: ingest every
// input file, normalize each on its own header row, concatenate, merge stored
// overrides, then resolve.
func loadResolved(ctx context.Context, files []string, cfg config.Config) ([]schema.Record, int, error) {
	var records []schema.Record
	for _, file := range files {
		rows, err := ingest.ReadFile(file)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, schema.Normalize(rows)...)
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("no usable rows in %s", strings.Join(files, ", "))
	}

	var overrides []override.Record
	if _, err := os.Stat(cfg.DBPath); err == nil {
		store, err := override.OpenStore(cfg.DBPath)
		if err != nil {
			return nil, 0, err
		}
		defer store.Close()
		overrides, err = store.List(ctx)
		if err != nil {
			return nil, 0, err
		}
	}
	records = override.Apply(records, overrides)

	th := status.ParseThresholds(cfg.ClockInLimit, cfg.ClockOutLimit)
	return status.ResolveAll(records, th), len(overrides), nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
