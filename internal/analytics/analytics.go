// Package analytics computes run-level summaries over the normalized
// attendance stream: headline KPIs, a daily presence trend, and the status
// distribution after resolution.
package analytics

import (
	"sort"
	"time"

	"github.com/tomonapit/rekapabsen/internal/schema"
	"github.com/tomonapit/rekapabsen/internal/timeparse"
)

// KPI is the headline block shown before a run.
type KPI struct {
	TotalRows int
	Employees int
	Present   int // rows with a clock-in scan
	Late      int // rows clocking in after the threshold
	Absent    int // rows without a clock-in scan
	Overrides int
}

func ComputeKPI(records []schema.Record, overrideCount int, clockInLimit timeparse.TimeOfDay) KPI {
	kpi := KPI{TotalRows: len(records), Overrides: overrideCount}
	names := make(map[string]struct{})
	for _, rec := range records {
		if rec.Name != "" {
			names[rec.Name] = struct{}{}
		}
		if rec.ClockIn == nil {
			kpi.Absent++
			continue
		}
		kpi.Present++
		if *rec.ClockIn > clockInLimit {
			kpi.Late++
		}
	}
	kpi.Employees = len(names)
	return kpi
}

// DayCount is one point of the daily presence trend.
type DayCount struct {
	Date    time.Time
	Present int
}

// DailyTrend counts rows with a clock-in scan per calendar date, sorted by
// date.
func DailyTrend(records []schema.Record) []DayCount {
	byDate := make(map[time.Time]int)
	for _, rec := range records {
		if rec.ClockIn == nil {
			continue
		}
		byDate[rec.Date]++
	}
	trend := make([]DayCount, 0, len(byDate))
	for date, n := range byDate {
		trend = append(trend, DayCount{Date: date, Present: n})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date.Before(trend[j].Date) })
	return trend
}

// StatusCount is one slice of the status distribution.
type StatusCount struct {
	Status string
	Rows   int
}

// StatusDistribution tallies resolved status codes, most frequent first,
// ties broken by code for stable output.
func StatusDistribution(records []schema.Record) []StatusCount {
	byStatus := make(map[string]int)
	for _, rec := range records {
		if rec.Status == "" {
			continue
		}
		byStatus[rec.Status]++
	}
	dist := make([]StatusCount, 0, len(byStatus))
	for code, n := range byStatus {
		dist = append(dist, StatusCount{Status: code, Rows: n})
	}
	sort.Slice(dist, func(i, j int) bool {
		if dist[i].Rows != dist[j].Rows {
			return dist[i].Rows > dist[j].Rows
		}
		return dist[i].Status < dist[j].Status
	})
	return dist
}
