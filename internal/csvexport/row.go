// Package csvexport derives the analysis CSV from activities and reconciles it
// with a previously written table by activity id.
package csvexport

import (
	"example.com/activityarchive/internal/config"
	"example.com/activityarchive/internal/domain"
	"example.com/activityarchive/internal/units"
)

// Header is the fixed, stable column set of the derived table.
var Header = []string{
	"id",
	"date_local",
	"start_time_local",
	"type",
	"distance_mi",
	"moving_time_min",
	"elapsed_time_min",
	"total_elev_gain_ft",
	"avg_speed_mph",
	"pace_mmss",
	"pace_min_per_mi",
	"name",
}

// Row is one derived table line. Every field is already display-formatted;
// numeric columns that were not recorded are empty rather than zero.
type Row struct {
	ID              string
	DateLocal       string
	StartTimeLocal  string
	Type            string
	DistanceMi      string
	MovingTimeMin   string
	ElapsedTimeMin  string
	TotalElevGainFt string
	AvgSpeedMPH     string
	PaceMMSS        string
	PaceMinPerMi    string
	Name            string
}

// Values returns the row in Header order.
func (r Row) Values() []string {
	return []string{
		r.ID,
		r.DateLocal,
		r.StartTimeLocal,
		r.Type,
		r.DistanceMi,
		r.MovingTimeMin,
		r.ElapsedTimeMin,
		r.TotalElevGainFt,
		r.AvgSpeedMPH,
		r.PaceMMSS,
		r.PaceMinPerMi,
		r.Name,
	}
}

// rowFromColumns maps a record by column name; columns missing from an older,
// narrower table come back empty.
func rowFromColumns(get func(string) string) Row {
	return Row{
		ID:              get("id"),
		DateLocal:       get("date_local"),
		StartTimeLocal:  get("start_time_local"),
		Type:            get("type"),
		DistanceMi:      get("distance_mi"),
		MovingTimeMin:   get("moving_time_min"),
		ElapsedTimeMin:  get("elapsed_time_min"),
		TotalElevGainFt: get("total_elev_gain_ft"),
		AvgSpeedMPH:     get("avg_speed_mph"),
		PaceMMSS:        get("pace_mmss"),
		PaceMinPerMi:    get("pace_min_per_mi"),
		Name:            get("name"),
	}
}

// RowFromActivity flattens a to a display-rounded row. Pace columns are only
// filled for run-like activities with positive distance and moving time.
func RowFromActivity(a domain.Activity, p config.Precision) Row {
	row := Row{
		ID:   a.ID,
		Type: a.Kind.String(),
		Name: a.Name,
	}
	if start := a.Start(); !start.IsZero() {
		row.DateLocal = start.Format("2006-01-02")
		row.StartTimeLocal = start.Format("15:04:05")
	}

	distanceMi := units.MetersToMiles(a.DistanceMeters)
	movingMin := float64(a.MovingSeconds) / 60
	elapsedMin := float64(a.ElapsedSeconds) / 60

	row.DistanceMi = units.RoundPositive(distanceMi, p.DistanceMi)
	row.MovingTimeMin = units.RoundPositive(movingMin, p.Minutes)
	row.ElapsedTimeMin = units.RoundPositive(elapsedMin, p.Minutes)
	row.TotalElevGainFt = units.RoundPositive(units.MetersToFeet(a.ElevationGainMeters), p.ElevFt)
	row.AvgSpeedMPH = units.RoundPositive(units.MPSToMilesPerHour(a.AverageSpeedMPS), p.SpeedMPH)

	if a.IsRun() {
		if pace, ok := units.PaceSecondsPerUnit(distanceMi, float64(a.MovingSeconds)); ok {
			row.PaceMMSS = units.FormatMMSS(pace)
			row.PaceMinPerMi = units.Round(pace/60, p.Pace)
		}
	}
	return row
}
