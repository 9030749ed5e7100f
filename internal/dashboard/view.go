// Package dashboard turns normalized forecast tables into what the dashboard
// shows: the merged daily table, map markers, chart series and exports.
package dashboard

import (
	"sort"

	"cwa-dashboard/internal/models"
)

const (
	KindMax = "MaxT"
	KindMin = "MinT"
)

// MergedRow is a condition row with the temperatures of the same day attached.
type MergedRow struct {
	Location  string              `json:"location" example:"北部地區"`
	Date      models.Date         `json:"date" swaggertype:"string" example:"2024-07-01"`
	Condition string              `json:"condition" example:"晴時多雲"`
	Code      string              `json:"code" example:"2"`
	Icon      models.IconCategory `json:"icon" swaggertype:"string" example:"partly-cloudy"`
	Glyph     string              `json:"glyph" example:"🌤️"`
	MaxT      *float64            `json:"max_t" example:"33"`
	MinT      *float64            `json:"min_t" example:"26"`
}

// Merge left-joins temperatures onto condition rows by (location, date) and
// sorts the result by location, then date. Temperature rows without a
// condition row are not part of the result.
func Merge(tables models.Tables) []MergedRow {
	type key struct {
		location string
		date     string
	}

	temps := make(map[key]models.TemperatureRow, len(tables.Temperatures))
	for _, t := range tables.Temperatures {
		k := key{t.Location, t.Date.String()}
		if _, ok := temps[k]; !ok {
			temps[k] = t
		}
	}

	rows := make([]MergedRow, 0, len(tables.Conditions))
	for _, c := range tables.Conditions {
		row := MergedRow{
			Location:  c.Location,
			Date:      c.Date,
			Condition: c.Condition,
			Code:      c.Code,
			Icon:      c.Icon,
			Glyph:     c.Icon.Glyph(),
		}
		if t, ok := temps[key{c.Location, c.Date.String()}]; ok {
			row.MaxT = t.MaxT
			row.MinT = t.MinT
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Location != rows[j].Location {
			return rows[i].Location < rows[j].Location
		}
		return rows[i].Date.Before(rows[j].Date)
	})
	return rows
}

// Locations returns the distinct location names, sorted.
func Locations(rows []MergedRow) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range rows {
		if _, ok := seen[r.Location]; ok {
			continue
		}
		seen[r.Location] = struct{}{}
		out = append(out, r.Location)
	}
	sort.Strings(out)
	return out
}

// Dates returns the distinct dates, ascending.
func Dates(rows []MergedRow) []models.Date {
	seen := make(map[string]struct{})
	out := []models.Date{}
	for _, r := range rows {
		k := r.Date.String()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r.Date)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func OnDate(rows []MergedRow, d models.Date) []MergedRow {
	out := []MergedRow{}
	for _, r := range rows {
		if r.Date.Equal(d.Time) {
			out = append(out, r)
		}
	}
	return out
}

// SeriesPoint is one point of the temperature line chart.
type SeriesPoint struct {
	Location string      `json:"location" example:"北部地區"`
	Date     models.Date `json:"date" swaggertype:"string" example:"2024-07-01"`
	Kind     string      `json:"kind" example:"MaxT"`
	Value    float64     `json:"value" example:"33"`
}

// Series reshapes the rows of the given locations into long format, max
// temperatures first. Absent temperatures produce no point.
func Series(rows []MergedRow, locations []string) []SeriesPoint {
	wanted := make(map[string]struct{}, len(locations))
	for _, l := range locations {
		wanted[l] = struct{}{}
	}

	out := []SeriesPoint{}
	for _, kind := range []string{KindMax, KindMin} {
		for _, r := range rows {
			if _, ok := wanted[r.Location]; !ok {
				continue
			}
			v := r.MaxT
			if kind == KindMin {
				v = r.MinT
			}
			if v == nil {
				continue
			}
			out = append(out, SeriesPoint{Location: r.Location, Date: r.Date, Kind: kind, Value: *v})
		}
	}
	return out
}

// DefaultCompare picks the first n locations for the chart.
func DefaultCompare(locations []string, n int) []string {
	if n < 0 {
		n = 0
	}
	if n > len(locations) {
		n = len(locations)
	}
	return append([]string{}, locations[:n]...)
}

// Summary holds the KPI values at the top of the dashboard.
type Summary struct {
	Locations int          `json:"locations"`
	FirstDate *models.Date `json:"first_date,omitempty" swaggertype:"string"`
	LastDate  *models.Date `json:"last_date,omitempty" swaggertype:"string"`
	Selected  *models.Date `json:"selected,omitempty" swaggertype:"string"`
}

func Summarize(rows []MergedRow, selected *models.Date) Summary {
	s := Summary{
		Locations: len(Locations(rows)),
		Selected:  selected,
	}
	if dates := Dates(rows); len(dates) > 0 {
		first, last := dates[0], dates[len(dates)-1]
		s.FirstDate = &first
		s.LastDate = &last
	}
	return s
}
