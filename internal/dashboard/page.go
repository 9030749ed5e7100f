package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"cwa-dashboard/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("dashboard.html").Funcs(template.FuncMap{
		"temp": FormatTemp,
		"date": func(d *models.Date) string {
			if d == nil {
				return absentValue
			}
			return d.String()
		},
		"isSelected": func(a models.Date, b *models.Date) bool {
			return b != nil && a.Equal(b.Time)
		},
		"contains": func(list []string, s string) bool {
			for _, v := range list {
				if v == s {
					return true
				}
			}
			return false
		},
	}).ParseFS(templateFS, "templates/dashboard.html"),
)

// Page is everything the dashboard template renders.
type Page struct {
	Title   string
	Dataset string
	// Error switches the page into its error state; nothing else is shown.
	Error string

	SnapshotID string
	FetchedAt  time.Time

	Summary   Summary
	Dates     []models.Date
	Selected  *models.Date
	Locations []string
	Compare   []string

	Today   []MergedRow
	Points  []MapPoint
	Series  []SeriesPoint
	Missing []string
}

type PageOptions struct {
	Title   string
	Dataset string
	// Date picks the map day. Nil means the first available date.
	Date *models.Date
	// Compare lists the chart locations. Unknown names are ignored; when none
	// remain the first CompareDefault locations are used.
	Compare        []string
	CompareDefault int
}

// BuildPage derives every dashboard view from one set of tables.
func BuildPage(tables models.Tables, coords Coordinates, opts PageOptions) Page {
	rows := Merge(tables)
	locations := Locations(rows)
	dates := Dates(rows)

	selected := opts.Date
	if selected == nil && len(dates) > 0 {
		first := dates[0]
		selected = &first
	}

	var today []MergedRow
	if selected != nil {
		today = OnDate(rows, *selected)
	}

	compare := make([]string, 0, len(opts.Compare))
	for _, l := range opts.Compare {
		for _, known := range locations {
			if l == known {
				compare = append(compare, l)
				break
			}
		}
	}
	if len(compare) == 0 {
		compare = DefaultCompare(locations, opts.CompareDefault)
	}

	return Page{
		Title:     opts.Title,
		Dataset:   opts.Dataset,
		Summary:   Summarize(rows, selected),
		Dates:     dates,
		Selected:  selected,
		Locations: locations,
		Compare:   compare,
		Today:     today,
		Points:    MapPoints(today, coords),
		Series:    Series(rows, compare),
		Missing:   coords.Missing(locations),
	}
}

// ErrorPage renders only the failure message.
func ErrorPage(title string, err error) Page {
	return Page{
		Title: title,
		Error: fmt.Sprintf("抓取/解析失敗：%v", err),
	}
}

func Render(w io.Writer, p Page) error {
	return pageTemplate.Execute(w, p)
}
