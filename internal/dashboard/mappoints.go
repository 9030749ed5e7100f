package dashboard

import (
	"fmt"
	"html/template"
	"strconv"

	"cwa-dashboard/internal/models"
)

const absentValue = "—"

// MapPoint is one marker on the map of the selected day.
type MapPoint struct {
	Location    string              `json:"location" example:"北部地區"`
	Date        models.Date         `json:"date" swaggertype:"string" example:"2024-07-01"`
	Lat         float64             `json:"lat" example:"25.05"`
	Lon         float64             `json:"lon" example:"121.53"`
	Icon        models.IconCategory `json:"icon" swaggertype:"string" example:"clear"`
	Glyph       string              `json:"glyph" example:"☀️"`
	Tooltip     string              `json:"tooltip"`
	TooltipHTML string              `json:"tooltip_html"`
}

// MapPoints places rows on the map. Rows whose location has no coordinates
// are skipped.
func MapPoints(rows []MergedRow, coords Coordinates) []MapPoint {
	out := []MapPoint{}
	for _, r := range rows {
		c, ok := coords.Lookup(r.Location)
		if !ok {
			continue
		}
		out = append(out, MapPoint{
			Location:    r.Location,
			Date:        r.Date,
			Lat:         c.Lat,
			Lon:         c.Lon,
			Icon:        r.Icon,
			Glyph:       r.Glyph,
			Tooltip:     TooltipText(r),
			TooltipHTML: TooltipHTML(r),
		})
	}
	return out
}

func TooltipText(r MergedRow) string {
	return fmt.Sprintf("%s %s (%s)\n天氣：%s\nMaxT：%s°C  MinT：%s°C",
		r.Glyph, r.Location, r.Date, r.Condition, FormatTemp(r.MaxT), FormatTemp(r.MinT))
}

// TooltipHTML is TooltipText as markup. Every field is escaped.
func TooltipHTML(r MergedRow) string {
	esc := template.HTMLEscapeString
	return fmt.Sprintf(
		`<div class="tip-title">%s %s (%s)</div><div>天氣：%s</div><div>MaxT：%s°C　MinT：%s°C</div>`,
		esc(r.Glyph), esc(r.Location), esc(r.Date.String()), esc(r.Condition),
		esc(FormatTemp(r.MaxT)), esc(FormatTemp(r.MinT)),
	)
}

// FormatTemp renders a temperature, or a dash when it is absent.
func FormatTemp(v *float64) string {
	if v == nil {
		return absentValue
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
