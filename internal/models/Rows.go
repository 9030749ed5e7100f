package models

// IconCategory is the coarse class derived from a condition code.
type IconCategory string

const (
	IconClear        IconCategory = "clear"
	IconPartlyCloudy IconCategory = "partly-cloudy"
	IconOvercast     IconCategory = "overcast"
	IconLightRain    IconCategory = "light-rain"
	IconRain         IconCategory = "rain"
	IconThunderstorm IconCategory = "thunderstorm"
	IconFog          IconCategory = "fog"
	IconUnknown      IconCategory = "unknown"
)

// Glyph is the emoji the dashboard shows for the category.
func (c IconCategory) Glyph() string {
	switch c {
	case IconClear:
		return "☀️"
	case IconPartlyCloudy:
		return "🌤️"
	case IconOvercast:
		return "☁️"
	case IconLightRain:
		return "🌦️"
	case IconRain:
		return "🌧️"
	case IconThunderstorm:
		return "⛈️"
	case IconFog:
		return "🌫️"
	default:
		return "❓"
	}
}

type ConditionRow struct {
	Location  string       `json:"location" example:"北部地區"`
	Date      Date         `json:"date" swaggertype:"string" example:"2024-07-01"`
	Condition string       `json:"condition" example:"多雲午後短暫雷陣雨"`
	Code      string       `json:"code" example:"22"`
	Icon      IconCategory `json:"icon" swaggertype:"string" example:"thunderstorm"`
}

// TemperatureRow holds nil for a temperature the source did not provide.
type TemperatureRow struct {
	Location string   `json:"location" example:"北部地區"`
	Date     Date     `json:"date" swaggertype:"string" example:"2024-07-01"`
	MaxT     *float64 `json:"max_t" example:"33"`
	MinT     *float64 `json:"min_t" example:"26"`
}

// NormalizeStats counts what normalization silently dropped.
type NormalizeStats struct {
	Locations          int `json:"locations"`
	SkippedLocations   int `json:"skipped_locations"`
	MalformedElements  int `json:"malformed_elements"`
	InvalidDates       int `json:"invalid_dates"`
	DuplicateRows      int `json:"duplicate_rows"`
	DroppedTemperature int `json:"dropped_temperature"`
}

type Tables struct {
	Conditions   []ConditionRow   `json:"conditions"`
	Temperatures []TemperatureRow `json:"temperatures"`
	Stats        NormalizeStats   `json:"stats"`
}
