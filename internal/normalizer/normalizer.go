// Package normalizer flattens the CWA agricultural forecast document into a
// weather-condition table and a temperature table keyed by (location, date).
//
// Normalization is a pure function of its input. Per-record anomalies (bad
// dates, non-numeric values, unknown codes) are absorbed and only counted in
// the returned stats; only a document without the fixed nesting fails.
package normalizer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"cwa-dashboard/internal/models"
)

// JoinPolicy decides which dates get a temperature row.
type JoinPolicy string

const (
	// JoinConditionDates emits temperature rows only for dates present in the
	// condition channel. Temperature-only dates are dropped.
	JoinConditionDates JoinPolicy = "condition-dates"
	// JoinUnion emits temperature rows for the union of all channels' dates.
	JoinUnion JoinPolicy = "union"
)

func ParseJoinPolicy(s string) (JoinPolicy, error) {
	switch p := JoinPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return JoinConditionDates, nil
	case JoinConditionDates, JoinUnion:
		return p, nil
	}
	return "", fmt.Errorf("unknown join policy %q", s)
}

const (
	defaultDateField      = "dataDate"
	defaultConditionField = "weather"
	defaultCodeField      = "weatherid"
)

type Options struct {
	Join JoinPolicy

	ConditionChannel string
	MaxChannel       string
	MinChannel       string

	DateField      string
	ConditionField string
	CodeField      string

	// Candidates lists the expected value field names per channel, most
	// likely first. PickNumeric falls back to the first numeric field.
	Candidates map[string][]string
}

func DefaultOptions() Options {
	return Options{
		Join:             JoinConditionDates,
		ConditionChannel: "Wx",
		MaxChannel:       "MaxT",
		MinChannel:       "MinT",
		DateField:        defaultDateField,
		ConditionField:   defaultConditionField,
		CodeField:        defaultCodeField,
		Candidates: map[string][]string{
			"MaxT": {"temperature", "maxT", "MaxT", "value"},
			"MinT": {"temperature", "minT", "MinT", "value"},
		},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Join == "" {
		o.Join = d.Join
	}
	if o.ConditionChannel == "" {
		o.ConditionChannel = d.ConditionChannel
	}
	if o.MaxChannel == "" {
		o.MaxChannel = d.MaxChannel
	}
	if o.MinChannel == "" {
		o.MinChannel = d.MinChannel
	}
	if o.DateField == "" {
		o.DateField = d.DateField
	}
	if o.ConditionField == "" {
		o.ConditionField = d.ConditionField
	}
	if o.CodeField == "" {
		o.CodeField = d.CodeField
	}
	if o.Candidates == nil {
		o.Candidates = d.Candidates
	}
	return o
}

// NormalizeJSON parses the document and normalizes it. The only error is a
// payload-shape failure.
func NormalizeJSON(body []byte, opts Options) (models.Tables, error) {
	payload, err := models.ParsePayload(body)
	if err != nil {
		return models.Tables{}, err
	}
	return Normalize(payload, opts), nil
}

type rowKey struct {
	location string
	date     string
}

func keyOf(location string, d models.Date) rowKey {
	return rowKey{location: location, date: d.String()}
}

// Normalize builds both tables. Rows are unique per (location, date); the first
// occurrence in payload order wins.
func Normalize(payload *models.RawForecastPayload, opts Options) models.Tables {
	opts = opts.withDefaults()

	tables := models.Tables{
		Conditions:   []models.ConditionRow{},
		Temperatures: []models.TemperatureRow{},
	}
	if payload == nil {
		return tables
	}

	n := &run{
		opts:     opts,
		stats:    &tables.Stats,
		seenCond: make(map[rowKey]struct{}),
		seenTemp: make(map[rowKey]struct{}),
	}

	for _, loc := range payload.Locations {
		tables.Stats.Locations++
		if loc.Name == "" {
			tables.Stats.SkippedLocations++
			continue
		}

		elements := n.elements(loc.WeatherElements)

		conditions, conditionDates := n.conditionRows(loc.Name, n.daily(elements, opts.ConditionChannel))
		tables.Conditions = append(tables.Conditions, conditions...)

		maxByDate := n.lookup(n.daily(elements, opts.MaxChannel), opts.Candidates[opts.MaxChannel])
		minByDate := n.lookup(n.daily(elements, opts.MinChannel), opts.Candidates[opts.MinChannel])

		tables.Temperatures = append(tables.Temperatures,
			n.temperatureRows(loc.Name, conditionDates, maxByDate, minByDate)...)
	}

	return tables
}

type run struct {
	opts     Options
	stats    *models.NormalizeStats
	seenCond map[rowKey]struct{}
	seenTemp map[rowKey]struct{}
}

func (n *run) elements(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var elements map[string]json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		n.stats.MalformedElements++
		return nil
	}
	return elements
}

// daily decodes <channel>.daily. A missing or malformed channel is empty, and
// entries that are not objects are skipped.
func (n *run) daily(elements map[string]json.RawMessage, channel string) []models.DailyEntry {
	raw, ok := elements[channel]
	if !ok {
		return nil
	}

	var block struct {
		Daily []json.RawMessage `json:"daily"`
	}
	if err := json.Unmarshal(raw, &block); err != nil {
		n.stats.MalformedElements++
		return nil
	}

	entries := make([]models.DailyEntry, 0, len(block.Daily))
	for _, item := range block.Daily {
		var entry models.DailyEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			n.stats.MalformedElements++
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func (n *run) date(entry models.DailyEntry) (models.Date, bool) {
	s, _ := entry.String(n.opts.DateField)
	d, ok := parseDay(s)
	if !ok {
		n.stats.InvalidDates++
	}
	return d, ok
}

// conditionRows also returns every valid condition date, duplicates included;
// those dates drive the temperature join.
func (n *run) conditionRows(location string, entries []models.DailyEntry) ([]models.ConditionRow, []models.Date) {
	rows := make([]models.ConditionRow, 0, len(entries))
	dates := make([]models.Date, 0, len(entries))

	for _, entry := range entries {
		d, ok := n.date(entry)
		if !ok {
			continue
		}
		dates = append(dates, d)

		key := keyOf(location, d)
		if _, dup := n.seenCond[key]; dup {
			n.stats.DuplicateRows++
			continue
		}
		n.seenCond[key] = struct{}{}

		condition, _ := entry.String(n.opts.ConditionField)
		code, _ := entry.String(n.opts.CodeField)

		rows = append(rows, models.ConditionRow{
			Location:  location,
			Date:      d,
			Condition: condition,
			Code:      code,
			Icon:      IconFor(code),
		})
	}
	return rows, dates
}

// lookup maps date to value. A later entry for the same date replaces an
// earlier one; nil records a date whose entry had no numeric value.
func (n *run) lookup(entries []models.DailyEntry, candidates []string) map[rowKey]*float64 {
	out := make(map[rowKey]*float64, len(entries))
	for _, entry := range entries {
		d, ok := n.date(entry)
		if !ok {
			continue
		}
		var value *float64
		if v, ok := PickNumeric(entry, n.opts.DateField, candidates); ok {
			value = &v
		}
		out[keyOf("", d)] = value
	}
	return out
}

func (n *run) temperatureRows(
	location string,
	conditionDates []models.Date,
	maxByDate, minByDate map[rowKey]*float64,
) []models.TemperatureRow {
	dates := make(map[rowKey]models.Date, len(conditionDates))
	for _, d := range conditionDates {
		dates[keyOf("", d)] = d
	}

	dropped := make(map[rowKey]struct{})
	for _, channel := range []map[rowKey]*float64{maxByDate, minByDate} {
		for k := range channel {
			if _, ok := dates[k]; ok {
				continue
			}
			if n.opts.Join != JoinUnion {
				dropped[k] = struct{}{}
				continue
			}
			d, _ := models.ParseDate(k.date)
			dates[k] = d
		}
	}
	n.stats.DroppedTemperature += len(dropped)

	ordered := make([]models.Date, 0, len(dates))
	for _, d := range dates {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	rows := make([]models.TemperatureRow, 0, len(ordered))
	for _, d := range ordered {
		key := keyOf(location, d)
		if _, dup := n.seenTemp[key]; dup {
			n.stats.DuplicateRows++
			continue
		}
		n.seenTemp[key] = struct{}{}

		dateKey := keyOf("", d)
		rows = append(rows, models.TemperatureRow{
			Location: location,
			Date:     d,
			MaxT:     copyValue(maxByDate[dateKey]),
			MinT:     copyValue(minByDate[dateKey]),
		})
	}
	return rows
}

func copyValue(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
