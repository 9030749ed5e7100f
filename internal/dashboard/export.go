package dashboard

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"cwa-dashboard/internal/models"
)

const (
	SheetConditions   = "Conditions"
	SheetTemperatures = "Temperatures"
	SheetStats        = "Stats"
)

// ExportXLSX writes both tables into a workbook, one sheet each, plus a sheet
// with the normalization counters.
func ExportXLSX(tables models.Tables, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "CWA agricultural weather forecast",
		Subject: "F-A0010-001",
		Creator: "cwa-dashboard",
		Created: generatedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetConditions); err != nil {
		return nil, fmt.Errorf("failed to rename default sheet: %w", err)
	}
	if err := writeConditions(f, tables.Conditions); err != nil {
		return nil, fmt.Errorf("failed to create conditions sheet: %w", err)
	}
	if err := writeTemperatures(f, tables.Temperatures); err != nil {
		return nil, fmt.Errorf("failed to create temperatures sheet: %w", err)
	}
	if err := writeStats(f, tables.Stats); err != nil {
		return nil, fmt.Errorf("failed to create stats sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

func writeConditions(f *excelize.File, rows []models.ConditionRow) error {
	if err := f.SetSheetRow(SheetConditions, "A1", &[]interface{}{"Location", "Date", "Condition", "Code", "Icon"}); err != nil {
		return err
	}
	for i, r := range rows {
		values := []interface{}{r.Location, r.Date.String(), r.Condition, r.Code, string(r.Icon)}
		if err := f.SetSheetRow(SheetConditions, cell(1, i+2), &values); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetConditions, "A", "C", 18)
}

func writeTemperatures(f *excelize.File, rows []models.TemperatureRow) error {
	if _, err := f.NewSheet(SheetTemperatures); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetTemperatures, "A1", &[]interface{}{"Location", "Date", "MaxT", "MinT"}); err != nil {
		return err
	}
	for i, r := range rows {
		values := []interface{}{r.Location, r.Date.String(), optional(r.MaxT), optional(r.MinT)}
		if err := f.SetSheetRow(SheetTemperatures, cell(1, i+2), &values); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetTemperatures, "A", "B", 18)
}

func writeStats(f *excelize.File, stats models.NormalizeStats) error {
	if _, err := f.NewSheet(SheetStats); err != nil {
		return err
	}
	lines := []struct {
		label string
		value int
	}{
		{"Locations", stats.Locations},
		{"Skipped locations", stats.SkippedLocations},
		{"Malformed elements", stats.MalformedElements},
		{"Invalid dates", stats.InvalidDates},
		{"Duplicate rows", stats.DuplicateRows},
		{"Dropped temperatures", stats.DroppedTemperature},
	}
	for i, line := range lines {
		if err := f.SetSheetRow(SheetStats, cell(1, i+1), &[]interface{}{line.label, line.value}); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetStats, "A", "A", 24)
}

// optional leaves the cell empty for an absent value.
func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
