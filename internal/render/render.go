// internal/render/render.go

// Package render writes resolved schedules as text tables, JSON, CSV or an
// HTML chart page.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"mcp-tpn-planner/internal/models"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatHTML  Format = "html"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatCSV, FormatHTML:
		return f, nil
	case "text", "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, json, csv or html)", s)
}

// Write renders schedules one after another in the given format. JSON
// output is a single array when there is more than one schedule.
func Write(w io.Writer, f Format, schedules ...*models.Schedule) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(schedules) == 1 {
			return enc.Encode(schedules[0])
		}
		return enc.Encode(schedules)
	case FormatCSV:
		return CSV(w, schedules...)
	case FormatHTML:
		return HTML(w, schedules...)
	}
	for i, s := range schedules {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := Table(w, s); err != nil {
			return err
		}
	}
	return nil
}

// FormatValue prints a cell value without trailing zeros; missing values
// print as "-".
func FormatValue(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Table writes an aligned, human readable schedule with notes and warnings.
func Table(w io.Writer, s *models.Schedule) error {
	p := s.Patient
	fmt.Fprintf(w, "Patient: %s (%s, age %g %s, %g cm, %g kg, %s)\n",
		p.Name, p.Variant, p.Age, p.AgeUnit, p.HeightCM, p.WeightKG, p.Sex)
	fmt.Fprintf(w, "IBW %g kg, BMI %g, %%IBW %g, reference weight %g kg\n",
		p.IdealBodyWeight, p.BodyMassIndex, p.PercentIdealBodyWeight, p.ReferenceValue)
	if len(p.Conditions) > 0 {
		fmt.Fprintf(w, "Conditions: %s\n", strings.Join(p.Conditions, ", "))
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"CATEGORY", "NUTRIENT", "UNIT"}
	for day := 1; day <= s.TotalDays; day++ {
		header = append(header, "DAY "+strconv.Itoa(day))
	}
	header = append(header, "FLAGS")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range s.Rows {
		cols := []string{row.Category, row.Nutrient, row.Unit}
		for _, c := range row.Cells {
			cols = append(cols, FormatValue(c.Value))
		}
		cols = append(cols, strings.Join(row.Annotations, "; "))
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(s.Notes) > 0 {
		fmt.Fprintln(w, "\nNotes:")
		for _, n := range s.Notes {
			fmt.Fprintf(w, "  - %s\n", n)
		}
	}
	if len(s.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warn := range s.Warnings {
			fmt.Fprintf(w, "  ! [%s] %s\n", warn.Code, warn.Message)
		}
	}
	return nil
}

// CSV writes one record per schedule row. Missing values are empty fields.
func CSV(w io.Writer, schedules ...*models.Schedule) error {
	maxDays := 0
	for _, s := range schedules {
		if s.TotalDays > maxDays {
			maxDays = s.TotalDays
		}
	}

	cw := csv.NewWriter(w)
	header := []string{"patient", "category", "nutrient", "unit", "dose_unit"}
	for day := 1; day <= maxDays; day++ {
		header = append(header, "day_"+strconv.Itoa(day))
	}
	header = append(header, "annotations")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, s := range schedules {
		for _, row := range s.Rows {
			rec := []string{s.Patient.Name, row.Category, row.Nutrient, row.Unit, row.DoseUnit}
			for day := 0; day < maxDays; day++ {
				field := ""
				if day < len(row.Cells) && row.Cells[day].Value != nil {
					field = FormatValue(row.Cells[day].Value)
				}
				rec = append(rec, field)
			}
			rec = append(rec, strings.Join(row.Annotations, "; "))
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
