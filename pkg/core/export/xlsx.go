// Package export writes extracted financial summaries to spreadsheets.
package export

import (
	"fmt"
	"path/filepath"
	"regexp"

	"corporate_reports/pkg/core/financials"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// edinetCodeRe finds the filer's EDINET code in an export file name such as
// jpcrp030000-asr-001_E01350-000_2024-12-31_01_2025-03-21.csv.
var edinetCodeRe = regexp.MustCompile(`_(E\d{5})-`)

// SheetName derives a sheet name for the i-th result (0-based).
func SheetName(i int, r *financials.Result) string {
	if m := edinetCodeRe.FindStringSubmatch(filepath.Base(r.Source)); m != nil {
		return m[1]
	}
	return fmt.Sprintf("Summary%d", i+1)
}

// WriteSummaryXLSX writes one sheet per result: indicators down, period
// buckets across (oldest first). Missing values are left blank.
func WriteSummaryXLSX(path string, results []*financials.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	used := map[string]int{}
	for i, r := range results {
		name := uniqueName(SheetName(i, r), used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := writeSheet(f, name, r); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func uniqueName(name string, used map[string]int) string {
	used[name]++
	if n := used[name]; n > 1 {
		name = fmt.Sprintf("%s_%d", name, n)
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

func writeSheet(f *excelize.File, sheet string, r *financials.Result) error {
	header := append([]interface{}{"指標"}, toInterfaces(financials.PeriodBuckets)...)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, indicator := range financials.Indicators {
		rowNum := i + 2
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), indicator); err != nil {
			return err
		}
		for j, period := range financials.PeriodBuckets {
			v, ok := r.Summary.Get(period, indicator)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+2, rowNum)
			if err != nil {
				return err
			}
			var cellValue interface{} = v.Int()
			if v.IsDecimal() {
				cellValue = v.Float64()
			}
			if err := f.SetCellValue(sheet, cell, cellValue); err != nil {
				return err
			}
		}
	}

	sourceRow := len(financials.Indicators) + 3
	return f.SetCellValue(sheet, fmt.Sprintf("A%d", sourceRow), "source: "+r.Source)
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
