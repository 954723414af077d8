package convert

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Sheet names in the produced workbook.
const (
	SheetData     = "Data"
	SheetOriginal = "Original_Data"
	SheetMetadata = "Metadata"
)

// BuildWorkbook assembles the output workbook: a Data sheet holding the
// pivot table when one was built and the flat records otherwise, an
// Original_Data sheet preserving the pre-pivot records (pivoted
// conversions only), and a Metadata sheet summarizing the conversion.
// Assembly is atomic: any failure, including a sheet exceeding the
// configured bounds, returns an error wrapping ErrAssembly and no
// workbook bytes.
func BuildWorkbook(records []Record, schema Schema, plan PivotPlan, table *PivotTable, quality []string, processingNotes string, opts Options) ([]byte, error) {
	opts = opts.normalized()

	if err := checkBounds(records, schema, table, opts); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetData); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
	}

	if plan.Pivot && table != nil {
		if err := writePivotSheet(f, SheetData, table); err != nil {
			return nil, err
		}
		if _, err := f.NewSheet(SheetOriginal); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
		}
		if err := writeFlatSheet(f, SheetOriginal, records, schema); err != nil {
			return nil, err
		}
	} else {
		if err := writeFlatSheet(f, SheetData, records, schema); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(SheetMetadata); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	if err := writeMetadataSheet(f, schema, plan, quality, processingNotes, len(records)); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	return buf.Bytes(), nil
}

func checkBounds(records []Record, schema Schema, table *PivotTable, opts Options) error {
	flatRows, flatCols := len(records)+1, len(schema.Fields)
	if flatRows > opts.MaxRows || flatCols > opts.MaxColumns {
		return fmt.Errorf("%w: flat sheet %dx%d exceeds bounds %dx%d",
			ErrAssembly, flatRows, flatCols, opts.MaxRows, opts.MaxColumns)
	}
	if table != nil {
		pivotRows, pivotCols := len(table.Categories)+1, len(table.Periods)+1
		if pivotRows > opts.MaxRows || pivotCols > opts.MaxColumns {
			return fmt.Errorf("%w: pivot sheet %dx%d exceeds bounds %dx%d",
				ErrAssembly, pivotRows, pivotCols, opts.MaxRows, opts.MaxColumns)
		}
	}
	return nil
}

// writePivotSheet emits the wide table: category column first, then one
// column per period. Cells without a value stay empty; zero and "no
// data" are never conflated.
func writePivotSheet(f *excelize.File, sheet string, table *PivotTable) error {
	header := append([]string{table.CategoryField}, table.Periods...)
	for col, name := range header {
		if err := setCell(f, sheet, col+1, 1, name); err != nil {
			return err
		}
	}
	for row, category := range table.Categories {
		if err := setCell(f, sheet, 1, row+2, category); err != nil {
			return err
		}
		for col, period := range table.Periods {
			value, ok := table.Cell(category, period)
			if !ok {
				continue
			}
			if err := setCell(f, sheet, col+2, row+2, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeFlatSheet renders one row per record against the union schema.
// A field absent from a record renders as an empty cell in its own
// column; columns never shift.
func writeFlatSheet(f *excelize.File, sheet string, records []Record, schema Schema) error {
	for col, name := range schema.Names() {
		if err := setCell(f, sheet, col+1, 1, name); err != nil {
			return err
		}
	}
	for row, rec := range records {
		for col, field := range schema.Fields {
			raw, ok := rec.Get(field.Name)
			if !ok || raw == "" {
				continue
			}
			if field.Kind == KindNumeric {
				if v, err := strconv.ParseFloat(raw, 64); err == nil {
					if err := setCell(f, sheet, col+1, row+2, v); err != nil {
						return err
					}
					continue
				}
			}
			if err := setCell(f, sheet, col+1, row+2, raw); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeMetadataSheet(f *excelize.File, schema Schema, plan PivotPlan, quality []string, processingNotes string, recordCount int) error {
	decision := "no pivot: " + plan.Reason
	if plan.Pivot {
		decision = fmt.Sprintf("pivot on %s x %s -> %s",
			plan.CategoryField, plan.PeriodField, plan.ValueField)
	}

	rows := [][]interface{}{
		{"Property", "Value"},
		{"Total Records", recordCount},
		{"Conversion Status", "Success"},
		{"Processing Notes", processingNotes},
		{"Pivot Decision", decision},
		{},
		{"Field", "Kind", "Role"},
	}
	for _, field := range schema.Fields {
		rows = append(rows, []interface{}{field.Name, string(field.Kind), string(field.Role)})
	}
	if len(quality) > 0 {
		rows = append(rows, []interface{}{}, []interface{}{"Data Quality"})
		for _, note := range quality {
			rows = append(rows, []interface{}{note})
		}
	}

	for r, row := range rows {
		for c, v := range row {
			if err := setCell(f, SheetMetadata, c+1, r+1, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	return nil
}
