// Package xlsx reads and writes the canonical wire table as XLSX
// workbooks, the format the spreadsheet authoring tool exchanges.
package xlsx

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"building-cost/core/snapshot"
	"building-cost/internal/errors"
)

// DefaultSheet is the sheet name used when none is configured.
const DefaultSheet = "Snapshot"

// Read decodes the wire table from the named sheet. An empty sheet name
// selects the workbook's first sheet. Missing UnitName or DataType
// columns are structural errors; other columns are optional and default
// to empty.
func Read(r io.Reader, sheet string) ([]snapshot.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Parsing("open xlsx workbook", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Parsing("read sheet "+sheet, err)
	}
	if len(rows) == 0 {
		return nil, errors.Parsing("sheet "+sheet+" is empty", nil)
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	out := make([]snapshot.Row, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := rowFromCells(cells, index)
		if row.UnitName == "" && row.DataType == "" {
			continue // trailing blank line
		}
		out = append(out, row)
	}
	return out, nil
}

// Write encodes the wire table into a single-sheet workbook.
func Write(w io.Writer, sheet string, rows []snapshot.Row) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.Internal("rename sheet", err)
	}

	header := make([]interface{}, len(snapshot.Columns))
	for i, c := range snapshot.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Internal("write header row", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Internal("compute cell coordinates", err)
		}
		if err := f.SetSheetRow(sheet, cell, rowCells(row)); err != nil {
			return errors.Internal("write data row", err)
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Internal("write workbook", err)
	}
	return nil
}

// headerIndex maps canonical column names to their positions in the
// header row. Matching is case-insensitive and whitespace-tolerant.
func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"unitname", "datatype"} {
		if _, ok := index[required]; !ok {
			return nil, errors.Parsing("header lacks required column "+required, nil)
		}
	}
	return index, nil
}

func cellAt(cells []string, index map[string]int, column string) string {
	i, ok := index[strings.ToLower(column)]
	if !ok || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func rowFromCells(cells []string, index map[string]int) snapshot.Row {
	row := snapshot.Row{
		UnitName:  cellAt(cells, index, "UnitName"),
		DataType:  snapshot.DataType(cellAt(cells, index, "DataType")),
		Key:       cellAt(cells, index, "Key"),
		SourceRow: cellAt(cells, index, "SourceRow"),
	}
	for i := 0; i < snapshot.ValueSlots; i++ {
		row.Vals[i] = cellAt(cells, index, snapshot.Columns[3+i])
	}
	return row
}

func rowCells(row snapshot.Row) *[]interface{} {
	cells := make([]interface{}, 0, len(snapshot.Columns))
	cells = append(cells, row.UnitName, row.DataType.String(), row.Key)
	for i := 0; i < snapshot.ValueSlots; i++ {
		cells = append(cells, row.Vals[i])
	}
	cells = append(cells, row.SourceRow)
	return &cells
}
