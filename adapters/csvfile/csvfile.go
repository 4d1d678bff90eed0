// Package csvfile reads and writes the canonical wire table as CSV.
package csvfile

import (
	"encoding/csv"
	"io"
	"strings"

	"building-cost/core/snapshot"
	"building-cost/internal/errors"
)

// Read decodes the wire table. The first record must be the header;
// UnitName and DataType columns are required, the rest default to empty.
func Read(r io.Reader) ([]snapshot.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // records may omit trailing columns

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Parsing("read csv", err)
	}
	if len(records) == 0 {
		return nil, errors.Parsing("csv input is empty", nil)
	}

	index, err := headerIndex(records[0])
	if err != nil {
		return nil, err
	}

	out := make([]snapshot.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := snapshot.Row{
			UnitName:  field(record, index, "UnitName"),
			DataType:  snapshot.DataType(field(record, index, "DataType")),
			Key:       field(record, index, "Key"),
			SourceRow: field(record, index, "SourceRow"),
		}
		for i := 0; i < snapshot.ValueSlots; i++ {
			row.Vals[i] = field(record, index, snapshot.Columns[3+i])
		}
		if row.UnitName == "" && row.DataType == "" {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// Write encodes the wire table with the canonical header.
func Write(w io.Writer, rows []snapshot.Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(snapshot.Columns); err != nil {
		return errors.Internal("write csv header", err)
	}
	record := make([]string, len(snapshot.Columns))
	for _, row := range rows {
		record[0] = row.UnitName
		record[1] = row.DataType.String()
		record[2] = row.Key
		for i := 0; i < snapshot.ValueSlots; i++ {
			record[3+i] = row.Vals[i]
		}
		record[len(record)-1] = row.SourceRow
		if err := writer.Write(record); err != nil {
			return errors.Internal("write csv record", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Internal("flush csv", err)
	}
	return nil
}

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

func field(record []string, index map[string]int, column string) string {
	i, ok := index[strings.ToLower(column)]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
