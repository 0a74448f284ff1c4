// Package csvmerge merges candidate CSV exports keyed by a column.
package csvmerge

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

type Table struct {
	Header []string
	Rows   [][]string
}

// Merge combines inputs by the key column (case-insensitive match on both
// header and value). Columns are the union of all headers in order of first
// appearance. Later inputs overwrite earlier values only when non-empty.
// Rows with an empty key are kept as-is.
func Merge(key string, inputs ...io.Reader) (*Table, error) {
	out := &Table{}
	colIndex := map[string]int{}
	rowIndex := map[string]int{}

	for n, in := range inputs {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		r.TrimLeadingSpace = true
		records, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", n+1, err)
		}
		if len(records) == 0 {
			continue
		}

		header := records[0]
		keyCol := -1
		mapping := make([]int, len(header))
		for i, h := range header {
			name := strings.TrimSpace(h)
			norm := strings.ToLower(name)
			if norm == strings.ToLower(key) {
				keyCol = i
			}
			idx, ok := colIndex[norm]
			if !ok {
				idx = len(out.Header)
				colIndex[norm] = idx
				out.Header = append(out.Header, name)
			}
			mapping[i] = idx
		}
		if keyCol < 0 {
			return nil, fmt.Errorf("input %d: key column %q not found", n+1, key)
		}

		for _, rec := range records[1:] {
			k := ""
			if keyCol < len(rec) {
				k = strings.ToLower(strings.TrimSpace(rec[keyCol]))
			}
			target, existing := -1, false
			if k != "" {
				target, existing = rowIndex[k]
			}
			if !existing {
				target = len(out.Rows)
				out.Rows = append(out.Rows, nil)
				if k != "" {
					rowIndex[k] = target
				}
			}
			row := out.Rows[target]
			for i, v := range rec {
				if existing && i == keyCol {
					continue
				}
				col := mapping[i]
				for len(row) <= col {
					row = append(row, "")
				}
				if v = strings.TrimSpace(v); v != "" {
					row[col] = v
				}
			}
			out.Rows[target] = row
		}
	}

	for i := range out.Rows {
		for len(out.Rows[i]) < len(out.Header) {
			out.Rows[i] = append(out.Rows[i], "")
		}
	}
	return out, nil
}

func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}
