package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Table is a step data table or an examples table. Column order is kept
// so projections and the JSON form follow the order the host sent.
type Table struct {
	Columns []string
	Rows    [][]any
}

func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// AddRow appends one row; values must line up with Columns.
func (t *Table) AddRow(values ...any) error {
	if len(values) != len(t.Columns) {
		return &ShapeError{Projection: "addRow", Want: fmt.Sprintf("%d values", len(t.Columns)), Rows: len(t.Rows), Columns: len(t.Columns)}
	}
	t.Rows = append(t.Rows, append([]any(nil), values...))
	return nil
}

// Len is the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Record returns row i keyed by column name.
func (t *Table) Record(i int) map[string]any {
	rec := make(map[string]any, len(t.Columns))
	for c, name := range t.Columns {
		rec[name] = t.Rows[i][c]
	}
	return rec
}

func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		out = append(out, t.Record(i))
	}
	return out
}

// AsEntity projects a single-row table onto one keyed record.
func (t *Table) AsEntity() (map[string]any, error) {
	if t.Len() != 1 {
		return nil, t.shapeError("tableAsEntity", "exactly one row")
	}
	return t.Record(0), nil
}

// AsList projects the table onto rows of values in column order.
func (t *Table) AsList() ([][]any, error) {
	if t == nil || len(t.Columns) == 0 {
		return nil, t.shapeError("tableAsList", "at least one column")
	}
	out := make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = append([]any(nil), row...)
	}
	return out, nil
}

// AsSingleList flattens a one-column table into its values.
func (t *Table) AsSingleList() ([]any, error) {
	if t == nil || len(t.Columns) != 1 {
		return nil, t.shapeError("tableAsSingleList", "exactly one column")
	}
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[0]
	}
	return out, nil
}

func (t *Table) shapeError(projection, want string) *ShapeError {
	e := &ShapeError{Projection: projection, Want: want}
	if t != nil {
		e.Rows = len(t.Rows)
		e.Columns = len(t.Columns)
	}
	return e
}

// FormatValue renders a scalar cell the way it reads in a feature file.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// MarshalJSON writes an array of row objects with keys in column order.
// A table with columns but no rows is written as a header-only grid so
// the columns survive the round trip.
func (t Table) MarshalJSON() ([]byte, error) {
	if len(t.Rows) == 0 && len(t.Columns) > 0 {
		header, err := json.Marshal(t.Columns)
		if err != nil {
			return nil, err
		}
		return append(append([]byte{'['}, header...), ']'), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for r, row := range t.Rows {
		if r > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for c, name := range t.Columns {
			if c > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(name)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(row[c])
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", name, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts an array of row objects (columns in first-seen key
// order) or an array of arrays whose first element is the header row.
func (t *Table) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Columns = nil
	t.Rows = nil
	if len(raw) == 0 {
		return nil
	}
	if first := bytes.TrimSpace(raw[0]); len(first) > 0 && first[0] == '[' {
		return t.unmarshalGrid(raw)
	}
	index := map[string]int{}
	var records []map[string]any
	for i, msg := range raw {
		keys, rec, err := decodeOrderedObject(msg)
		if err != nil {
			return fmt.Errorf("table row %d: %w", i, err)
		}
		for _, k := range keys {
			if _, ok := index[k]; !ok {
				index[k] = len(t.Columns)
				t.Columns = append(t.Columns, k)
			}
		}
		records = append(records, rec)
	}
	for _, rec := range records {
		row := make([]any, len(t.Columns))
		for k, v := range rec {
			row[index[k]] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return nil
}

func (t *Table) unmarshalGrid(raw []json.RawMessage) error {
	if err := json.Unmarshal(raw[0], &t.Columns); err != nil {
		return fmt.Errorf("table header: %w", err)
	}
	for i, msg := range raw[1:] {
		var row []any
		if err := json.Unmarshal(msg, &row); err != nil {
			return fmt.Errorf("table row %d: %w", i, err)
		}
		if err := t.AddRow(row...); err != nil {
			return err
		}
	}
	return nil
}

func decodeOrderedObject(msg json.RawMessage) ([]string, map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(msg))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}
	var keys []string
	rec := map[string]any{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("column %q: %w", key, err)
		}
		if _, dup := rec[key]; !dup {
			keys = append(keys, key)
		}
		rec[key] = v
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, rec, nil
}
