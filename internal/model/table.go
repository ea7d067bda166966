// Package model provides the in-memory data, cell size and scroll models
// the grid renders from.
package model

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Model errors.
var (
	// ErrInvalidJSON is returned when table input is not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON")

	// ErrNotTable is returned when JSON input is not an array of rows.
	ErrNotTable = errors.New("JSON document is not an array of rows")
)

// Table is a rectangular grid of values.
//
// Numbers are formatted for the table's locale. Table is not safe for
// concurrent use.
type Table struct {
	rows     [][]any
	cols     int
	printer  *message.Printer
	decimals int
	onChange func(row, col int)
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithLocale sets the locale used to format numbers.
func WithLocale(tag language.Tag) TableOption {
	return func(t *Table) {
		t.printer = message.NewPrinter(tag)
	}
}

// WithDecimals sets the maximum fraction digits shown for floats.
func WithDecimals(n int) TableOption {
	return func(t *Table) {
		if n >= 0 {
			t.decimals = n
		}
	}
}

// WithChangeFunc sets a callback run after every Set.
func WithChangeFunc(fn func(row, col int)) TableOption {
	return func(t *Table) {
		t.onChange = fn
	}
}

// NewTable creates a table from rows. Ragged rows are allowed; missing
// cells read as empty.
func NewTable(rows [][]any, opts ...TableOption) *Table {
	t := &Table{
		rows:     rows,
		printer:  message.NewPrinter(language.English),
		decimals: 2,
	}
	for _, r := range rows {
		if len(r) > t.cols {
			t.cols = len(r)
		}
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// OnChange replaces the callback run after every Set.
func (t *Table) OnChange(fn func(row, col int)) {
	t.onChange = fn
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	return len(t.rows)
}

// Cols returns the width of the widest row.
func (t *Table) Cols() int {
	return t.cols
}

// Get returns the raw value at (row, col), or nil when out of range.
func (t *Table) Get(row, col int) any {
	if row < 0 || row >= len(t.rows) {
		return nil
	}
	r := t.rows[row]
	if col < 0 || col >= len(r) {
		return nil
	}
	return r[col]
}

// Set stores a value, growing the table as needed.
func (t *Table) Set(row, col int, v any) {
	if row < 0 || col < 0 {
		return
	}
	for len(t.rows) <= row {
		t.rows = append(t.rows, nil)
	}
	r := t.rows[row]
	for len(r) <= col {
		r = append(r, nil)
	}
	r[col] = v
	t.rows[row] = r
	if col+1 > t.cols {
		t.cols = col + 1
	}
	if t.onChange != nil {
		t.onChange(row, col)
	}
}

// GetFormatted returns the display text of the cell at (row, col).
// Out of range cells are empty.
func (t *Table) GetFormatted(row, col int) string {
	return t.format(t.Get(row, col))
}

func (t *Table) format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return t.printer.Sprintf("%v", number.Decimal(x))
	case int64:
		return t.printer.Sprintf("%v", number.Decimal(x))
	case float64:
		return t.printer.Sprintf("%v", number.Decimal(x, number.MaxFractionDigits(t.decimals)))
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// FromJSON builds a table from a JSON array.
//
// Each element is either an array of cells or an object. For objects the
// keys of the first object become a header row and later objects are read
// in that key order.
func FromJSON(data []byte, opts ...TableOption) (*Table, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, ErrNotTable
	}

	var rows [][]any
	var header []string
	var err error
	doc.ForEach(func(_, row gjson.Result) bool {
		switch {
		case row.IsArray():
			var cells []any
			row.ForEach(func(_, cell gjson.Result) bool {
				cells = append(cells, cellValue(cell))
				return true
			})
			rows = append(rows, cells)
		case row.IsObject():
			if header == nil {
				row.ForEach(func(key, _ gjson.Result) bool {
					header = append(header, key.String())
					return true
				})
				h := make([]any, len(header))
				for i, k := range header {
					h[i] = k
				}
				rows = append(rows, h)
			}
			fields := row.Map()
			cells := make([]any, len(header))
			for i, k := range header {
				cells[i] = cellValue(fields[k])
			}
			rows = append(rows, cells)
		default:
			err = fmt.Errorf("%w: row %d is %s", ErrNotTable, len(rows), row.Type)
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return NewTable(rows, opts...), nil
}

func cellValue(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.True, gjson.False:
		return r.Bool()
	case gjson.Number:
		if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
			return i
		}
		return r.Float()
	case gjson.String:
		return r.String()
	default:
		return r.Raw
	}
}
