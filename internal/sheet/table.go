package sheet

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Row is one spreadsheet row keyed by column name. Cell values keep whatever
// scalar type the reader produced; use CellString for display or matching.
type Row = map[string]any

// Table is the in-memory normalized form of one ingested spreadsheet:
// ordered sheet names plus per-sheet rows. Tables are built once by a Reader
// and never mutated afterwards.
type Table struct {
	SourceID   string
	Name       string
	SheetNames []string
	Rows       map[string][]Row
	ModifiedAt time.Time
}

// RowCount returns the total number of rows across all sheets.
func (t *Table) RowCount() int {
	total := 0
	for _, rows := range t.Rows {
		total += len(rows)
	}
	return total
}

// HasColumn reports whether any row in any sheet carries the named column.
func (t *Table) HasColumn(column string) bool {
	for _, rows := range t.Rows {
		for _, row := range rows {
			if _, ok := row[column]; ok {
				return true
			}
		}
	}
	return false
}

// Reader produces a Table from a storage item. Implementations wrap parse
// and access failures with services.ErrRead.
type Reader interface {
	Read(ctx context.Context, itemID string) (*Table, error)
}

// CellString coerces a cell value to a string. Non-string scalars are
// converted rather than rejected; nil becomes the empty string.
func CellString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
