package identity

import (
	"itti/internal/services"
	"itti/internal/sheet"
)

// Extractor pulls customer identities from a configured column across all
// sheets of a table.
type Extractor struct {
	Column    string
	Normalize Normalizer
}

// NewExtractor builds an extractor for the given column. A nil normalizer
// falls back to Default.
func NewExtractor(column string, normalize Normalizer) *Extractor {
	if normalize == nil {
		normalize = Default
	}
	return &Extractor{Column: column, Normalize: normalize}
}

// Extract scans every sheet's rows and returns the set of unique normalized
// identities. Rows without the column, or with a blank value, contribute
// nothing. A table that has rows but carries the column in none of them
// fails with a configuration error: that will not fix itself on retry.
func (e *Extractor) Extract(table *sheet.Table) (Set, error) {
	normalize := e.Normalize
	if normalize == nil {
		normalize = Default
	}

	ids := make(Set)
	columnSeen := false
	for _, name := range table.SheetNames {
		for _, row := range table.Rows[name] {
			value, ok := row[e.Column]
			if !ok {
				continue
			}
			columnSeen = true
			id := normalize(sheet.CellString(value))
			if id == "" {
				continue
			}
			ids.Add(id)
		}
	}

	if !columnSeen && table.RowCount() > 0 {
		return nil, services.Wrap(services.ErrConfiguration, "extractor", "scan",
			"identity column "+e.Column+" absent from "+table.Name, nil)
	}
	return ids, nil
}
