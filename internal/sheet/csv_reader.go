package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"itti/internal/services"
)

// CSVReader reads single-sheet tables from CSV files with a header row.
// It backs the local storage profile; the cloud profile supplies its own
// Reader against the backend export API.
type CSVReader struct {
	// Root is joined with the item ID to locate the file. Empty means the
	// item ID is already a path.
	Root string
	// SheetName labels the single sheet; defaults to "Sheet1".
	SheetName string
}

func (r *CSVReader) Read(ctx context.Context, itemID string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := itemID
	if r.Root != "" {
		path = filepath.Join(r.Root, itemID)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrRead, "csv reader", "open", itemID, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, services.Wrap(services.ErrRead, "csv reader", "stat", itemID, err)
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		header = nil
	} else if err != nil {
		return nil, services.Wrap(services.ErrRead, "csv reader", "parse header", itemID, err)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrRead, "csv reader", "parse row", itemID, err)
		}
		row := make(Row, len(header))
		for i, column := range header {
			column = strings.TrimSpace(column)
			if column == "" {
				continue
			}
			if i < len(record) {
				row[column] = record[i]
			} else {
				row[column] = ""
			}
		}
		rows = append(rows, row)
	}

	sheetName := r.SheetName
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	return &Table{
		SourceID:   itemID,
		Name:       filepath.Base(path),
		SheetNames: []string{sheetName},
		Rows:       map[string][]Row{sheetName: rows},
		ModifiedAt: info.ModTime().UTC(),
	}, nil
}
