// Package excel loads the first sheet of an uploaded .xlsx/.xls export into
// an in-memory DataFrame. The core pipeline never opens files itself; this
// package is the collaborator that hands it an already-loaded table.
package excel

import (
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Load reads the spreadsheet at path.
func Load(path string) (dataframe.DataFrame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return fromFile(f)
}

// LoadReader reads a spreadsheet from an in-memory stream, e.g. a multipart
// upload.
func LoadReader(r io.Reader) (dataframe.DataFrame, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()
	return fromFile(f)
}

// fromFile extracts the first sheet only and rectangularizes its rows:
// spreadsheet libraries drop trailing empty cells, but a DataFrame needs
// every row as wide as the header.
func fromFile(f *excelize.File) (dataframe.DataFrame, error) {
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return dataframe.DataFrame{}, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %q is empty", sheet)
	}
	if len(rows) < 2 {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %q has a header but no data rows", sheet)
	}

	width := len(rows[0])
	records := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		} else if len(row) > width {
			row = row[:width]
		}
		records[i] = row
	}

	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("load sheet %q: %w", sheet, df.Err)
	}
	return df, nil
}
