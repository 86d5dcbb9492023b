package excel

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/aptview/aptview/internal/schema"
)

// writeFixture creates a small new-API spreadsheet on disk.
func writeFixture(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "deals.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_FirstSheet(t *testing.T) {
	path := writeFixture(t, [][]interface{}{
		{"sggCd", "umdNm", "aptNm", "excluUseAr", "dealYear", "dealMonth", "dealDay", "dealAmount", "floor", "buildYear"},
		{"11380", "불광동", "북한산푸르지오", 59.4, 2024, 7, 15, "92,500", 12, 2014},
	})

	df, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if df.Nrow() != 1 {
		t.Errorf("Nrow = %d, want 1", df.Nrow())
	}
	format, err := schema.Detect(df)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if format != schema.FormatNewAPI {
		t.Errorf("Detect() = %q, want %q", format, schema.FormatNewAPI)
	}
}

func TestLoad_RaggedRowsArePadded(t *testing.T) {
	// The cancellation cell is absent from the data row entirely; the
	// loaded table must still be rectangular.
	path := writeFixture(t, [][]interface{}{
		{"sggCd", "umdNm", "aptNm", "excluUseAr", "dealYear", "dealMonth", "dealDay", "dealAmount", "floor", "buildYear", "cdealDay"},
		{"11380", "불광동", "북한산푸르지오", 59.4, 2024, 7, 15, "92,500", 12, 2014},
	})

	df, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := len(df.Names()); got != 11 {
		t.Errorf("columns = %d, want 11", got)
	}
}

func TestLoad_HeaderOnly(t *testing.T) {
	path := writeFixture(t, [][]interface{}{
		{"sggCd", "aptNm", "dealAmount"},
	})

	if _, err := Load(path); err == nil {
		t.Error("Load() on a header-only sheet should fail")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
		t.Error("Load() on a missing file should fail")
	}
}
