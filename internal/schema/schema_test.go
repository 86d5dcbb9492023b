package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// tableWith builds a single-row DataFrame with the given column names.
// Detection only looks at names, so the cell values are irrelevant.
func tableWith(cols ...string) dataframe.DataFrame {
	ss := make([]series.Series, len(cols))
	for i, c := range cols {
		ss[i] = series.New([]string{"x"}, series.String, c)
	}
	return dataframe.New(ss...)
}

func TestDetect_Legacy(t *testing.T) {
	df := tableWith(ColNo, ColRegion, ColComplex, ColArea, ColYearMonth, ColDay, ColAmount)

	got, err := Detect(df)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if got != FormatLegacy {
		t.Errorf("Detect() = %q, want %q", got, FormatLegacy)
	}
}

func TestDetect_NewAPI(t *testing.T) {
	df := tableWith(APIRegionCode, APIDongName, APIComplex, APIArea, APIYear, APIMonth, APIDay, APIAmount)

	got, err := Detect(df)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if got != FormatNewAPI {
		t.Errorf("Detect() = %q, want %q", got, FormatNewAPI)
	}
}

func TestDetect_LegacyWinsWhenBothPresent(t *testing.T) {
	// Stray API columns in an otherwise legacy export must not flip detection.
	df := tableWith(ColRegion, ColComplex, ColAmount, APIRegionCode, APIComplex, APIAmount)

	got, err := Detect(df)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if got != FormatLegacy {
		t.Errorf("Detect() = %q, want %q (legacy takes priority)", got, FormatLegacy)
	}
}

func TestDetect_PartialSignatureFails(t *testing.T) {
	// Two of three legacy indicators is not enough.
	df := tableWith(ColRegion, ColComplex, "금액")

	_, err := Detect(df)
	var unknown *UnknownSchemaError
	if !errors.As(err, &unknown) {
		t.Fatalf("Detect() error = %v, want *UnknownSchemaError", err)
	}
}

func TestDetect_UnknownSchemaError(t *testing.T) {
	df := tableWith("a", "b", "c")

	_, err := Detect(df)
	var unknown *UnknownSchemaError
	if !errors.As(err, &unknown) {
		t.Fatalf("Detect() error = %v, want *UnknownSchemaError", err)
	}
	if len(unknown.Columns) != 3 {
		t.Errorf("UnknownSchemaError.Columns = %v, want the 3 actual columns", unknown.Columns)
	}
	for _, c := range []string{"a", "b", "c"} {
		if !strings.Contains(unknown.Error(), c) {
			t.Errorf("error message %q missing column %q", unknown.Error(), c)
		}
	}
}

func TestUnknownSchemaError_TruncatesColumnList(t *testing.T) {
	cols := []string{"m", "c", "k", "a", "e", "g", "i", "b", "d", "f", "h", "j", "l"}
	err := &UnknownSchemaError{Columns: cols}

	msg := err.Error()
	if !strings.Contains(msg, "(3 more)") {
		t.Errorf("error message %q should collapse the remainder as \"(3 more)\"", msg)
	}
	// Sorted: a..j are shown, k/l/m collapsed.
	if !strings.Contains(msg, "a, b, c, d, e, f, g, h, i, j") {
		t.Errorf("error message %q should list the first 10 columns sorted", msg)
	}
	if strings.Contains(msg, " k,") || strings.Contains(msg, " m,") {
		t.Errorf("error message %q should not list columns beyond the first 10", msg)
	}
}
