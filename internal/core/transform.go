package core

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/aptview/aptview/internal/region"
	"github.com/aptview/aptview/internal/schema"
)

// MissingColumnsError reports required new-API source columns absent from a
// table handed to Normalize. Validation is all-or-nothing: every missing
// column is listed and no row is processed.
type MissingColumnsError struct {
	Missing   []string
	Available []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns for transformation: %s (available: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Available, ", "))
}

// Normalize rewrites a new-API table into the legacy column shape.
//
// Row order is preserved with a one-to-one correspondence; the NO column is
// regenerated as 1..N regardless of source content. Cell-level coercion
// failures degrade to sentinels (0 for 계약년월/거래금액, NaN for 전용면적,
// the raw code for 시군구) and are reported in the returned warnings; only
// missing columns are fatal.
//
// The input is assumed to already be classified as FormatNewAPI; use
// AutoTransform when the shape is not known.
func Normalize(df dataframe.DataFrame) (dataframe.DataFrame, []Warning, error) {
	have := make(map[string]bool, len(df.Names()))
	for _, name := range df.Names() {
		have[name] = true
	}

	var missing []string
	for _, col := range schema.RequiredAPIColumns {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return dataframe.DataFrame{}, nil, &MissingColumnsError{
			Missing:   missing,
			Available: df.Names(),
		}
	}

	n := df.Nrow()
	var warnings []Warning
	warn := func(row int, col, value, reason string) {
		warnings = append(warnings, Warning{Row: row, Column: col, Value: value, Reason: reason})
	}

	codes := df.Col(schema.APIRegionCode).Records()
	complexes := df.Col(schema.APIComplex).Records()
	areas := df.Col(schema.APIArea).Records()
	years := df.Col(schema.APIYear).Records()
	months := df.Col(schema.APIMonth).Records()
	days := df.Col(schema.APIDay).Records()
	amounts := df.Col(schema.APIAmount).Records()
	floors := df.Col(schema.APIFloor).Records()
	buildYears := df.Col(schema.APIBuildYear).Records()

	var dongs []string
	if have[schema.APIDongName] {
		dongs = df.Col(schema.APIDongName).Records()
	}
	var cancels []string
	if have[schema.APICancelDate] {
		cancels = df.Col(schema.APICancelDate).Records()
	}

	nos := make([]int, n)
	regions := make([]string, n)
	areaVals := make([]float64, n)
	yearMonths := make([]int, n)
	amountVals := make([]int, n)
	cancelVals := make([]string, n)

	for i := 0; i < n; i++ {
		row := i + 1
		nos[i] = row

		regions[i] = regionName(codes[i], dong(dongs, i), func(code string) {
			warn(row, schema.APIRegionCode, code, "region code not in mapping table, using code as-is")
		})

		areaVals[i] = ParseFloat(areas[i])

		year, okY := ParseInt(years[i])
		month, okM := ParseInt(months[i])
		if okY && okM {
			yearMonths[i] = year*100 + month
		} else {
			yearMonths[i] = 0
			warn(row, schema.APIYear, years[i]+"/"+months[i], "cannot parse contract year/month")
		}

		amount, ok := ParseAmount(amounts[i])
		if !ok {
			warn(row, schema.APIAmount, amounts[i], "cannot parse deal amount, using 0")
		}
		amountVals[i] = amount

		if cancels != nil && !IsBlank(cancels[i]) {
			cancelVals[i] = strings.TrimSpace(cancels[i])
		}
		// else: stays "", the legacy spelling for "not cancelled"
	}

	out := dataframe.New(
		series.New(nos, series.Int, schema.ColNo),
		series.New(regions, series.String, schema.ColRegion),
		series.New(complexes, series.String, schema.ColComplex),
		series.New(areaVals, series.Float, schema.ColArea),
		series.New(yearMonths, series.Int, schema.ColYearMonth),
		series.New(days, series.String, schema.ColDay),
		series.New(amountVals, series.Int, schema.ColAmount),
		series.New(floors, series.String, schema.ColFloor),
		series.New(buildYears, series.String, schema.ColBuildYear),
		series.New(cancelVals, series.String, schema.ColCancelDate),
	)
	if out.Err != nil {
		return dataframe.DataFrame{}, nil, fmt.Errorf("build legacy table: %w", out.Err)
	}

	return out, warnings, nil
}

// AutoTransform detects the table's shape and normalizes it when needed.
// Already-legacy tables pass through unchanged.
func AutoTransform(df dataframe.DataFrame) (dataframe.DataFrame, []Warning, error) {
	format, err := schema.Detect(df)
	if err != nil {
		return dataframe.DataFrame{}, nil, err
	}
	if format == schema.FormatLegacy {
		return df, nil, nil
	}
	return Normalize(df)
}

// regionName resolves a region code and appends the trimmed legal-dong name
// when one is present. onUnknown fires for codes outside the registry.
func regionName(code, dongName string, onUnknown func(code string)) string {
	name, known := region.Lookup(code)
	if !known && name != "" {
		onUnknown(name)
	}
	if dongName != "" {
		if name == "" {
			return dongName
		}
		return name + " " + dongName
	}
	return name
}

// dong returns the trimmed legal-dong name for row i, or "" when the column
// is absent or the cell is blank.
func dong(dongs []string, i int) string {
	if dongs == nil || IsBlank(dongs[i]) {
		return ""
	}
	return strings.TrimSpace(dongs[i])
}
