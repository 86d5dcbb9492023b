package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/aptview/aptview/internal/schema"
)

// tradeDateLayout is the fixed format the combined 계약년월+계약일 string
// must parse under.
const tradeDateLayout = "20060102"

// PyeongPerSqm converts exclusive area to the traditional Korean floor-area
// unit: 1평 ≈ 3.3㎡.
const PyeongPerSqm = 3.3

// Dataset is a preprocessed legacy-shaped table ready for analysis.
type Dataset struct {
	Data dataframe.DataFrame

	// CancelledCount is how many rows were removed because their
	// 해제사유발생일 carried a value. Returned explicitly rather than kept
	// as ambient state so Preprocess stays safe under repeated calls.
	CancelledCount int

	// Warnings collects non-fatal coercion issues found while preprocessing.
	Warnings []Warning
}

// DateParseError reports a contract date that does not form a valid
// calendar date under YYYYMMDD. It fails the whole table, not just the row.
type DateParseError struct {
	Row   int    // 1-based row in the filtered table
	Value string // the combined date string that failed to parse
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse contract date %q as YYYYMMDD: %v", e.Row, e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }

// Preprocess filters and augments a legacy-shaped table. The area, date,
// and amount columns must be present (*MissingColumnsError otherwise); then:
//
//  1. rows whose 해제사유발생일 carries a value are removed (the count is
//     returned; a missing column is tolerated and counts 0),
//  2. a string-typed 거래금액(만원) column is coerced to integers exactly
//     once — already-numeric data is never re-stripped,
//  3. 거래일자 is derived from 계약년월 and the zero-padded 계약일,
//  4. 평수 (전용면적/3.3) and 평당가(만원) are derived, with NaN and ±Inf
//     propagating through rather than being special-cased.
//
// Date derivation is deliberately strict: one unparseable date anywhere
// (including 계약년월 == 0 left behind by a lenient upstream coercion)
// aborts the whole table with *DateParseError. This asymmetry against the
// per-row leniency elsewhere matches the current behavior on purpose.
func Preprocess(df dataframe.DataFrame) (*Dataset, error) {
	var missing []string
	for _, col := range []string{schema.ColArea, schema.ColYearMonth, schema.ColDay, schema.ColAmount} {
		if !hasColumn(df, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing, Available: df.Names()}
	}

	ds := &Dataset{}

	df, cancelled, err := dropCancelled(df)
	if err != nil {
		return nil, err
	}
	ds.CancelledCount = cancelled

	df, warnings, err := coerceAmounts(df)
	if err != nil {
		return nil, err
	}
	ds.Warnings = warnings

	n := df.Nrow()

	dates := make([]string, n)
	yms := df.Col(schema.ColYearMonth).Records()
	days := df.Col(schema.ColDay).Records()
	for i := 0; i < n; i++ {
		combined := CleanCell(yms[i]) + padDay(days[i])
		t, err := time.Parse(tradeDateLayout, combined)
		if err != nil {
			return nil, &DateParseError{Row: i + 1, Value: combined, Err: err}
		}
		dates[i] = t.Format("2006-01-02")
	}

	areas := df.Col(schema.ColArea).Float()
	amounts := df.Col(schema.ColAmount).Float()
	pyeong := make([]float64, n)
	pricePerPyeong := make([]float64, n)
	for i := 0; i < n; i++ {
		pyeong[i] = areas[i] / PyeongPerSqm
		pricePerPyeong[i] = amounts[i] / pyeong[i]
	}

	df = df.
		Mutate(series.New(dates, series.String, schema.ColTradeDate)).
		Mutate(series.New(pyeong, series.Float, schema.ColPyeong)).
		Mutate(series.New(pricePerPyeong, series.Float, schema.ColPricePyeong))
	if df.Err != nil {
		return nil, fmt.Errorf("derive columns: %w", df.Err)
	}

	ds.Data = df
	return ds, nil
}

// dropCancelled removes rows whose cancellation date carries a value and
// returns how many were removed. Tables without the column pass through.
func dropCancelled(df dataframe.DataFrame) (dataframe.DataFrame, int, error) {
	if !hasColumn(df, schema.ColCancelDate) {
		return df, 0, nil
	}

	records := df.Col(schema.ColCancelDate).Records()
	keep := make([]int, 0, len(records))
	for i, v := range records {
		if IsBlank(v) {
			keep = append(keep, i)
		}
	}

	cancelled := len(records) - len(keep)
	if cancelled == 0 {
		return df, 0, nil
	}

	out := df.Subset(keep)
	if out.Err != nil {
		return dataframe.DataFrame{}, 0, fmt.Errorf("filter cancelled rows: %w", out.Err)
	}
	return out, cancelled, nil
}

// coerceAmounts converts a string-typed amount column to integers, stripping
// thousands separators. Numeric columns are left untouched so the strip
// never runs twice.
func coerceAmounts(df dataframe.DataFrame) (dataframe.DataFrame, []Warning, error) {
	col := df.Col(schema.ColAmount)
	if col.Err != nil {
		return dataframe.DataFrame{}, nil, fmt.Errorf("amount column: %w", col.Err)
	}
	if col.Type() != series.String {
		return df, nil, nil
	}

	records := col.Records()
	vals := make([]int, len(records))
	var warnings []Warning
	for i, r := range records {
		v, ok := ParseAmount(r)
		if !ok {
			warnings = append(warnings, Warning{
				Row:    i + 1,
				Column: schema.ColAmount,
				Value:  r,
				Reason: "cannot parse deal amount, using 0",
			})
		}
		vals[i] = v
	}

	out := df.Mutate(series.New(vals, series.Int, schema.ColAmount))
	if out.Err != nil {
		return dataframe.DataFrame{}, nil, fmt.Errorf("coerce amounts: %w", out.Err)
	}
	return out, warnings, nil
}

// padDay zero-pads a contract day to two digits ("7" -> "07"). Values that
// are not plain integers pass through untouched and fail the date parse.
func padDay(s string) string {
	d, ok := ParseInt(s)
	if !ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprintf("%02d", d)
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, c := range df.Names() {
		if c == name {
			return true
		}
	}
	return false
}
