// Package schema classifies uploaded real-transaction tables into one of the
// two recognized column shapes: the legacy 실거래가 download format and the
// MOLIT open-data API format.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// Format identifies a recognized table shape.
type Format string

const (
	// FormatLegacy is the classic download format (시군구/단지명/거래금액(만원) ...).
	FormatLegacy Format = "legacy"
	// FormatNewAPI is the open-data API format (sggCd/aptNm/dealAmount ...).
	FormatNewAPI Format = "new-api"
)

// maxColumnsInError caps how many actual column names an UnknownSchemaError
// spells out before collapsing the rest into a count.
const maxColumnsInError = 10

// UnknownSchemaError reports a table whose columns match neither shape.
// The column list helps users diagnose exports with renamed headers.
type UnknownSchemaError struct {
	Columns []string // the table's actual column names
}

func (e *UnknownSchemaError) Error() string {
	cols := append([]string(nil), e.Columns...)
	sort.Strings(cols)

	shown := cols
	extra := 0
	if len(cols) > maxColumnsInError {
		shown = cols[:maxColumnsInError]
		extra = len(cols) - maxColumnsInError
	}

	var b strings.Builder
	b.WriteString("unable to determine file format: expected legacy columns (")
	b.WriteString(strings.Join(legacyIndicators, ", "))
	b.WriteString(") or new API columns (")
	b.WriteString(strings.Join(apiIndicators, ", "))
	b.WriteString("); found: ")
	b.WriteString(strings.Join(shown, ", "))
	if extra > 0 {
		fmt.Fprintf(&b, ", ... (%d more)", extra)
	}
	return b.String()
}

// Detect classifies a table by column-name presence alone.
//
// The legacy signature is checked first and wins even when new-API columns
// are also present. Malformed exports can carry stray columns from either
// schema, so the tie-break is deliberate, not a fallthrough.
func Detect(df dataframe.DataFrame) (Format, error) {
	cols := make(map[string]bool, len(df.Names()))
	for _, name := range df.Names() {
		cols[name] = true
	}

	if hasAll(cols, legacyIndicators) {
		return FormatLegacy, nil
	}
	if hasAll(cols, apiIndicators) {
		return FormatNewAPI, nil
	}

	return "", &UnknownSchemaError{Columns: df.Names()}
}

func hasAll(cols map[string]bool, names []string) bool {
	for _, n := range names {
		if !cols[n] {
			return false
		}
	}
	return true
}
