// Package region maps 5-digit Korean administrative district codes (sggCd)
// to human-readable region names.
//
// The codes are the first five digits of the 10-digit legal dong code
// published by the Administrative Standard Code Management System
// (code.go.kr). The mapping is a closed, build-time constant covering the
// 25 districts of Seoul; there is no dynamic registration and no I/O.
package region

import "strings"

// seoulDistricts maps sggCd to "시도명 시군구명" for 서울특별시.
var seoulDistricts = map[string]string{
	"11110": "서울특별시 종로구",
	"11140": "서울특별시 중구",
	"11170": "서울특별시 용산구",
	"11200": "서울특별시 성동구",
	"11215": "서울특별시 광진구",
	"11230": "서울특별시 동대문구",
	"11260": "서울특별시 중랑구",
	"11290": "서울특별시 성북구",
	"11305": "서울특별시 강북구",
	"11320": "서울특별시 도봉구",
	"11350": "서울특별시 노원구",
	"11380": "서울특별시 은평구",
	"11410": "서울특별시 서대문구",
	"11440": "서울특별시 마포구",
	"11470": "서울특별시 양천구",
	"11500": "서울특별시 강서구",
	"11530": "서울특별시 구로구",
	"11545": "서울특별시 금천구",
	"11560": "서울특별시 영등포구",
	"11590": "서울특별시 동작구",
	"11620": "서울특별시 관악구",
	"11650": "서울특별시 서초구",
	"11680": "서울특별시 강남구",
	"11710": "서울특별시 송파구",
	"11740": "서울특별시 강동구",
}

// Clean normalizes a raw region code for lookup: trims whitespace and
// drops a fractional part left behind by float-typed spreadsheet columns
// (e.g. "11380.0" -> "11380").
func Clean(code string) string {
	code = strings.TrimSpace(code)
	if i := strings.IndexByte(code, '.'); i >= 0 {
		code = code[:i]
	}
	return code
}

// Lookup resolves a region code to its name.
//
// Unknown codes are not an error: the cleaned code itself is returned with
// known == false so callers can degrade gracefully and surface a warning.
func Lookup(code string) (name string, known bool) {
	c := Clean(code)
	if c == "" {
		return "", false
	}
	if n, ok := seoulDistricts[c]; ok {
		return n, true
	}
	return c, false
}

// IsKnown reports whether the code exists in the mapping table.
func IsKnown(code string) bool {
	_, ok := seoulDistricts[Clean(code)]
	return ok
}

// All returns a copy of the full code-to-name mapping.
// Mutating the returned map does not affect the registry.
func All() map[string]string {
	m := make(map[string]string, len(seoulDistricts))
	for k, v := range seoulDistricts {
		m[k] = v
	}
	return m
}
