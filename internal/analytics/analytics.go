// Package analytics computes the aggregations behind the dashboard: KPI
// summaries, groupings by region, area band, floor band, build year and
// complex, monthly trends with moving averages, record-high trails, and
// past-versus-recent appreciation. All functions are pure and operate on a
// preprocessed legacy-shaped table.
package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/aptview/aptview/internal/core"
	"github.com/aptview/aptview/internal/schema"
)

// Summary holds the headline KPIs for a filtered table.
type Summary struct {
	Count              int
	MeanAmount         float64 // 만원
	MaxAmount          float64
	MinAmount          float64
	MeanPricePerPyeong float64
}

// Summarize computes the KPI card values.
func Summarize(df dataframe.DataFrame) Summary {
	amounts := df.Col(schema.ColAmount).Float()
	prices := df.Col(schema.ColPricePyeong).Float()

	s := Summary{
		Count:              df.Nrow(),
		MeanAmount:         mean(amounts),
		MeanPricePerPyeong: mean(prices),
		MaxAmount:          math.Inf(-1),
		MinAmount:          math.Inf(1),
	}
	for _, a := range amounts {
		if math.IsNaN(a) {
			continue
		}
		if a > s.MaxAmount {
			s.MaxAmount = a
		}
		if a < s.MinAmount {
			s.MinAmount = a
		}
	}
	if s.Count == 0 {
		s.MaxAmount, s.MinAmount = 0, 0
	}
	return s
}

// GroupStat is one row of a grouped aggregation.
type GroupStat struct {
	Key                string
	Count              int
	MeanAmount         float64
	MaxAmount          float64
	MinAmount          float64
	MeanPricePerPyeong float64
}

// ByRegion aggregates per 시군구, sorted by transaction count descending.
func ByRegion(df dataframe.DataFrame) []GroupStat {
	stats := groupBy(df, df.Col(schema.ColRegion).Records())
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })
	return stats
}

// ByBuildYear aggregates per 건축년도, sorted by year ascending.
func ByBuildYear(df dataframe.DataFrame) []GroupStat {
	stats := groupBy(df, df.Col(schema.ColBuildYear).Records())
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Key < stats[j].Key })
	return stats
}

// areaBands in display order, matching the dashboard's 평형구분.
var areaBands = []string{"소형(59㎡이하)", "중소형(59~84㎡)", "중형(85~102㎡)", "중대형(102~135㎡)", "대형(135㎡초과)"}

// AreaBand classifies an exclusive area into the dashboard's size bands.
// NaN areas land in the largest band's fallthrough, so callers filtering on
// bands should drop NaN rows first; the grouped views simply count them as
// 대형, matching the source behavior.
func AreaBand(sqm float64) string {
	switch {
	case sqm < 60:
		return areaBands[0]
	case sqm < 85:
		return areaBands[1]
	case sqm < 102:
		return areaBands[2]
	case sqm < 135:
		return areaBands[3]
	default:
		return areaBands[4]
	}
}

// ByAreaBand aggregates per size band, in canonical band order.
func ByAreaBand(df dataframe.DataFrame) []GroupStat {
	areas := df.Col(schema.ColArea).Float()
	keys := make([]string, len(areas))
	for i, a := range areas {
		keys[i] = AreaBand(a)
	}
	return ordered(groupBy(df, keys), areaBands)
}

// floorBands in display order.
var floorBands = []string{"저층(1~5층)", "중층(6~15층)", "고층(16~30층)", "초고층(31층 이상)", "정보없음"}

// FloorBand classifies a raw 층 cell. Values may carry a 층 suffix; blanks
// and non-numeric values fall into 정보없음.
func FloorBand(raw string) string {
	n, ok := parseFloor(raw)
	if !ok {
		return floorBands[4]
	}
	switch {
	case n <= 5:
		return floorBands[0]
	case n <= 15:
		return floorBands[1]
	case n <= 30:
		return floorBands[2]
	default:
		return floorBands[3]
	}
}

// ByFloorBand aggregates per floor band, in canonical band order.
func ByFloorBand(df dataframe.DataFrame) []GroupStat {
	floors := df.Col(schema.ColFloor).Records()
	keys := make([]string, len(floors))
	for i, f := range floors {
		keys[i] = FloorBand(f)
	}
	return ordered(groupBy(df, keys), floorBands)
}

// TopComplexesByAmount returns the n complexes with the highest mean 거래금액.
func TopComplexesByAmount(df dataframe.DataFrame, n int) []GroupStat {
	stats := groupBy(df, df.Col(schema.ColComplex).Records())
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].MeanAmount > stats[j].MeanAmount })
	return head(stats, n)
}

// TopComplexesByPricePerPyeong returns the n complexes with the highest
// mean 평당가.
func TopComplexesByPricePerPyeong(df dataframe.DataFrame, n int) []GroupStat {
	stats := groupBy(df, df.Col(schema.ColComplex).Records())
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].MeanPricePerPyeong > stats[j].MeanPricePerPyeong })
	return head(stats, n)
}

// groupBy aggregates amount and 평당가 per key, preserving nothing about
// order; callers sort.
func groupBy(df dataframe.DataFrame, keys []string) []GroupStat {
	amounts := df.Col(schema.ColAmount).Float()
	prices := df.Col(schema.ColPricePyeong).Float()

	type acc struct {
		count               int
		amountSum           float64
		amountN             int
		priceSum            float64
		priceN              int
		maxAmount, minAmount float64
	}
	accs := make(map[string]*acc)
	for i, key := range keys {
		a, ok := accs[key]
		if !ok {
			a = &acc{maxAmount: math.Inf(-1), minAmount: math.Inf(1)}
			accs[key] = a
		}
		a.count++
		if !math.IsNaN(amounts[i]) {
			a.amountSum += amounts[i]
			a.amountN++
			if amounts[i] > a.maxAmount {
				a.maxAmount = amounts[i]
			}
			if amounts[i] < a.minAmount {
				a.minAmount = amounts[i]
			}
		}
		if !math.IsNaN(prices[i]) && !math.IsInf(prices[i], 0) {
			a.priceSum += prices[i]
			a.priceN++
		}
	}

	stats := make([]GroupStat, 0, len(accs))
	for key, a := range accs {
		g := GroupStat{Key: key, Count: a.count}
		if a.amountN > 0 {
			g.MeanAmount = a.amountSum / float64(a.amountN)
			g.MaxAmount = a.maxAmount
			g.MinAmount = a.minAmount
		}
		if a.priceN > 0 {
			g.MeanPricePerPyeong = a.priceSum / float64(a.priceN)
		}
		stats = append(stats, g)
	}
	return stats
}

// ordered arranges grouped stats into a fixed band order, skipping bands
// with no rows.
func ordered(stats []GroupStat, order []string) []GroupStat {
	byKey := make(map[string]GroupStat, len(stats))
	for _, s := range stats {
		byKey[s.Key] = s
	}
	out := make([]GroupStat, 0, len(stats))
	for _, key := range order {
		if s, ok := byKey[key]; ok {
			out = append(out, s)
		}
	}
	return out
}

func head(stats []GroupStat, n int) []GroupStat {
	if n > 0 && len(stats) > n {
		return stats[:n]
	}
	return stats
}

// parseFloor extracts an integer floor from a raw cell, tolerating a 층
// suffix and surrounding whitespace.
func parseFloor(raw string) (int, bool) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "층"))
	if core.IsBlank(s) {
		return 0, false
	}
	return core.ParseInt(s)
}

// mean averages the finite values of a slice, pandas-style: NaN and ±Inf
// are skipped rather than poisoning the result.
func mean(vals []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
