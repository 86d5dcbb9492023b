package analytics

import (
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"

	"github.com/aptview/aptview/internal/schema"
)

// MonthStat is one month of the trend view.
type MonthStat struct {
	Month      string // "2024-07"
	Count      int
	MeanAmount float64
	MaxAmount  float64
	MinAmount  float64
	MA3        float64 // 3-month moving average of MeanAmount
	MA6        float64 // 6-month moving average of MeanAmount
}

// MonthlyTrend aggregates per calendar month of 거래일자, sorted ascending,
// with 3- and 6-month moving averages over the monthly mean (window
// shrinks at the start rather than emitting NaN, as the dashboard does).
func MonthlyTrend(df dataframe.DataFrame) []MonthStat {
	dates := df.Col(schema.ColTradeDate).Records()
	keys := make([]string, len(dates))
	for i, d := range dates {
		keys[i] = monthOf(d)
	}

	grouped := groupBy(df, keys)
	sort.SliceStable(grouped, func(i, j int) bool { return grouped[i].Key < grouped[j].Key })

	months := make([]MonthStat, len(grouped))
	for i, g := range grouped {
		months[i] = MonthStat{
			Month:      g.Key,
			Count:      g.Count,
			MeanAmount: g.MeanAmount,
			MaxAmount:  g.MaxAmount,
			MinAmount:  g.MinAmount,
		}
	}
	for i := range months {
		months[i].MA3 = trailingMean(months, i, 3)
		months[i].MA6 = trailingMean(months, i, 6)
	}
	return months
}

// RecordHigh is one step of the running record-high trail.
type RecordHigh struct {
	Date    string // "2024-07-15"
	Complex string
	Amount  float64 // 만원
}

// RecordHighs walks transactions in date order and keeps every new
// all-time-high 거래금액, the 신고가 trail of the dashboard.
func RecordHighs(df dataframe.DataFrame) []RecordHigh {
	dates := df.Col(schema.ColTradeDate).Records()
	complexes := df.Col(schema.ColComplex).Records()
	amounts := df.Col(schema.ColAmount).Float()

	idx := make([]int, len(dates))
	for i := range idx {
		idx[i] = i
	}
	// ISO dates sort lexicographically; stable keeps source order within a day.
	sort.SliceStable(idx, func(a, b int) bool { return dates[idx[a]] < dates[idx[b]] })

	var trail []RecordHigh
	high := math.Inf(-1)
	for _, i := range idx {
		if math.IsNaN(amounts[i]) || amounts[i] <= high {
			continue
		}
		high = amounts[i]
		trail = append(trail, RecordHigh{Date: dates[i], Complex: complexes[i], Amount: amounts[i]})
	}
	return trail
}

// trailingMean averages MeanAmount over the window ending at position i.
func trailingMean(months []MonthStat, i, window int) float64 {
	start := i - window + 1
	if start < 0 {
		start = 0
	}
	sum, n := 0.0, 0
	for j := start; j <= i; j++ {
		if math.IsNaN(months[j].MeanAmount) {
			continue
		}
		sum += months[j].MeanAmount
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// monthOf truncates an ISO date to its "YYYY-MM" month key.
func monthOf(isoDate string) string {
	if len(isoDate) >= 7 {
		return isoDate[:7]
	}
	return isoDate
}
