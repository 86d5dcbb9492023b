package web

import (
	"fmt"
	"math"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/aptview/aptview/internal/analytics"
	"github.com/aptview/aptview/internal/logging"
)

const topComplexCount = 10

// handleDashboard renders the full dashboard page for one dataset: price
// trend with moving averages, monthly volume, region comparison, area and
// floor bands, build year, top complexes, and the record-high trail.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	entry := s.dataset(w, r)
	if entry == nil {
		return
	}

	df := entry.Data.Data
	months := analytics.MonthlyTrend(df)

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("아파트 실거래가 분석 - %s", entry.FileName)
	page.AddCharts(
		trendChart(months),
		volumeChart(months),
		regionChart(analytics.ByRegion(df)),
		bandChart("전용면적 구간별 평균 거래금액", analytics.ByAreaBand(df)),
		bandChart("층수 구간별 평균 거래금액", analytics.ByFloorBand(df)),
		buildYearChart(analytics.ByBuildYear(df)),
		topComplexAmountChart(analytics.TopComplexesByAmount(df, topComplexCount)),
		topComplexPyeongChart(analytics.TopComplexesByPricePerPyeong(df, topComplexCount)),
		recordHighChart(analytics.RecordHighs(df)),
	)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		logging.FromContext(r.Context()).Error("dashboard render failed", "dataset_id", entry.ID, "error", err)
	}
}

// trendChart plots the monthly mean 거래금액 with 3- and 6-month moving
// averages on one line chart.
func trendChart(months []analytics.MonthStat) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "월별 평균 거래금액 추이 (만원)"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	xs := make([]string, len(months))
	meanData := make([]opts.LineData, len(months))
	ma3Data := make([]opts.LineData, len(months))
	ma6Data := make([]opts.LineData, len(months))
	for i, m := range months {
		xs[i] = m.Month
		meanData[i] = opts.LineData{Value: round1(m.MeanAmount)}
		ma3Data[i] = opts.LineData{Value: round1(m.MA3)}
		ma6Data[i] = opts.LineData{Value: round1(m.MA6)}
	}

	line.SetXAxis(xs).
		AddSeries("평균", meanData).
		AddSeries("3개월 이동평균", ma3Data).
		AddSeries("6개월 이동평균", ma6Data)
	return line
}

// volumeChart plots transaction counts per month.
func volumeChart(months []analytics.MonthStat) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "월별 거래량"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	xs := make([]string, len(months))
	data := make([]opts.BarData, len(months))
	for i, m := range months {
		xs[i] = m.Month
		data[i] = opts.BarData{Value: m.Count}
	}

	bar.SetXAxis(xs).AddSeries("거래 건수", data)
	return bar
}

// regionChart compares regions by transaction count and mean amount.
func regionChart(stats []analytics.GroupStat) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "지역별 거래량 및 평균 거래금액"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	xs := make([]string, len(stats))
	counts := make([]opts.BarData, len(stats))
	means := make([]opts.BarData, len(stats))
	for i, g := range stats {
		xs[i] = g.Key
		counts[i] = opts.BarData{Value: g.Count}
		means[i] = opts.BarData{Value: round1(g.MeanAmount)}
	}

	bar.SetXAxis(xs).
		AddSeries("거래 건수", counts).
		AddSeries("평균 거래금액 (만원)", means)
	return bar
}

// bandChart plots mean amounts for an ordered banding (area or floor).
func bandChart(title string, stats []analytics.GroupStat) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	xs := make([]string, len(stats))
	data := make([]opts.BarData, len(stats))
	for i, g := range stats {
		xs[i] = g.Key
		data[i] = opts.BarData{Value: round1(g.MeanAmount)}
	}

	bar.SetXAxis(xs).AddSeries("평균 거래금액 (만원)", data)
	return bar
}

func buildYearChart(stats []analytics.GroupStat) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "건축년도별 평균 거래금액 (만원)"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	xs := make([]string, len(stats))
	data := make([]opts.BarData, len(stats))
	for i, g := range stats {
		xs[i] = g.Key
		data[i] = opts.BarData{Value: round1(g.MeanAmount)}
	}

	bar.SetXAxis(xs).AddSeries("평균 거래금액 (만원)", data)
	return bar
}

func topComplexAmountChart(stats []analytics.GroupStat) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("평균 거래금액 상위 %d개 단지 (만원)", topComplexCount)}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	xs := make([]string, len(stats))
	data := make([]opts.BarData, len(stats))
	for i, g := range stats {
		xs[i] = g.Key
		data[i] = opts.BarData{Value: round1(g.MeanAmount)}
	}

	bar.SetXAxis(xs).AddSeries("평균 거래금액 (만원)", data)
	return bar
}

func topComplexPyeongChart(stats []analytics.GroupStat) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("평당가 상위 %d개 단지 (만원)", topComplexCount)}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	xs := make([]string, len(stats))
	data := make([]opts.BarData, len(stats))
	for i, g := range stats {
		xs[i] = g.Key
		data[i] = opts.BarData{Value: round1(g.MeanPricePerPyeong)}
	}

	bar.SetXAxis(xs).AddSeries("평당가 평균 (만원)", data)
	return bar
}

// recordHighChart plots the 신고가 trail: every transaction that set a new
// all-time-high price, in date order.
func recordHighChart(highs []analytics.RecordHigh) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "신고가 갱신 추이 (만원)"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	xs := make([]string, len(highs))
	data := make([]opts.LineData, len(highs))
	for i, h := range highs {
		xs[i] = fmt.Sprintf("%s %s", h.Date, h.Complex)
		data[i] = opts.LineData{Value: h.Amount}
	}

	line.SetXAxis(xs).AddSeries("신고가", data)
	return line
}

func round1(v float64) float64 {
	return math.Round(finite(v)*10) / 10
}
