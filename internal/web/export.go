package web

import (
	"net/http"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/aptview/aptview/internal/analytics"
	"github.com/aptview/aptview/internal/logging"
)

// handleExportTrendPNG renders the monthly mean price trend as a static
// PNG, for embedding outside the interactive dashboard.
func (s *Server) handleExportTrendPNG(w http.ResponseWriter, r *http.Request) {
	entry := s.dataset(w, r)
	if entry == nil {
		return
	}

	months := analytics.MonthlyTrend(entry.Data.Data)
	// The renderer needs at least two points to draw an axis range.
	if len(months) < 2 {
		writeError(r.Context(), w, http.StatusUnprocessableEntity, "dataset spans fewer than two months, nothing to plot")
		return
	}

	xs := make([]time.Time, len(months))
	means := make([]float64, len(months))
	ma3 := make([]float64, len(months))
	for i, m := range months {
		t, err := time.Parse("2006-01", m.Month)
		if err != nil {
			writeError(r.Context(), w, http.StatusInternalServerError, "malformed month key in trend")
			return
		}
		xs[i] = t
		means[i] = finite(m.MeanAmount)
		ma3[i] = finite(m.MA3)
	}

	graph := chart.Chart{
		Title:  "월별 평균 거래금액 (만원)",
		Width:  1024,
		Height: 512,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "평균",
				XValues: xs,
				YValues: means,
			},
			chart.TimeSeries{
				Name:    "3개월 이동평균",
				XValues: xs,
				YValues: ma3,
				Style: chart.Style{
					StrokeDashArray: []float64{5.0, 5.0},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	w.Header().Set("Content-Type", "image/png")
	if err := graph.Render(chart.PNG, w); err != nil {
		logging.FromContext(r.Context()).Error("trend export failed", "dataset_id", entry.ID, "error", err)
	}
}
