package web

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aptview/aptview/internal/analytics"
	"github.com/aptview/aptview/internal/core"
	"github.com/aptview/aptview/internal/excel"
	"github.com/aptview/aptview/internal/logging"
	"github.com/aptview/aptview/internal/schema"
)

const indexPage = `<!DOCTYPE html>
<html lang="ko">
<head>
<meta charset="utf-8">
<title>아파트 실거래가 분석</title>
<style>
body { font-family: sans-serif; max-width: 40rem; margin: 4rem auto; padding: 0 1rem; }
form { border: 1px solid #ccc; border-radius: 8px; padding: 2rem; }
ul { color: #555; font-size: 0.9rem; }
</style>
</head>
<body>
<h1>아파트 실거래가 분석</h1>
<p>국토교통부 실거래가 엑셀 파일을 업로드하면 대시보드가 생성됩니다.</p>
<form action="/api/upload" method="post" enctype="multipart/form-data">
  <input type="file" name="file" accept=".xlsx" required>
  <button type="submit">업로드</button>
</form>
<ul>
  <li>실거래가 공개시스템 다운로드 형식과 공공데이터 API 형식을 모두 지원합니다.</li>
  <li>해제된 거래는 자동으로 제외됩니다.</li>
</ul>
</body>
</html>
`

// handleIndex serves the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexPage))
}

type uploadResponse struct {
	DatasetID      string `json:"dataset_id"`
	FileName       string `json:"file_name"`
	Format         string `json:"format"`
	Rows           int    `json:"rows"`
	CancelledCount int    `json:"cancelled_count"`
	WarningCount   int    `json:"warning_count"`
	Dashboard      string `json:"dashboard"`
}

// handleUpload ingests a multipart Excel file, runs it through the full
// detect/normalize/preprocess pipeline, and caches the result.
//
// Fatal pipeline errors (unknown schema, missing columns, unparseable
// dates) are the client's data problem and come back as 422 with the
// error's own message; row-level coercion warnings never fail the upload.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxFileSize); err != nil {
		writeError(ctx, w, http.StatusRequestEntityTooLarge, "file exceeds upload size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, "missing form field: file")
		return
	}
	defer file.Close()

	raw, err := excel.LoadReader(file)
	if err != nil {
		writeError(ctx, w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	format, err := schema.Detect(raw)
	if err != nil {
		writeError(ctx, w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	normalized, warnings, err := core.AutoTransform(raw)
	if err != nil {
		writeError(ctx, w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ds, err := core.Preprocess(normalized)
	if err != nil {
		var dateErr *core.DateParseError
		if errors.As(err, &dateErr) {
			writeError(ctx, w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(ctx, w, http.StatusInternalServerError, "failed to preprocess dataset")
		logger.Error("preprocess failed", "file", header.Filename, "error", err)
		return
	}

	entry := &Entry{
		FileName:       header.Filename,
		Rows:           ds.Data.Nrow(),
		CancelledCount: ds.CancelledCount,
		Data:           ds,
		Warnings:       append(warnings, ds.Warnings...),
	}
	id := s.datasets.Put(entry)

	logger.Info("dataset uploaded",
		"dataset_id", id,
		"file", header.Filename,
		"format", format,
		"rows", entry.Rows,
		"cancelled", entry.CancelledCount,
		"warnings", len(entry.Warnings),
	)

	writeJSON(w, uploadResponse{
		DatasetID:      id,
		FileName:       header.Filename,
		Format:         string(format),
		Rows:           entry.Rows,
		CancelledCount: entry.CancelledCount,
		WarningCount:   len(entry.Warnings),
		Dashboard:      "/dashboard/" + id,
	})
}

type datasetInfo struct {
	DatasetID      string    `json:"dataset_id"`
	FileName       string    `json:"file_name"`
	UploadedAt     time.Time `json:"uploaded_at"`
	Rows           int       `json:"rows"`
	CancelledCount int       `json:"cancelled_count"`
}

// handleListDatasets lists cached datasets, newest first.
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	entries := s.datasets.List()
	out := make([]datasetInfo, len(entries))
	for i, e := range entries {
		out[i] = datasetInfo{
			DatasetID:      e.ID,
			FileName:       e.FileName,
			UploadedAt:     e.UploadedAt,
			Rows:           e.Rows,
			CancelledCount: e.CancelledCount,
		}
	}
	writeJSON(w, out)
}

// dataset resolves the {datasetID} URL parameter against the store,
// writing a 404 and returning nil when it is unknown.
func (s *Server) dataset(w http.ResponseWriter, r *http.Request) *Entry {
	id := chi.URLParam(r, "datasetID")
	entry := s.datasets.Get(id)
	if entry == nil {
		writeError(r.Context(), w, http.StatusNotFound, "unknown dataset: "+id)
		return nil
	}
	return entry
}

type summaryResponse struct {
	DatasetID          string  `json:"dataset_id"`
	Count              int     `json:"count"`
	CancelledCount     int     `json:"cancelled_count"`
	MeanAmount         float64 `json:"mean_amount"`
	MaxAmount          float64 `json:"max_amount"`
	MinAmount          float64 `json:"min_amount"`
	MeanPricePerPyeong float64 `json:"mean_price_per_pyeong"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	entry := s.dataset(w, r)
	if entry == nil {
		return
	}

	sum := analytics.Summarize(entry.Data.Data)
	writeJSON(w, summaryResponse{
		DatasetID:          entry.ID,
		Count:              sum.Count,
		CancelledCount:     entry.CancelledCount,
		MeanAmount:         finite(sum.MeanAmount),
		MaxAmount:          finite(sum.MaxAmount),
		MinAmount:          finite(sum.MinAmount),
		MeanPricePerPyeong: finite(sum.MeanPricePerPyeong),
	})
}

// finite clamps NaN and ±Inf to 0 so responses stay encodable;
// encoding/json rejects non-finite floats.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

type warningItem struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (s *Server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	entry := s.dataset(w, r)
	if entry == nil {
		return
	}

	out := make([]warningItem, len(entry.Warnings))
	for i, warn := range entry.Warnings {
		out[i] = warningItem{Row: warn.Row, Column: warn.Column, Value: warn.Value, Reason: warn.Reason}
	}
	writeJSON(w, out)
}

type groupStatItem struct {
	Key                string  `json:"key"`
	Count              int     `json:"count"`
	MeanAmount         float64 `json:"mean_amount"`
	MaxAmount          float64 `json:"max_amount"`
	MinAmount          float64 `json:"min_amount"`
	MeanPricePerPyeong float64 `json:"mean_price_per_pyeong"`
}

func groupStatItems(stats []analytics.GroupStat) []groupStatItem {
	out := make([]groupStatItem, len(stats))
	for i, g := range stats {
		out[i] = groupStatItem{
			Key:                g.Key,
			Count:              g.Count,
			MeanAmount:         finite(g.MeanAmount),
			MaxAmount:          finite(g.MaxAmount),
			MinAmount:          finite(g.MinAmount),
			MeanPricePerPyeong: finite(g.MeanPricePerPyeong),
		}
	}
	return out
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	entry := s.dataset(w, r)
	if entry == nil {
		return
	}
	writeJSON(w, groupStatItems(analytics.ByRegion(entry.Data.Data)))
}

type monthStatItem struct {
	Month      string  `json:"month"`
	Count      int     `json:"count"`
	MeanAmount float64 `json:"mean_amount"`
	MaxAmount  float64 `json:"max_amount"`
	MinAmount  float64 `json:"min_amount"`
	MA3        float64 `json:"ma3"`
	MA6        float64 `json:"ma6"`
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	entry := s.dataset(w, r)
	if entry == nil {
		return
	}

	months := analytics.MonthlyTrend(entry.Data.Data)
	out := make([]monthStatItem, len(months))
	for i, m := range months {
		out[i] = monthStatItem{
			Month:      m.Month,
			Count:      m.Count,
			MeanAmount: m.MeanAmount,
			MaxAmount:  m.MaxAmount,
			MinAmount:  m.MinAmount,
			MA3:        m.MA3,
			MA6:        m.MA6,
		}
	}
	writeJSON(w, out)
}

type appreciationItem struct {
	Key           string  `json:"key"`
	Complex       string  `json:"complex"`
	PastMean      float64 `json:"past_mean"`
	CurrentMean   float64 `json:"current_mean"`
	ChangeAmount  float64 `json:"change_amount"`
	ChangePercent float64 `json:"change_percent"`
	PastCount     int     `json:"past_count"`
	CurrentCount  int     `json:"current_count"`
}

// windowParams parses the shared group/cutoff query parameters of the
// appreciation and premium endpoints. Defaults: group=complex, cutoff six
// months ago. ok is false after an error response has been written.
func windowParams(w http.ResponseWriter, r *http.Request) (analytics.GroupKey, time.Time, bool) {
	key := analytics.GroupByComplex
	switch r.URL.Query().Get("group") {
	case "", "complex":
	case "complex-area":
		key = analytics.GroupByComplexArea
	case "complex-area-floor":
		key = analytics.GroupByComplexAreaFloor
	default:
		writeError(r.Context(), w, http.StatusBadRequest, "group must be one of: complex, complex-area, complex-area-floor")
		return 0, time.Time{}, false
	}

	cutoff := time.Now().AddDate(0, -6, 0)
	if raw := r.URL.Query().Get("cutoff"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(r.Context(), w, http.StatusBadRequest, "cutoff must be YYYY-MM-DD")
			return 0, time.Time{}, false
		}
		cutoff = t
	}
	return key, cutoff, true
}

func (s *Server) handleAppreciation(w http.ResponseWriter, r *http.Request) {
	entry := s.dataset(w, r)
	if entry == nil {
		return
	}
	key, cutoff, ok := windowParams(w, r)
	if !ok {
		return
	}

	entries := analytics.Appreciation(entry.Data.Data, cutoff, key)
	out := make([]appreciationItem, len(entries))
	for i, a := range entries {
		out[i] = appreciationItem{
			Key:           a.Key,
			Complex:       a.Complex,
			PastMean:      a.PastMean,
			CurrentMean:   a.CurrentMean,
			ChangeAmount:  a.ChangeAmount,
			ChangePercent: a.ChangePercent,
			PastCount:     a.PastCount,
			CurrentCount:  a.CurrentCount,
		}
	}
	writeJSON(w, out)
}

type premiumItem struct {
	Complex     string  `json:"complex"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	PastMean    float64 `json:"past_mean"`
	Premium     float64 `json:"premium"`
	PremiumRate float64 `json:"premium_rate"`
}

// handlePremiums lists recent transactions priced above or below their
// group's past mean, the per-deal view behind the appreciation summary.
func (s *Server) handlePremiums(w http.ResponseWriter, r *http.Request) {
	entry := s.dataset(w, r)
	if entry == nil {
		return
	}
	key, cutoff, ok := windowParams(w, r)
	if !ok {
		return
	}

	premiums := analytics.Premiums(entry.Data.Data, cutoff, key)
	out := make([]premiumItem, len(premiums))
	for i, p := range premiums {
		out[i] = premiumItem{
			Complex:     p.Complex,
			Date:        p.Date,
			Amount:      p.Amount,
			PastMean:    p.PastMean,
			Premium:     p.Premium,
			PremiumRate: p.PremiumRate,
		}
	}
	writeJSON(w, out)
}
