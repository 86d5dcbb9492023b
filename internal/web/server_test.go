package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"github.com/aptview/aptview/internal/config"
	"github.com/aptview/aptview/internal/core"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(&config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			RequestTimeout: time.Minute,
		},
		Upload: config.UploadConfig{
			MaxFileSize: 10 << 20,
			MaxDatasets: 4,
		},
		Rate:    config.RateLimitConfig{Enabled: false},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
	})
}

// seedDataset preprocesses a small legacy-shaped table and stores it
// directly, bypassing the upload endpoint.
func seedDataset(t *testing.T, s *Server) string {
	t.Helper()

	df := dataframe.LoadRecords([][]string{
		{"NO", "시군구", "단지명", "전용면적(㎡)", "계약년월", "계약일", "거래금액(만원)", "층", "건축년도", "해제사유발생일"},
		{"1", "서울특별시 은평구 불광동", "북한산푸르지오", "59.4", "202405", "7", "92,500", "12", "2014", "-"},
		{"2", "서울특별시 은평구 불광동", "북한산푸르지오", "59.4", "202406", "20", "95,000", "3", "2014", "-"},
		{"3", "서울특별시 강남구 대치동", "은마", "84.43", "202406", "5", "250,000", "8", "1979", "-"},
		{"4", "서울특별시 강남구 대치동", "은마", "84.43", "202407", "11", "270,000", "11", "1979", "20240720"},
	},
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		t.Fatal(df.Err)
	}

	ds, err := core.Preprocess(df)
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	return s.datasets.Put(&Entry{
		FileName:       "seed.xlsx",
		Rows:           ds.Data.Nrow(),
		CancelledCount: ds.CancelledCount,
		Data:           ds,
		Warnings:       ds.Warnings,
	})
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestIndexPage(t *testing.T) {
	s := testServer(t)
	rec := get(t, s, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if !strings.Contains(rec.Body.String(), "/api/upload") {
		t.Error("index page should post to /api/upload")
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := testServer(t)
	rec := get(t, s, "/")

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestUpload_NewAPIFile(t *testing.T) {
	s := testServer(t)

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"sggCd", "umdNm", "aptNm", "excluUseAr", "dealYear", "dealMonth", "dealDay", "dealAmount", "floor", "buildYear", "cdealDay"},
		{"11380", "불광동", "북한산푸르지오", 59.4, 2024, 7, 15, "92,500", 12, 2014, ""},
		{"11680", "대치동", "은마", 84.43, 2024, 7, 3, "250,000", 8, 1979, "24.07.20"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "deals.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Write(part); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/upload status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp uploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Format != "new-api" {
		t.Errorf("Format = %q, want new-api", resp.Format)
	}
	if resp.Rows != 1 {
		t.Errorf("Rows = %d, want 1 (cancelled row removed)", resp.Rows)
	}
	if resp.CancelledCount != 1 {
		t.Errorf("CancelledCount = %d, want 1", resp.CancelledCount)
	}
	if s.datasets.Get(resp.DatasetID) == nil {
		t.Error("uploaded dataset not found in store")
	}
}

func TestUpload_MissingFileField(t *testing.T) {
	s := testServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("name", "deals")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUpload_UnknownSchema(t *testing.T) {
	s := testServer(t)

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"foo", "bar", "baz"},
		{"1", "2", "3"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "junk.xlsx")
	if err := f.Write(part); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Errorf("body should carry a JSON error, got %s", rec.Body.String())
	}
}

func TestSummary(t *testing.T) {
	s := testServer(t)
	id := seedDataset(t, s)

	rec := get(t, s, "/api/dataset/"+id+"/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp summaryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 3 {
		t.Errorf("Count = %d, want 3", resp.Count)
	}
	if resp.CancelledCount != 1 {
		t.Errorf("CancelledCount = %d, want 1", resp.CancelledCount)
	}
	if resp.MaxAmount != 250000 {
		t.Errorf("MaxAmount = %v, want 250000", resp.MaxAmount)
	}
}

func TestSummary_UnknownDataset(t *testing.T) {
	s := testServer(t)

	rec := get(t, s, "/api/dataset/nope/summary")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListDatasets(t *testing.T) {
	s := testServer(t)
	id := seedDataset(t, s)

	rec := get(t, s, "/api/datasets")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp []datasetInfo
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp) != 1 {
		t.Fatalf("datasets = %d, want 1", len(resp))
	}
	if resp[0].DatasetID != id {
		t.Errorf("DatasetID = %q, want %q", resp[0].DatasetID, id)
	}
}

func TestTrend(t *testing.T) {
	s := testServer(t)
	id := seedDataset(t, s)

	rec := get(t, s, "/api/dataset/"+id+"/trend")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp []monthStatItem
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp) != 2 {
		t.Fatalf("months = %d, want 2", len(resp))
	}
	if resp[0].Month != "2024-05" || resp[1].Month != "2024-06" {
		t.Errorf("months = %q, %q; want 2024-05, 2024-06", resp[0].Month, resp[1].Month)
	}
}

func TestAppreciation_BadGroup(t *testing.T) {
	s := testServer(t)
	id := seedDataset(t, s)

	rec := get(t, s, "/api/dataset/"+id+"/appreciation?group=bogus")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAppreciation_ByComplex(t *testing.T) {
	s := testServer(t)
	id := seedDataset(t, s)

	rec := get(t, s, "/api/dataset/"+id+"/appreciation?group=complex&cutoff=2024-05-31")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp []appreciationItem
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	for _, a := range resp {
		if a.PastCount == 0 {
			t.Errorf("group %q has no past observations, should have been omitted", a.Key)
		}
	}
}

func TestPremiums(t *testing.T) {
	s := testServer(t)
	id := seedDataset(t, s)

	rec := get(t, s, "/api/dataset/"+id+"/premiums?cutoff=2024-05-31")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp []premiumItem
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	// Only 북한산푸르지오 traded before the cutoff; its June deal at 95000
	// against a past mean of 92500 is the single premium.
	if len(resp) != 1 {
		t.Fatalf("premiums = %d, want 1", len(resp))
	}
	if resp[0].Premium != 2500 {
		t.Errorf("Premium = %v, want 2500", resp[0].Premium)
	}
}

func TestDashboardPage(t *testing.T) {
	s := testServer(t)
	id := seedDataset(t, s)

	rec := get(t, s, "/dashboard/"+id)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "echarts") {
		t.Error("dashboard should embed echarts")
	}
	if !strings.Contains(body, "신고가") {
		t.Error("dashboard should include the record-high chart")
	}
}

func TestExportTrendPNG(t *testing.T) {
	s := testServer(t)
	id := seedDataset(t, s)

	rec := get(t, s, "/api/dataset/"+id+"/export/trend.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	// PNG magic number
	png := []byte{0x89, 'P', 'N', 'G'}
	if got, _ := io.ReadAll(rec.Body); !bytes.HasPrefix(got, png) {
		t.Error("body is not a PNG")
	}
}

func TestStoreEviction(t *testing.T) {
	s := testServer(t)

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, seedDataset(t, s))
	}

	if s.datasets.Len() != 4 {
		t.Fatalf("store size = %d, want 4", s.datasets.Len())
	}
	if s.datasets.Get(ids[0]) != nil {
		t.Error("oldest dataset should have been evicted")
	}
	if s.datasets.Get(ids[4]) == nil {
		t.Error("newest dataset should still be cached")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	if !rl.allow("1.2.3.4") {
		t.Error("first request should pass")
	}
	if !rl.allow("1.2.3.4") {
		t.Error("second request should pass")
	}
	if rl.allow("1.2.3.4") {
		t.Error("third request should be limited")
	}
	if !rl.allow("5.6.7.8") {
		t.Error("other IPs have their own bucket")
	}
}
