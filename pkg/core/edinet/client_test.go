package edinet

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"corporate_reports/pkg/core/financials"

	"golang.org/x/text/encoding/unicode"
)

const testAPIKey = "test_api_key_12345"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{
		APIKey:          testAPIKey,
		BaseURL:         srv.URL,
		RequestInterval: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if !strings.Contains(err.Error(), ".env") {
		t.Errorf("error should explain the .env setup: %s", err)
	}
}

func TestSearchDocuments_Success(t *testing.T) {
	var gotQuery map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/documents.json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"metadata": {"status": "200", "resultset": {"count": 1}},
			"results": [{"docID": "S100XXXX", "secCode": "58190", "filerName": "カナレ電気株式会社",
			             "ordinanceCode": "010", "formCode": "030000", "csvFlag": "1"}]
		}`))
	})

	docs, err := c.SearchDocuments(context.Background(), SearchParams{Date: "2025-03-27"})
	if err != nil {
		t.Fatalf("SearchDocuments() error = %v", err)
	}
	if len(docs) != 1 || docs[0].DocID != "S100XXXX" {
		t.Fatalf("unexpected docs: %+v", docs)
	}
	if !docs[0].HasCSV() {
		t.Error("HasCSV() = false")
	}
	if gotQuery["date"][0] != "2025-03-27" || gotQuery["type"][0] != "2" {
		t.Errorf("query = %v", gotQuery)
	}
	if gotQuery[apiKeyParam][0] != testAPIKey {
		t.Errorf("API key not sent: %v", gotQuery)
	}
}

func TestSearchDocuments_Filters(t *testing.T) {
	body := `{"metadata": {"status": "200"}, "results": [
		{"docID": "S100A", "secCode": "58190", "ordinanceCode": "010", "formCode": "030000"},
		{"docID": "S100B", "secCode": "12340", "ordinanceCode": "010", "formCode": "043000"},
		{"docID": "S100C", "secCode": "58195", "ordinanceCode": "020", "formCode": "999999"},
		{"docID": "S100D", "secCode": null, "ordinanceCode": "010", "formCode": "030000"}
	]}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	tests := []struct {
		name   string
		params SearchParams
		want   []string
	}{
		{"4-digit securities code prefix", SearchParams{SecCode: "5819"}, []string{"S100A", "S100C"}},
		{"5-digit securities code", SearchParams{SecCode: "58190"}, []string{"S100A", "S100C"}},
		{"annual reports only", SearchParams{OrdinanceCode: OrdinanceCorporateDisclosure, FormCode: FormAnnualSecuritiesReport}, []string{"S100A", "S100D"}},
		{"no filters", SearchParams{}, []string{"S100A", "S100B", "S100C", "S100D"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.Date = "2025-03-27"
			docs, err := c.SearchDocuments(context.Background(), tt.params)
			if err != nil {
				t.Fatalf("SearchDocuments() error = %v", err)
			}
			var got []string
			for _, d := range docs {
				got = append(got, d.DocID)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearchDocuments_APIStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"metadata": {"status": "400", "message": "Bad Request"}}`))
	})

	_, err := c.SearchDocuments(context.Background(), SearchParams{Date: "2025-03-27"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error should carry the status: %v", err)
	}
}

func TestSearchDocuments_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c, err := NewClient(ClientConfig{APIKey: testAPIKey, BaseURL: srv.URL, RequestInterval: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.SearchDocuments(context.Background(), SearchParams{Date: "2025-03-27"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if strings.Contains(err.Error(), testAPIKey) || strings.Contains(err.Error(), "Subscription-Key") {
		t.Errorf("error exposes the API key: %v", err)
	}
	if !strings.Contains(err.Error(), "/documents.json") {
		t.Errorf("error should still name the endpoint: %v", err)
	}

	_, err = c.DownloadDocument(context.Background(), "S100TEST", DocTypePDF, filepath.Join(t.TempDir(), "doc.pdf"))
	if err == nil || strings.Contains(err.Error(), testAPIKey) {
		t.Errorf("download error exposes the API key: %v", err)
	}
}

func TestSearchDocuments_InvalidDate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an invalid date")
	})
	if _, err := c.SearchDocuments(context.Background(), SearchParams{Date: "2025/03/27"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchRange(t *testing.T) {
	var dates []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		dates = append(dates, date)
		w.Write([]byte(`{"metadata": {"status": "200"}, "results": [{"docID": "D` + date + `"}]}`))
	})

	from := time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	docs, err := c.SearchRange(context.Background(), from, to, SearchParams{})
	if err != nil {
		t.Fatalf("SearchRange() error = %v", err)
	}
	if strings.Join(dates, ",") != "2025-03-30,2025-03-31,2025-04-01" {
		t.Errorf("dates = %v", dates)
	}
	if len(docs) != 3 || docs[2].DocID != "D2025-04-01" {
		t.Errorf("docs = %+v", docs)
	}

	if _, err := c.SearchRange(context.Background(), to, from, SearchParams{}); err == nil {
		t.Error("expected error for reversed range")
	}
}

func TestClient_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"metadata": {"status": "200"}, "results": []}`))
	}))
	defer srv.Close()

	interval := 40 * time.Millisecond
	c, err := NewClient(ClientConfig{APIKey: testAPIKey, BaseURL: srv.URL, RequestInterval: interval})
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.SearchDocuments(context.Background(), SearchParams{Date: "2025-03-27"}); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 2*interval {
		t.Errorf("3 requests took %v, want at least %v", elapsed, 2*interval)
	}
}

func TestDownloadDocument_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/documents/S100XXXX" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("type") != "2" {
			t.Errorf("type = %s", r.URL.Query().Get("type"))
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("chunk1"))
		w.Write([]byte("chunk2"))
	})

	out := filepath.Join(t.TempDir(), "test", "output.pdf")
	got, err := c.DownloadDocument(context.Background(), "S100XXXX", DocTypePDF, out)
	if err != nil {
		t.Fatalf("DownloadDocument() error = %v", err)
	}
	if got != out {
		t.Errorf("returned %s, want %s", got, out)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "chunk1chunk2" {
		t.Errorf("content = %q", data)
	}
}

func TestDownloadDocument_JSONErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`{"metadata": {"status": "404", "message": "Not Found"}}`))
	})

	out := filepath.Join(t.TempDir(), "out.zip")
	_, err := c.DownloadDocument(context.Background(), "S100NONE", DocTypeCSV, out)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 API error, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("no file should be written for an error body")
	}
}

func TestDownloadDocument_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	_, err := c.DownloadDocument(context.Background(), "S100XXXX", DocTypePDF, filepath.Join(t.TempDir(), "x.pdf"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func TestParseDocType(t *testing.T) {
	for _, s := range []string{"1", "2", "3", "4", "5"} {
		if _, err := ParseDocType(s); err != nil {
			t.Errorf("ParseDocType(%q) error = %v", s, err)
		}
	}
	if _, err := ParseDocType("9"); err == nil {
		t.Error("ParseDocType(9) expected error")
	}
	if !DocTypeCSV.IsArchive() || DocTypePDF.IsArchive() {
		t.Error("IsArchive mismatch")
	}
}

func buildZip(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractArchive(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "bundle.zip")
	data := buildZip(t, map[string][]byte{
		"XBRL_TO_CSV/a.csv": []byte("a"),
		"top.txt":           []byte("b"),
	})
	if err := os.WriteFile(zipPath, data, 0644); err != nil {
		t.Fatal(err)
	}

	files, err := ExtractArchive(zipPath, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("ExtractArchive() error = %v", err)
	}
	if len(files) != 2 {
		t.Errorf("extracted %d files", len(files))
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "XBRL_TO_CSV", "a.csv")); err != nil {
		t.Errorf("nested file missing: %v", err)
	}
}

func TestExtractArchive_RejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	if err := os.WriteFile(zipPath, buildZip(t, map[string][]byte{"../escape.txt": []byte("x")}), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ExtractArchive(zipPath, filepath.Join(dir, "out")); err == nil {
		t.Fatal("expected traversal error")
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); !os.IsNotExist(err) {
		t.Error("file escaped the destination")
	}
}

func TestFetchFinancialData(t *testing.T) {
	text := "要素ID\tコンテキストID\t相対年度\t値\r\n" +
		"jpcrp_cor:NetSalesSummaryOfBusinessResults\tCurrentYearDuration\t当期\t12383109000\r\n"
	csvData, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
	if err != nil {
		t.Fatal(err)
	}
	bundle := buildZip(t, map[string][]byte{
		"XBRL_TO_CSV/jpcrp030000-asr-001_E01350-000_2024-12-31_01_2025-03-21.csv": csvData,
	})

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "5" {
			t.Errorf("type = %s, want 5", r.URL.Query().Get("type"))
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(bundle)
	})

	result, err := c.FetchFinancialData(context.Background(), "S100XXXX", t.TempDir())
	if err != nil {
		t.Fatalf("FetchFinancialData() error = %v", err)
	}
	v, ok := result.Summary.Get(financials.PeriodCurrent, financials.IndicatorRevenue)
	if !ok || v.Int() != 12383109000 {
		t.Errorf("revenue = %v, %v", v, ok)
	}
}
