// Package edinet provides HTTP API handlers for EDINET search, download and
// financial summary extraction.
package edinet

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"

	coreEdinet "corporate_reports/pkg/core/edinet"
	"corporate_reports/pkg/core/financials"
	"corporate_reports/pkg/core/store"
)

// Package-level dependencies set by InitHandler.
var (
	client  *coreEdinet.Client
	cache   *store.SummaryCache
	workDir = filepath.Join("data", "edinet")
)

// InitHandler wires the EDINET client and summary cache. client may be nil
// when no API key is configured; only the local extract endpoint works then.
func InitHandler(c *coreEdinet.Client, summaryCache *store.SummaryCache, defaultWorkDir string) {
	client = c
	cache = summaryCache
	if defaultWorkDir != "" {
		workDir = defaultWorkDir
	}
}

func setHeaders(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Handler] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"status": "error", "message": msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var ee *financials.ExtractionError
	if errors.As(err, &ee) {
		if ee.Kind == financials.ErrKindNotFound {
			return http.StatusNotFound
		}
		return http.StatusUnprocessableEntity
	}
	var apiErr *coreEdinet.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// HandleSearch handles GET /api/edinet/search?date=&sec_code=&ordinance_code=&form_code=
func HandleSearch(w http.ResponseWriter, r *http.Request) {
	setHeaders(w, "GET")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if client == nil {
		writeError(w, http.StatusServiceUnavailable, coreEdinet.ErrMissingAPIKey.Error())
		return
	}

	q := r.URL.Query()
	params := coreEdinet.SearchParams{
		Date:          q.Get("date"),
		SecCode:       q.Get("sec_code"),
		OrdinanceCode: q.Get("ordinance_code"),
		FormCode:      q.Get("form_code"),
	}
	if params.Date == "" {
		writeError(w, http.StatusBadRequest, "date is required (YYYY-MM-DD)")
		return
	}

	docs, err := client.SearchDocuments(r.Context(), params)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// ExtractRequest for POST /api/edinet/extract
type ExtractRequest struct {
	CSVDir string `json:"csv_dir"`
}

// HandleExtract handles POST /api/edinet/extract on an already unpacked bundle.
func HandleExtract(w http.ResponseWriter, r *http.Request) {
	setHeaders(w, "POST")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CSVDir == "" {
		writeError(w, http.StatusBadRequest, "csv_dir is required")
		return
	}

	result, err := financials.ExtractFinancialData(req.CSVDir)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// FetchRequest for POST /api/edinet/fetch
type FetchRequest struct {
	DocID   string `json:"doc_id"`
	WorkDir string `json:"work_dir"`
	Refresh bool   `json:"refresh"` // bypass the summary cache
}

// HandleFetch handles POST /api/edinet/fetch: download the CSV bundle,
// unpack it, extract the summary and cache it by document id.
func HandleFetch(w http.ResponseWriter, r *http.Request) {
	setHeaders(w, "POST")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DocID == "" {
		writeError(w, http.StatusBadRequest, "doc_id is required")
		return
	}

	ctx := r.Context()
	if cache != nil && !req.Refresh {
		entry, err := cache.Get(ctx, req.DocID)
		if err != nil {
			log.Printf("[WARNING] summary cache read failed for %s: %v", req.DocID, err)
		} else if entry != nil {
			log.Printf("[Handler] cache hit for %s", req.DocID)
			writeJSON(w, http.StatusOK, entry.Result())
			return
		}
	}

	if client == nil {
		writeError(w, http.StatusServiceUnavailable, coreEdinet.ErrMissingAPIKey.Error())
		return
	}

	dir := req.WorkDir
	if dir == "" {
		dir = workDir
	}
	result, err := client.FetchFinancialData(ctx, req.DocID, dir)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	if cache != nil {
		if err := cache.Save(ctx, store.NewCacheEntry(req.DocID, result)); err != nil {
			log.Printf("[WARNING] failed to cache %s: %v", req.DocID, err)
		}
	}
	writeJSON(w, http.StatusOK, result)
}
