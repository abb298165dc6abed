package config

import (
	"encoding/json"
	"net/http"

	coreConfig "corporate_reports/pkg/core/config"
	"corporate_reports/pkg/core/store"
)

// Response is the effective configuration with secrets reduced to flags.
type Response struct {
	EDINETBaseURL     string `json:"edinet_base_url"`
	RequestIntervalMS int    `json:"request_interval_ms"`
	HasAPIKey         bool   `json:"has_api_key"`
	CacheBackend      string `json:"cache_backend"` // "postgres" or "file"
	CacheDir          string `json:"cache_dir"`
	ReportCSSPath     string `json:"report_css_path"`
	ExtractWorkers    int    `json:"extract_concurrency"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	Config coreConfig.Config
	// DBConnected reports whether the summary cache is backed by PostgreSQL.
	DBConnected func() bool
}

// NewHandler creates a new config handler
func NewHandler(cfg coreConfig.Config) *Handler {
	return &Handler{
		Config:      cfg,
		DBConnected: func() bool { return store.GetPool() != nil },
	}
}

// HandleConfig handles GET /api/config
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers for local dev
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	backend := "file"
	if h.DBConnected != nil && h.DBConnected() {
		backend = "postgres"
	}

	resp := Response{
		EDINETBaseURL:     h.Config.EDINET.BaseURL,
		RequestIntervalMS: h.Config.EDINET.RequestIntervalMS,
		HasAPIKey:         h.Config.EDINET.APIKey != "",
		CacheBackend:      backend,
		CacheDir:          h.Config.Cache.Dir,
		ReportCSSPath:     h.Config.Report.CSSPath,
		ExtractWorkers:    h.Config.Extract.Concurrency,
	}
	json.NewEncoder(w).Encode(resp)
}
