// Package report provides the HTTP API handler for building report pages.
package report

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"net/http"

	coreReport "corporate_reports/pkg/core/report"
)

var baseOptions coreReport.Options

// InitHandler sets the CSS path and ECharts CDN used for every build.
func InitHandler(opts coreReport.Options) {
	baseOptions = opts
}

// BuildRequest for POST /api/report/build
type BuildRequest struct {
	ReportDir string `json:"report_dir"`
	NoCharts  bool   `json:"no_charts"`
}

// BuildResponse reports the written file.
type BuildResponse struct {
	Status string `json:"status"`
	File   string `json:"file"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Handler] failed to encode response: %v", err)
	}
}

// HandleBuild handles POST /api/report/build
func HandleBuild(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"status": "error", "message": "Method not allowed"})
		return
	}

	var req BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ReportDir == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": "report_dir is required"})
		return
	}

	opts := baseOptions
	opts.NoCharts = req.NoCharts
	out, err := coreReport.BuildReport(req.ReportDir, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fs.ErrNotExist) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"status": "error", "message": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, BuildResponse{Status: "ok", File: out})
}
