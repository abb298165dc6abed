package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	apiConfig "corporate_reports/pkg/api/config"
	apiEdinet "corporate_reports/pkg/api/edinet"
	apiReport "corporate_reports/pkg/api/report"
	"corporate_reports/pkg/core/config"
	"corporate_reports/pkg/core/edinet"
	"corporate_reports/pkg/core/store"
)

func main() {
	// Load environment variables
	config.LoadEnv()

	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}

	// EDINET client; without an API key only local extraction is served.
	client, err := edinet.NewClient(cfg.EDINET.ClientConfig())
	if err != nil {
		fmt.Printf("[WARNING] %v\n", err)
		fmt.Println("  EDINET search and fetch endpoints will return 503")
		client = nil
	}

	// Summary cache: DB (primary) if DATABASE_URL is set, else files.
	ctx := context.Background()
	if cfg.DatabaseURL != "" {
		if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
			log.Printf("[WARNING] database unavailable, using file cache: %v", err)
		} else {
			defer store.Close()
		}
	}
	cache := store.NewSummaryCache(store.GetPool(), cfg.Cache.Dir)

	// Config endpoint
	configHandler := apiConfig.NewHandler(cfg)
	http.HandleFunc("/api/config", configHandler.HandleConfig)

	apiEdinet.InitHandler(client, cache, "")
	http.HandleFunc("/api/edinet/search", apiEdinet.HandleSearch)
	http.HandleFunc("/api/edinet/extract", apiEdinet.HandleExtract)
	http.HandleFunc("/api/edinet/fetch", apiEdinet.HandleFetch)

	apiReport.InitHandler(cfg.Report.Options(false))
	http.HandleFunc("/api/report/build", apiReport.HandleBuild)

	fmt.Printf("API server starting on %s...\n", cfg.Server.Addr)
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - GET  /api/edinet/search")
	fmt.Println("  - POST /api/edinet/extract")
	fmt.Println("  - POST /api/edinet/fetch")
	fmt.Println("  - POST /api/report/build")

	if err := http.ListenAndServe(cfg.Server.Addr, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
