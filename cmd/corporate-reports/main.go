// corporate-reports — EDINET filing search/download, financial summary
// extraction and report page builds.
//
// Main CLI entrypoint using cobra command framework. Results are printed as
// JSON on stdout; failures as {"status":"error","message":...} on stderr.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"corporate_reports/pkg/core/config"
	"corporate_reports/pkg/core/edinet"
	"corporate_reports/pkg/core/store"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

// Global config
var cfg config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "corporate-reports",
	Short:         "EDINET filings to financial summaries and report pages",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnv()

		configFile, _ := cmd.Flags().GetString("config")
		if configFile == "" {
			configFile = config.Path()
		}
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	// Diagnostics go to stderr so stdout stays valid JSON.
	log.SetOutput(os.Stderr)

	rootCmd.PersistentFlags().String("config", "", "config file path (default: "+config.DefaultPath+")")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(edinetCmd)
	rootCmd.AddCommand(reportCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("corporate-reports %s (%s)\n", version, commit)
	},
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeJSONFile writes v to path in the same format printJSON uses,
// creating parent directories.
func writeJSONFile(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := printJSON(f, v); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("[EDINET] wrote %s", path)
	return nil
}

func printError(w io.Writer, err error) {
	printJSON(w, map[string]string{"status": "error", "message": err.Error()})
}

func newClient() (*edinet.Client, error) {
	return edinet.NewClient(cfg.EDINET.ClientConfig())
}

// openCache returns a summary cache backed by PostgreSQL when DATABASE_URL is
// set and reachable, otherwise by files under the configured cache dir.
func openCache(ctx context.Context) *store.SummaryCache {
	if cfg.DatabaseURL != "" {
		if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
			log.Printf("[WARNING] database unavailable, using file cache: %v", err)
		}
	}
	return store.NewSummaryCache(store.GetPool(), cfg.Cache.Dir)
}
