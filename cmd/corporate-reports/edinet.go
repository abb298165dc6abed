package main

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"corporate_reports/pkg/core/edinet"
	"corporate_reports/pkg/core/export"
	"corporate_reports/pkg/core/financials"
	"corporate_reports/pkg/core/store"
)

var edinetCmd = &cobra.Command{
	Use:   "edinet",
	Short: "Search, download and extract EDINET filings",
}

func init() {
	edinetCmd.AddCommand(searchCmd, downloadCmd, extractCmd, extractBatchCmd, fetchCmd)

	searchCmd.Flags().String("date", "", "submission date (YYYY-MM-DD)")
	searchCmd.Flags().String("to", "", "search every day from --date to this date (YYYY-MM-DD)")
	searchCmd.Flags().String("sec-code", "", "securities code (4 or 5 digits)")
	searchCmd.Flags().String("ordinance-code", "", "ordinance code (e.g. 010)")
	searchCmd.Flags().String("form-code", "", "form code (e.g. 030000)")
	searchCmd.MarkFlagRequired("date")

	downloadCmd.Flags().String("doc-id", "", "document id (docID)")
	downloadCmd.Flags().String("type", "", "1=XBRL zip, 2=PDF, 3=alternative PDF, 4=English, 5=CSV zip")
	downloadCmd.Flags().String("output", "", "output file path")
	downloadCmd.Flags().String("extract", "", "unpack a zip download into this directory")
	downloadCmd.MarkFlagRequired("doc-id")
	downloadCmd.MarkFlagRequired("type")
	downloadCmd.MarkFlagRequired("output")

	extractCmd.Flags().String("csv-dir", "", "directory holding the XBRL_TO_CSV export")
	extractCmd.Flags().String("output", "", "write the JSON summary to this file instead of stdout")
	extractCmd.Flags().String("xlsx", "", "also write the summary to this .xlsx file")
	extractCmd.MarkFlagRequired("csv-dir")

	extractBatchCmd.Flags().Int("concurrency", 0, "parallel extractions (default from config)")
	extractBatchCmd.Flags().String("xlsx", "", "also write all summaries to this .xlsx file")

	fetchCmd.Flags().String("doc-id", "", "document id (docID)")
	fetchCmd.Flags().String("work-dir", filepath.Join("data", "edinet"), "download and unpack under this directory")
	fetchCmd.Flags().Bool("save", false, "store the summary in the cache")
	fetchCmd.Flags().Bool("refresh", false, "ignore a cached summary")
	fetchCmd.MarkFlagRequired("doc-id")
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search documents submitted on a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		to, _ := cmd.Flags().GetString("to")
		secCode, _ := cmd.Flags().GetString("sec-code")
		ordinance, _ := cmd.Flags().GetString("ordinance-code")
		form, _ := cmd.Flags().GetString("form-code")

		client, err := newClient()
		if err != nil {
			return err
		}
		params := edinet.SearchParams{Date: date, SecCode: secCode, OrdinanceCode: ordinance, FormCode: form}

		var docs []edinet.Document
		if to == "" {
			docs, err = client.SearchDocuments(cmd.Context(), params)
		} else {
			from, perr := time.Parse("2006-01-02", date)
			if perr != nil {
				return fmt.Errorf("invalid --date: %w", perr)
			}
			end, perr := time.Parse("2006-01-02", to)
			if perr != nil {
				return fmt.Errorf("invalid --to: %w", perr)
			}
			docs, err = client.SearchRange(cmd.Context(), from, end, params)
		}
		if err != nil {
			return err
		}
		if docs == nil {
			docs = []edinet.Document{}
		}
		return printJSON(cmd.OutOrStdout(), docs)
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download a document",
	RunE: func(cmd *cobra.Command, args []string) error {
		docID, _ := cmd.Flags().GetString("doc-id")
		typeFlag, _ := cmd.Flags().GetString("type")
		output, _ := cmd.Flags().GetString("output")
		extractDir, _ := cmd.Flags().GetString("extract")

		docType, err := edinet.ParseDocType(typeFlag)
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}

		path, err := client.DownloadDocument(cmd.Context(), docID, docType, output)
		if err != nil {
			return err
		}

		resp := map[string]interface{}{"status": "success", "file": path}
		if extractDir != "" {
			if !docType.IsArchive() {
				return fmt.Errorf("--extract needs a zip download (type 1, 4 or 5), got type %s", docType)
			}
			files, err := edinet.ExtractArchive(path, extractDir)
			if err != nil {
				return err
			}
			resp["extracted"] = files
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the financial summary from an unpacked CSV bundle",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("csv-dir")
		output, _ := cmd.Flags().GetString("output")
		xlsx, _ := cmd.Flags().GetString("xlsx")

		result, err := financials.ExtractFinancialData(dir)
		if err != nil {
			return err
		}
		if xlsx != "" {
			if err := export.WriteSummaryXLSX(xlsx, []*financials.Result{result}); err != nil {
				return err
			}
		}
		if output != "" {
			return writeJSONFile(output, result)
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

var extractBatchCmd = &cobra.Command{
	Use:   "extract-batch [dir...]",
	Short: "Extract summaries from several unpacked bundles in parallel",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		xlsx, _ := cmd.Flags().GetString("xlsx")
		if concurrency <= 0 {
			concurrency = cfg.Extract.Concurrency
		}

		results, err := financials.ExtractAll(cmd.Context(), args, concurrency)
		if err != nil {
			return err
		}
		if xlsx != "" {
			if err := export.WriteSummaryXLSX(xlsx, results); err != nil {
				return err
			}
		}
		return printJSON(cmd.OutOrStdout(), results)
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the CSV bundle of a document and extract its summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		docID, _ := cmd.Flags().GetString("doc-id")
		workDir, _ := cmd.Flags().GetString("work-dir")
		save, _ := cmd.Flags().GetBool("save")
		refresh, _ := cmd.Flags().GetBool("refresh")
		ctx := cmd.Context()

		var cache *store.SummaryCache
		if save || !refresh {
			cache = openCache(ctx)
			defer store.Close()
		}

		if cache != nil && !refresh {
			entry, err := cache.Get(ctx, docID)
			if err != nil {
				log.Printf("[WARNING] summary cache read failed for %s: %v", docID, err)
			} else if entry != nil {
				return printJSON(cmd.OutOrStdout(), entry.Result())
			}
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		result, err := client.FetchFinancialData(ctx, docID, workDir)
		if err != nil {
			return err
		}

		if save {
			if err := cache.Save(ctx, store.NewCacheEntry(docID, result)); err != nil {
				return err
			}
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}
