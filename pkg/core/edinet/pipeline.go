package edinet

import (
	"context"
	"fmt"
	"path/filepath"

	"corporate_reports/pkg/core/financials"
)

// FetchFinancialData downloads the CSV bundle of docID into workDir/docID,
// unpacks it and extracts the indicator summary.
func (c *Client) FetchFinancialData(ctx context.Context, docID, workDir string) (*financials.Result, error) {
	docDir := filepath.Join(workDir, docID)
	zipPath := filepath.Join(docDir, docID+".zip")

	if _, err := c.DownloadDocument(ctx, docID, DocTypeCSV, zipPath); err != nil {
		return nil, err
	}
	if _, err := ExtractArchive(zipPath, docDir); err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", docID, err)
	}

	return financials.ExtractFinancialData(docDir)
}
