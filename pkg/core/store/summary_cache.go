package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"corporate_reports/pkg/core/financials"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SummaryCache stores extracted financial summaries keyed by EDINET document id.
// Hybrid: DB (primary) + file system (fallback/local).
type SummaryCache struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewSummaryCache creates a cache. With a nil pool it is file-only; if dir is
// also empty it defaults to .cache/edinet/summaries.
func NewSummaryCache(pool *pgxpool.Pool, dir string) *SummaryCache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "edinet", "summaries")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("[WARNING] SummaryCache dir: %v", err)
		}
	}
	return &SummaryCache{pool: pool, fileDir: dir}
}

// CacheEntry is one cached extraction.
type CacheEntry struct {
	ID          uuid.UUID          `json:"id"`
	DocID       string             `json:"doc_id"`
	SecCode     string             `json:"sec_code,omitempty"`
	FilerName   string             `json:"filer_name,omitempty"`
	Source      string             `json:"source"`
	Summary     financials.Summary `json:"summary"`
	ExtractedAt time.Time          `json:"extracted_at"`
}

// NewCacheEntry wraps an extraction result for docID.
func NewCacheEntry(docID string, result *financials.Result) *CacheEntry {
	return &CacheEntry{
		ID:          uuid.New(),
		DocID:       docID,
		Source:      result.Source,
		Summary:     result.Summary,
		ExtractedAt: time.Now().UTC(),
	}
}

// Result converts the entry back to the extractor's output shape.
func (e *CacheEntry) Result() *financials.Result {
	return &financials.Result{Source: e.Source, Summary: e.Summary}
}

// Get returns the entry for docID, or nil on a cache miss.
func (c *SummaryCache) Get(ctx context.Context, docID string) (*CacheEntry, error) {
	if c.pool != nil {
		query := `
			SELECT id, doc_id, COALESCE(sec_code, ''), COALESCE(filer_name, ''), source, summary, extracted_at
			FROM edinet_summaries
			WHERE doc_id = $1
		`
		var entry CacheEntry
		var summaryJSON []byte
		err := c.pool.QueryRow(ctx, query, docID).Scan(
			&entry.ID, &entry.DocID, &entry.SecCode, &entry.FilerName, &entry.Source, &summaryJSON, &entry.ExtractedAt,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query summary cache: %w", err)
		}
		if err := json.Unmarshal(summaryJSON, &entry.Summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal db cached summary: %w", err)
		}
		return &entry, nil
	}

	if c.fileDir != "" {
		return c.loadEntry(c.entryPath(docID))
	}
	return nil, nil
}

// Save stores entry in the database and, when configured, the file cache.
// A zero ID or timestamp is filled in.
func (c *SummaryCache) Save(ctx context.Context, entry *CacheEntry) error {
	if entry.DocID == "" {
		return fmt.Errorf("cache entry has no doc id")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.ExtractedAt.IsZero() {
		entry.ExtractedAt = time.Now().UTC()
	}

	if c.pool != nil {
		summaryJSON, err := json.Marshal(entry.Summary)
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		query := `
			INSERT INTO edinet_summaries (id, doc_id, sec_code, filer_name, source, summary, extracted_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (doc_id)
			DO UPDATE SET
				sec_code = EXCLUDED.sec_code,
				filer_name = EXCLUDED.filer_name,
				source = EXCLUDED.source,
				summary = EXCLUDED.summary,
				extracted_at = EXCLUDED.extracted_at,
				updated_at = NOW()
		`
		_, err = c.pool.Exec(ctx, query,
			entry.ID, entry.DocID, entry.SecCode, entry.FilerName, entry.Source, summaryJSON, entry.ExtractedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save to db cache: %w", err)
		}
	}

	if c.fileDir != "" {
		fileBytes, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal cache entry: %w", err)
		}
		if err := os.WriteFile(c.entryPath(entry.DocID), fileBytes, 0644); err != nil {
			return fmt.Errorf("failed to save to file cache: %w", err)
		}
	}

	log.Printf("[Cache] saved %s (%s)", entry.DocID, entry.ID)
	return nil
}

// Exists checks if a document is already cached.
func (c *SummaryCache) Exists(ctx context.Context, docID string) bool {
	if c.pool != nil {
		var exists int
		err := c.pool.QueryRow(ctx, `SELECT 1 FROM edinet_summaries WHERE doc_id = $1`, docID).Scan(&exists)
		if err == nil {
			return true
		}
	}

	if c.fileDir != "" {
		if _, err := os.Stat(c.entryPath(docID)); err == nil {
			return true
		}
	}
	return false
}

// Internal File Helpers

func (c *SummaryCache) entryPath(docID string) string {
	return filepath.Join(c.fileDir, filepath.Base(docID)+".json")
}

func (c *SummaryCache) loadEntry(path string) (*CacheEntry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("corrupt cache file %s: %w", path, err)
	}
	return &entry, nil
}
