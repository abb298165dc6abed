package financials

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Column names of the XBRL_TO_CSV export.
const (
	ColElementID      = "要素ID"
	ColItemName       = "項目名"
	ColContextID      = "コンテキストID"
	ColRelativePeriod = "相対年度"
	ColScope          = "連結・個別"
	ColPeriodKind     = "期間・時点"
	ColUnitID         = "ユニットID"
	ColUnit           = "単位"
	ColValue          = "値"
)

const byteOrderMark = "\ufeff"

// requiredColumns must be present in the header; a file decoded with the
// wrong encoding fails here rather than producing an empty summary.
var requiredColumns = []string{ColElementID, ColContextID, ColRelativePeriod, ColValue}

// Row is one line item of the export, keyed by the original column names.
type Row map[string]string

func (r Row) ElementID() string      { return r[ColElementID] }
func (r Row) ItemName() string       { return r[ColItemName] }
func (r Row) ContextID() string      { return r[ColContextID] }
func (r Row) RelativePeriod() string { return r[ColRelativePeriod] }
func (r Row) Scope() string          { return r[ColScope] }
func (r Row) PeriodKind() string     { return r[ColPeriodKind] }
func (r Row) UnitID() string         { return r[ColUnitID] }
func (r Row) Unit() string           { return r[ColUnit] }
func (r Row) RawValue() string       { return r[ColValue] }

// ParseCSV reads a UTF-16LE, tab-separated EDINET export. The first record is
// the header; every following record becomes one Row in file order.
func ParseCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return parseRows(f)
}

func parseRows(r io.Reader) ([]Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("export is not UTF-16: odd byte length %d", len(raw))
	}

	decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	text, err := decoder.Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode UTF-16LE: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = '\t'
	reader.FieldsPerRecord = 0 // locked to the header width

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("export is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], byteOrderMark)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	rows := make([]Row, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed export: %w", err)
		}

		row := make(Row, len(header))
		for i, name := range header {
			row[name] = record[i]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func checkHeader(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, col := range requiredColumns {
		if !present[col] {
			return fmt.Errorf("header is missing column %q", col)
		}
	}
	return nil
}
