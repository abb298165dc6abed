// Package financials extracts the "経営指標等" (summary of business results)
// indicators from the XBRL_TO_CSV export bundled with EDINET annual reports.
package financials

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an ExtractionError.
type ErrorKind string

const (
	ErrKindNotFound ErrorKind = "not_found"
	ErrKindParse    ErrorKind = "parse"
	ErrKindValue    ErrorKind = "value"
)

// ExtractionError is the single error type returned by ExtractFinancialData.
type ExtractionError struct {
	Kind ErrorKind
	Path string
	Msg  string
	Err  error
}

func (e *ExtractionError) Error() string {
	msg := e.Msg
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Summary maps period bucket -> indicator name -> value.
type Summary map[string]map[string]Value

// Get returns the value of an indicator in a bucket.
func (s Summary) Get(period, indicator string) (Value, bool) {
	v, ok := s[period][indicator]
	return v, ok
}

// Result is the extraction output.
type Result struct {
	Source  string  `json:"source"`
	Summary Summary `json:"summary"`
}

func newSummary() Summary {
	s := make(Summary, len(PeriodBuckets))
	for _, p := range PeriodBuckets {
		s[p] = make(map[string]Value)
	}
	return s
}

// ExtractFinancialData locates the annual report export under dir, parses it
// and returns the indicator summary together with the file it came from.
func ExtractFinancialData(dir string) (*Result, error) {
	path, err := LocateCSV(dir)
	if err != nil {
		return nil, err
	}

	rows, err := ParseCSV(path)
	if err != nil {
		return nil, &ExtractionError{Kind: ErrKindParse, Path: path, Msg: "failed to parse export", Err: err}
	}

	summary, err := ExtractSummary(rows)
	if err != nil {
		var ee *ExtractionError
		if errors.As(err, &ee) {
			ee.Path = path
		}
		return nil, err
	}

	return &Result{Source: path, Summary: summary}, nil
}

// ExtractSummary builds the summary from parsed rows. Rows with unknown
// element ids are skipped. When two rows land on the same (bucket, indicator)
// the later one in file order wins.
func ExtractSummary(rows []Row) (Summary, error) {
	summary := newSummary()

	for i, row := range rows {
		def, ok := indicatorTable[row.ElementID()]
		if !ok {
			continue
		}
		bucket, ok := bucketFor(def, row.RelativePeriod())
		if !ok {
			continue
		}
		if !keepForScope(def.Name, row.ContextID()) {
			continue
		}

		v, err := ParseValue(row.RawValue())
		if err != nil {
			return nil, &ExtractionError{
				Kind: ErrKindValue,
				Msg:  fmt.Sprintf("row %d (%s)", i+1, row.ElementID()),
				Err:  err,
			}
		}
		if v == nil {
			// "－" must not erase a value written by an earlier row.
			continue
		}
		summary[bucket][def.Name] = *v
	}

	return summary, nil
}
