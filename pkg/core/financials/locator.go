package financials

import (
	"fmt"
	"path/filepath"
	"sort"
)

const (
	// AnnualReportPrefix identifies the annual securities report (有価証券報告書)
	// body in an XBRL_TO_CSV bundle.
	AnnualReportPrefix = "jpcrp030000-asr"

	// CSVSubdir is the directory EDINET uses inside the type=5 ZIP.
	CSVSubdir = "XBRL_TO_CSV"
)

// LocateCSV finds the annual report export directly under dir or under
// dir/XBRL_TO_CSV. It does not search any deeper.
func LocateCSV(dir string) (string, error) {
	for _, candidate := range []string{dir, filepath.Join(dir, CSVSubdir)} {
		matches, err := filepath.Glob(filepath.Join(candidate, AnnualReportPrefix+"*.csv"))
		if err != nil {
			return "", &ExtractionError{Kind: ErrKindNotFound, Msg: "invalid search pattern", Err: err}
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			return matches[0], nil
		}
	}

	return "", &ExtractionError{
		Kind: ErrKindNotFound,
		Msg:  fmt.Sprintf("%s*.csv not found in %s or %s/", AnnualReportPrefix, dir, CSVSubdir),
	}
}
