package financials

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

const sampleFilename = "jpcrp030000-asr-001_E01350-000_2024-12-31_01_2025-03-21.csv"

var sampleHeader = []string{
	"\ufeff" + ColElementID, ColItemName, ColContextID, ColRelativePeriod,
	ColScope, ColPeriodKind, ColUnitID, ColUnit, ColValue,
}

func sampleRow(element, context, period, scope, value string) []string {
	return []string{element, "", context, period, scope, "期間", "JPY", "円", value}
}

var sampleRows = [][]string{
	sampleRow("jpcrp_cor:NetSalesSummaryOfBusinessResults", "Prior4YearDuration", "四期前", "その他", "9697800000"),
	sampleRow("jpcrp_cor:NetSalesSummaryOfBusinessResults", "Prior3YearDuration", "三期前", "その他", "10034069000"),
	sampleRow("jpcrp_cor:NetSalesSummaryOfBusinessResults", "Prior2YearDuration", "前々期", "その他", "11167637000"),
	sampleRow("jpcrp_cor:NetSalesSummaryOfBusinessResults", "Prior1YearDuration", "前期", "その他", "12872437000"),
	sampleRow("jpcrp_cor:NetSalesSummaryOfBusinessResults", "CurrentYearDuration", "当期", "その他", "12383109000"),
	sampleRow("jpcrp_cor:OrdinaryIncomeLossSummaryOfBusinessResults", "CurrentYearDuration", "当期", "その他", "1447778000"),
	sampleRow("jpcrp_cor:NetAssetsSummaryOfBusinessResults", "CurrentYearInstant", "当期末", "その他", "17965513000"),
	sampleRow("jpcrp_cor:TotalAssetsSummaryOfBusinessResults", "CurrentYearInstant", "当期末", "その他", "19626496000"),
	sampleRow("jpcrp_cor:NetAssetsPerShareSummaryOfBusinessResults", "CurrentYearInstant", "当期末", "その他", "2635.79"),
	sampleRow("jpcrp_cor:BasicEarningsLossPerShareSummaryOfBusinessResults", "CurrentYearDuration", "当期", "その他", "152.64"),
	sampleRow("jpcrp_cor:RateOfReturnOnEquitySummaryOfBusinessResults", "CurrentYearDuration", "当期", "その他", "0.0594"),
	sampleRow("jpcrp_cor:EquityToAssetRatioSummaryOfBusinessResults", "CurrentYearInstant", "当期末", "その他", "0.915"),
	sampleRow("jpcrp_cor:PriceEarningsRatioSummaryOfBusinessResults", "CurrentYearDuration", "当期", "その他", "16.56"),
	sampleRow("jpcrp_cor:NetCashProvidedByUsedInOperatingActivitiesSummaryOfBusinessResults", "CurrentYearDuration", "当期", "その他", "1633839000"),
	sampleRow("jpcrp_cor:NetCashProvidedByUsedInInvestingActivitiesSummaryOfBusinessResults", "CurrentYearDuration", "当期", "その他", "-420143000"),
	sampleRow("jpcrp_cor:NetCashProvidedByUsedInFinancingActivitiesSummaryOfBusinessResults", "CurrentYearDuration", "当期", "その他", "-421779000"),
	sampleRow("jpcrp_cor:CashAndCashEquivalentsSummaryOfBusinessResults", "CurrentYearInstant", "当期末", "その他", "9791709000"),
	sampleRow("jpcrp_cor:NumberOfEmployees", "CurrentYearInstant", "当期末", "その他", "295"),
	sampleRow("jpcrp_cor:DividendPaidPerShareSummaryOfBusinessResults", "CurrentYearDuration_NonConsolidatedMember", "当期", "個別", "55.00"),
	sampleRow("jpcrp_cor:PayoutRatioSummaryOfBusinessResults", "CurrentYearDuration_NonConsolidatedMember", "当期", "個別", "0.3603"),
	sampleRow("jpcrp_cor:DilutedEarningsPerShareSummaryOfBusinessResults", "CurrentYearDuration", "当期", "その他", "－"),
	sampleRow("jpcrp_cor:SomethingTheExtractorIgnores", "CurrentYearDuration", "当期", "その他", "abc"),
}

// encodeExport renders records as an EDINET-style UTF-16LE TSV.
func encodeExport(t *testing.T, records [][]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'
	w.UseCRLF = true
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("csv write: %v", err)
	}

	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes(buf.Bytes())
	if err != nil {
		t.Fatalf("utf-16 encode: %v", err)
	}
	return encoded
}

func writeExport(t *testing.T, dir string, records [][]string) string {
	t.Helper()

	path := filepath.Join(dir, sampleFilename)
	if err := os.WriteFile(path, encodeExport(t, records), 0644); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return path
}

func writeSampleExport(t *testing.T, dir string) string {
	t.Helper()
	return writeExport(t, dir, append([][]string{sampleHeader}, sampleRows...))
}
