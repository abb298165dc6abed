package edinet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Ordinance and form codes commonly used as search filters.
const (
	OrdinanceCorporateDisclosure = "010" // 企業内容等の開示に関する内閣府令
	FormAnnualSecuritiesReport   = "030000"
	FormQuarterlyReport          = "043000"
)

// Document is one entry of the documents.json result list. Field names follow
// the API so the JSON can be passed through unchanged.
type Document struct {
	SeqNumber            int    `json:"seqNumber"`
	DocID                string `json:"docID"`
	EdinetCode           string `json:"edinetCode"`
	SecCode              string `json:"secCode"`
	JCN                  string `json:"JCN"`
	FilerName            string `json:"filerName"`
	FundCode             string `json:"fundCode"`
	OrdinanceCode        string `json:"ordinanceCode"`
	FormCode             string `json:"formCode"`
	DocTypeCode          string `json:"docTypeCode"`
	PeriodStart          string `json:"periodStart"`
	PeriodEnd            string `json:"periodEnd"`
	SubmitDateTime       string `json:"submitDateTime"`
	DocDescription       string `json:"docDescription"`
	IssuerEdinetCode     string `json:"issuerEdinetCode"`
	SubjectEdinetCode    string `json:"subjectEdinetCode"`
	SubsidiaryEdinetCode string `json:"subsidiaryEdinetCode"`
	CurrentReportReason  string `json:"currentReportReason"`
	ParentDocID          string `json:"parentDocID"`
	OpeDateTime          string `json:"opeDateTime"`
	WithdrawalStatus     string `json:"withdrawalStatus"`
	DocInfoEditStatus    string `json:"docInfoEditStatus"`
	DisclosureStatus     string `json:"disclosureStatus"`
	XBRLFlag             string `json:"xbrlFlag"`
	PDFFlag              string `json:"pdfFlag"`
	AttachDocFlag        string `json:"attachDocFlag"`
	EnglishDocFlag       string `json:"englishDocFlag"`
	CSVFlag              string `json:"csvFlag"`
	LegalStatus          string `json:"legalStatus"`
}

// HasCSV reports whether the structured CSV bundle (type 5) can be downloaded.
func (d Document) HasCSV() bool { return d.CSVFlag == "1" }

type documentsResponse struct {
	Metadata struct {
		Title     string `json:"title"`
		Status    string `json:"status"`
		Message   string `json:"message"`
		ResultSet struct {
			Count int `json:"count"`
		} `json:"resultset"`
	} `json:"metadata"`
	Results []Document `json:"results"`
}

// SearchParams selects documents submitted on one day.
type SearchParams struct {
	Date          string // YYYY-MM-DD
	SecCode       string // 4 or 5 digit securities code
	OrdinanceCode string
	FormCode      string
}

// SearchDocuments calls the document list API (type=2: metadata and list) and
// filters the results locally.
func (c *Client) SearchDocuments(ctx context.Context, params SearchParams) ([]Document, error) {
	if _, err := time.Parse("2006-01-02", params.Date); err != nil {
		return nil, &APIError{Msg: fmt.Sprintf("invalid date %q (want YYYY-MM-DD)", params.Date), Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.searchTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("date", params.Date)
	q.Set("type", "2")

	resp, err := c.get(ctx, "/documents.json", q)
	if err != nil {
		return nil, &APIError{Msg: "API request failed", Err: err}
	}
	defer resp.Body.Close()

	var data documentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &APIError{Msg: "failed to parse EDINET response", Err: err}
	}
	if data.Metadata.Status != "200" {
		return nil, &APIError{Msg: fmt.Sprintf("API returned status: %s %s", data.Metadata.Status, data.Metadata.Message)}
	}

	return FilterDocuments(data.Results, params), nil
}

// FilterDocuments applies the securities code, ordinance code and form code
// filters. EDINET stores 5-digit securities codes (a 4-digit code plus a
// trailing 0), so codes are compared on their first four characters.
func FilterDocuments(docs []Document, params SearchParams) []Document {
	secPrefix := params.SecCode
	if len(secPrefix) > 4 {
		secPrefix = secPrefix[:4]
	}

	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if secPrefix != "" && (len(d.SecCode) < 4 || d.SecCode[:4] != secPrefix) {
			continue
		}
		if params.OrdinanceCode != "" && d.OrdinanceCode != params.OrdinanceCode {
			continue
		}
		if params.FormCode != "" && d.FormCode != params.FormCode {
			continue
		}
		out = append(out, d)
	}
	return out
}

// SearchRange searches every day from from to to (inclusive) and concatenates
// the results in date order.
func (c *Client) SearchRange(ctx context.Context, from, to time.Time, params SearchParams) ([]Document, error) {
	if to.Before(from) {
		return nil, &APIError{Msg: fmt.Sprintf("range end %s is before start %s", to.Format("2006-01-02"), from.Format("2006-01-02"))}
	}

	var all []Document
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		p := params
		p.Date = day.Format("2006-01-02")
		docs, err := c.SearchDocuments(ctx, p)
		if err != nil {
			return nil, err
		}
		if len(docs) > 0 {
			log.Printf("[EDINET] %s: %d documents", p.Date, len(docs))
		}
		all = append(all, docs...)
	}
	return all, nil
}

// DocType selects the representation returned by the document API.
type DocType string

const (
	DocTypeXBRL        DocType = "1" // ZIP: XBRL, PDF and audit report
	DocTypePDF         DocType = "2" // submitted PDF
	DocTypeAltPDF      DocType = "3" // substitute / English PDF
	DocTypeEnglishFile DocType = "4" // English documents
	DocTypeCSV         DocType = "5" // ZIP: XBRL_TO_CSV structured data
)

// ParseDocType validates a type given on the command line or in a request.
func ParseDocType(s string) (DocType, error) {
	switch t := DocType(s); t {
	case DocTypeXBRL, DocTypePDF, DocTypeAltPDF, DocTypeEnglishFile, DocTypeCSV:
		return t, nil
	}
	return "", fmt.Errorf("unknown document type %q (want 1, 2, 3, 4 or 5)", s)
}

// IsArchive reports whether the document API returns a ZIP for this type.
func (t DocType) IsArchive() bool {
	return t == DocTypeXBRL || t == DocTypeEnglishFile || t == DocTypeCSV
}

// DownloadDocument fetches docID in the given representation and streams it
// to outputPath, creating parent directories. It returns outputPath.
func (c *Client) DownloadDocument(ctx context.Context, docID string, docType DocType, outputPath string) (string, error) {
	if strings.TrimSpace(docID) == "" {
		return "", &APIError{Msg: "document id is required"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("type", string(docType))

	resp, err := c.get(ctx, "/documents/"+url.PathEscape(docID), q)
	if err != nil {
		return "", &APIError{Msg: "Download failed", Err: err}
	}
	defer resp.Body.Close()

	// A rejected download is answered with 200 and a JSON error body.
	if mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mediaType == "application/json" {
		var envelope errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return "", &APIError{Msg: "Download failed: unexpected JSON response", Err: err}
		}
		return "", &APIError{Msg: "Download failed: " + envelope.String()}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", &APIError{Msg: "failed to create output directory", Err: err}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return "", &APIError{Msg: "failed to create output file", Err: err}
	}
	n, err := io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outputPath)
		return "", &APIError{Msg: "Download failed", Err: err}
	}

	log.Printf("[EDINET] downloaded %s (type %s, %d bytes) -> %s", docID, docType, n, outputPath)
	return outputPath, nil
}
