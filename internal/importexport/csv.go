package importexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hucha-app/hucha/internal/core/domain"
)

// Transactions are exchanged as CSV keyed by category and tag codes rather
// than internal ids, so a file exported on one device can be imported on
// another whose ids differ. Tag codes within a cell are joined with '|'.
var csvHeader = []string{"id", "date", "amount", "categoryCode", "tagCodes", "description", "isPinned"}

const (
	bom     = "\uFEFF"
	sepHint = "sep=,"
)

// ExportTransactionsCSV writes all transactions. The byte-order mark and the
// sep= hint keep spreadsheet applications from mangling the file.
func ExportTransactionsCSV(w io.Writer, snap domain.Snapshot) error {
	if _, err := io.WriteString(w, bom+sepHint+"\r\n"); err != nil {
		return fmt.Errorf("failed to write csv preamble: %w", err)
	}

	codeByCategory := make(map[string]string, len(snap.Categories))
	for _, c := range snap.Categories {
		codeByCategory[c.ID] = c.Code
	}
	codeByTag := make(map[string]string, len(snap.Tags))
	for _, t := range snap.Tags {
		codeByTag[t.ID] = t.Code
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, t := range snap.Transactions {
		tagCodes := make([]string, 0, len(t.TagIDs))
		for _, id := range t.TagIDs {
			if code, ok := codeByTag[id]; ok && code != "" {
				tagCodes = append(tagCodes, code)
			}
		}
		pinned := "0"
		if t.IsPinned {
			pinned = "1"
		}
		record := []string{
			t.ID,
			t.Date,
			t.Amount.String(),
			codeByCategory[t.CategoryID],
			strings.Join(tagCodes, "|"),
			t.Description,
			pinned,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// CSVImportResult reports what an import produced. Rows whose amount could
// not be parsed are counted rather than failing the whole file.
type CSVImportResult struct {
	Transactions []domain.Transaction
	Skipped      int
}

// ImportTransactionsCSV parses a file previously produced by
// ExportTransactionsCSV (or a hand-edited copy). Category and tag codes are
// matched case-insensitively against the given snapshot; unknown codes leave
// the reference empty. Ids present in the file are preserved so re-importing
// an export replaces rather than duplicates.
func ImportTransactionsCSV(r io.Reader, snap domain.Snapshot) (CSVImportResult, error) {
	categoryByCode := make(map[string]string, len(snap.Categories))
	for _, c := range snap.Categories {
		if c.Code != "" {
			categoryByCode[strings.ToUpper(c.Code)] = c.ID
		}
	}
	tagByCode := make(map[string]string, len(snap.Tags))
	for _, t := range snap.Tags {
		if t.Code != "" {
			tagByCode[strings.ToUpper(t.Code)] = t.ID
		}
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	result := CSVImportResult{Transactions: []domain.Transaction{}}
	sawHeader := false
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return CSVImportResult{}, fmt.Errorf("failed to read csv: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		record[0] = strings.TrimPrefix(record[0], bom)
		if strings.HasPrefix(record[0], "sep=") {
			continue
		}
		if !sawHeader {
			sawHeader = true
			if strings.EqualFold(record[0], "id") {
				continue
			}
		}
		if len(record) < 7 {
			result.Skipped++
			continue
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil {
			result.Skipped++
			continue
		}

		t := domain.Transaction{
			ID:          strings.TrimSpace(record[0]),
			Date:        strings.TrimSpace(record[1]),
			Amount:      amount,
			Description: record[5],
			TagIDs:      []string{},
			IsPinned:    parsePinned(record[6]),
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if id, ok := categoryByCode[strings.ToUpper(strings.TrimSpace(record[3]))]; ok {
			t.CategoryID = id
		}
		for _, code := range strings.Split(record[4], "|") {
			code = strings.ToUpper(strings.TrimSpace(code))
			if code == "" {
				continue
			}
			if id, ok := tagByCode[code]; ok {
				t.TagIDs = append(t.TagIDs, id)
			}
		}

		result.Transactions = append(result.Transactions, t)
	}

	return result, nil
}

// parsePinned accepts both the numeric marker this codec writes and the
// spelled-out form hand-edited files tend to use.
func parsePinned(field string) bool {
	field = strings.TrimSpace(field)
	return field == "1" || strings.EqualFold(field, "true")
}
