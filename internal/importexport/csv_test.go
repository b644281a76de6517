package importexport_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hucha-app/hucha/internal/core/domain"
	"github.com/hucha-app/hucha/internal/importexport"
)

func csvSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Transactions: []domain.Transaction{
			{ID: "t1", Date: "2024-01-10", Amount: decimal.RequireFromString("-99.95"), CategoryID: "c1", TagIDs: []string{"g1", "g2"}, Description: "fontanero, 2 horas", IsPinned: true},
			{ID: "t2", Date: "2024-01-11", Amount: decimal.NewFromInt(1200), TagIDs: []string{}},
		},
		Categories: []domain.Category{{ID: "c1", Code: "CONS", Name: "Construcción"}},
		Tags: []domain.Tag{
			{ID: "g1", Code: "IMP", Name: "Impuestos"},
			{ID: "g2", Code: "DOC", Name: "Documentos"},
		},
		Settings: domain.DefaultSettings(),
	}
}

func TestExportTransactionsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, importexport.ExportTransactionsCSV(&buf, csvSnapshot()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\uFEFFsep=,\r\n"), "missing BOM or sep hint")

	lines := strings.Split(strings.TrimRight(out, "\r\n"), "\r\n")
	require.Len(t, lines, 4) // sep hint, header, two rows
	assert.Equal(t, "id,date,amount,categoryCode,tagCodes,description,isPinned", lines[1])
	assert.Equal(t, `t1,2024-01-10,-99.95,CONS,IMP|DOC,"fontanero, 2 horas",1`, lines[2])
	assert.Equal(t, "t2,2024-01-11,1200,,,,0", lines[3])
}

func TestImportTransactionsCSV_RoundTrip(t *testing.T) {
	snap := csvSnapshot()
	var buf bytes.Buffer
	require.NoError(t, importexport.ExportTransactionsCSV(&buf, snap))

	result, err := importexport.ImportTransactionsCSV(&buf, snap)
	require.NoError(t, err)
	assert.Zero(t, result.Skipped)
	require.Len(t, result.Transactions, 2)

	got := result.Transactions[0]
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, "2024-01-10", got.Date)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("-99.95")))
	assert.Equal(t, "c1", got.CategoryID)
	assert.Equal(t, []string{"g1", "g2"}, got.TagIDs)
	assert.Equal(t, "fontanero, 2 horas", got.Description)
	assert.True(t, got.IsPinned)

	assert.Empty(t, result.Transactions[1].CategoryID)
	assert.Empty(t, result.Transactions[1].TagIDs)
}

func TestImportTransactionsCSV_PinnedMarkerForms(t *testing.T) {
	input := "id,date,amount,categoryCode,tagCodes,description,isPinned\r\n" +
		"a1,2024-01-01,-5,,,numeric,1\r\n" +
		"a2,2024-01-02,-5,,,spelled out,TRUE\r\n" +
		"a3,2024-01-03,-5,,,unpinned,0\r\n" +
		"a4,2024-01-04,-5,,,blank,\r\n"

	result, err := importexport.ImportTransactionsCSV(strings.NewReader(input), csvSnapshot())
	require.NoError(t, err)
	require.Len(t, result.Transactions, 4)
	assert.True(t, result.Transactions[0].IsPinned)
	assert.True(t, result.Transactions[1].IsPinned)
	assert.False(t, result.Transactions[2].IsPinned)
	assert.False(t, result.Transactions[3].IsPinned)
}

func TestImportTransactionsCSV_SkipsUnparsableAmounts(t *testing.T) {
	input := "\uFEFFsep=,\r\n" +
		"id,date,amount,categoryCode,tagCodes,description,isPinned\r\n" +
		"a1,2024-01-01,not-a-number,,,broken,\r\n" +
		"a2,2024-01-02,-5,,,fine,\r\n"

	result, err := importexport.ImportTransactionsCSV(strings.NewReader(input), csvSnapshot())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "a2", result.Transactions[0].ID)
}

func TestImportTransactionsCSV_UnknownCodesLeftEmpty(t *testing.T) {
	input := "id,date,amount,categoryCode,tagCodes,description,isPinned\r\n" +
		"a1,2024-01-01,-5,NOPE,GHOST|IMP,,\r\n"

	result, err := importexport.ImportTransactionsCSV(strings.NewReader(input), csvSnapshot())
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)

	got := result.Transactions[0]
	assert.Empty(t, got.CategoryID)
	assert.Equal(t, []string{"g1"}, got.TagIDs)
}

func TestImportTransactionsCSV_CodesMatchCaseInsensitively(t *testing.T) {
	input := "id,date,amount,categoryCode,tagCodes,description,isPinned\r\n" +
		"a1,2024-01-01,-5,cons,imp,,\r\n"

	result, err := importexport.ImportTransactionsCSV(strings.NewReader(input), csvSnapshot())
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "c1", result.Transactions[0].CategoryID)
	assert.Equal(t, []string{"g1"}, result.Transactions[0].TagIDs)
}

func TestImportTransactionsCSV_GeneratesIDWhenMissing(t *testing.T) {
	input := "id,date,amount,categoryCode,tagCodes,description,isPinned\r\n" +
		",2024-01-01,-5,,,,\r\n"

	result, err := importexport.ImportTransactionsCSV(strings.NewReader(input), csvSnapshot())
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.NotEmpty(t, result.Transactions[0].ID)
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	snap := csvSnapshot()
	var buf bytes.Buffer
	require.NoError(t, importexport.ExportSnapshotJSON(&buf, snap))

	imp, err := importexport.ImportSnapshotJSON(&buf)
	require.NoError(t, err)
	require.NotNil(t, imp.Transactions)
	require.NotNil(t, imp.Categories)
	assert.Len(t, *imp.Transactions, 2)
	assert.Len(t, *imp.Categories, 1)
	require.NotNil(t, imp.Settings)
}

func TestImportSnapshotJSON_PartialDocument(t *testing.T) {
	imp, err := importexport.ImportSnapshotJSON(strings.NewReader(`{"tags":[{"id":"g9","name":"Nueva"}]}`))
	require.NoError(t, err)

	require.NotNil(t, imp.Tags)
	assert.Len(t, *imp.Tags, 1)
	assert.Nil(t, imp.Transactions)
	assert.Nil(t, imp.Categories)
	assert.Nil(t, imp.Settings)
	assert.Nil(t, imp.Todos)
}
