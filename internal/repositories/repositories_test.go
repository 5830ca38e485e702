package repositories

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"iss-report/internal/models"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

func TestLedgerRepository(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"BALSHEET_30092026.html",
		"BALSHEETBRN_001_30092026.html",
		"BALSHEETBRN_101_30092026.htm",
		"notes_102.txt",
		"old_102.html",
	)
	repo := NewLedgerRepository(dir)

	path, err := repo.BranchLedgerPath("101")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "BALSHEETBRN_101_30092026.htm"), path)

	path, err = repo.BranchLedgerPath("001")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "BALSHEETBRN_001_30092026.html"), path)

	path, err = repo.BranchLedgerPath("102")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "old_102.html"), path)

	_, err = repo.BranchLedgerPath("999")
	var missing *models.MissingSourceError
	require.True(t, errors.As(err, &missing))
	require.Contains(t, missing.Error(), "999")

	path, err = repo.ConsolidatedLedgerPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "BALSHEET_30092026.html"), path)
}

func TestLedgerRepositoryMissingDirectory(t *testing.T) {
	_, err := NewLedgerRepository(filepath.Join(t.TempDir(), "nope")).ConsolidatedLedgerPath()
	var missing *models.MissingSourceError
	require.True(t, errors.As(err, &missing))
}

func TestBORepositoryFind(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"508 Bills Report.xlsx",
		"ACCEPTANCE MAUTURED.xls",
		"~$508 Bills Report.xlsx",
		"Same Month Adjusted.xlsx",
		"Ex-Rate.xlsx",
		"603R bills notes.txt",
	)
	repo := NewBORepository(dir, filepath.Join(dir, "Ex-Rate.xlsx"))

	path, err := repo.Find(KeywordBills...)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "508 Bills Report.xlsx"), path)

	path, err = repo.Find(KeywordMatured...)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "ACCEPTANCE MAUTURED.xls"), path)

	path, err = repo.Find(KeywordSameMonth...)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "Same Month Adjusted.xlsx"), path)

	_, err = repo.Find("rate")
	require.Error(t, err)

	_, err = repo.Find(Keyword603R...)
	var missing *models.MissingSourceError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, "*603r*", missing.Pattern)
}

func TestRateRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Ex-Rate.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Ccy", "Ex. Rate"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"usd", 110.25}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"EUR", 120}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rates, err := NewRateRepository(path, "BDT").Rates()
	require.NoError(t, err)
	require.Equal(t, "110.25", rates["USD"].String())
	require.Equal(t, "120", rates["EUR"].String())
	require.Equal(t, "1", rates["BDT"].String())
}

func TestRateRepositoryMissingFile(t *testing.T) {
	_, err := NewRateRepository(filepath.Join(t.TempDir(), "Ex-Rate.xlsx"), "BDT").Rates()
	var missing *models.MissingSourceError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, "Ex-Rate.xlsx", missing.Pattern)
}
