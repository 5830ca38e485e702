package services

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"iss-report/internal/catalog"
	"iss-report/internal/models"
	"iss-report/internal/repositories"
	"iss-report/internal/workbook"
)

// September 2026
var testPeriod = models.PreviousMonth(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))

type fixture struct {
	root      string
	ledgerDir string
	boDir     string
	rateFile  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	fx := &fixture{
		root:      root,
		ledgerDir: filepath.Join(root, "BAL_SHEET"),
		boDir:     filepath.Join(root, "RAW_BO"),
	}
	fx.rateFile = filepath.Join(fx.boDir, "Ex-Rate.xlsx")
	require.NoError(t, os.MkdirAll(fx.ledgerDir, 0o755))
	require.NoError(t, os.MkdirAll(fx.boDir, 0o755))
	return fx
}

func (fx *fixture) sources() Sources {
	return Sources{
		Ledgers:   repositories.NewLedgerRepository(fx.ledgerDir),
		BO:        repositories.NewBORepository(fx.boDir, fx.rateFile),
		Rates:     repositories.NewRateRepository(fx.rateFile, catalog.LocalCurrency),
		Writer:    workbook.NewWriter(),
		OutputDir: filepath.Join(fx.root, "out"),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

type balance struct {
	gl    int64
	total string
}

// writeLedger writes an HTML balance sheet export with header and footer tables.
func (fx *fixture) writeLedger(t *testing.T, name string, balances ...balance) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("<html><body><table><tr><td>Balance Sheet</td></tr></table><table>")
	sb.WriteString("<tr><th>Level</th><th>Leaf</th><th>GL Code</th><th>GL Description</th><th>FCY Balance</th><th>LCY Balance</th><th>Total</th></tr>")
	for _, b := range balances {
		fmt.Fprintf(&sb, "<tr><td>4</td><td>Y</td><td>%d</td><td>GL %d</td><td>0</td><td>%s</td><td>%s</td></tr>", b.gl, b.gl, b.total, b.total)
	}
	sb.WriteString("</table><table><tr><td>End of report</td></tr></table></body></html>")
	require.NoError(t, os.WriteFile(filepath.Join(fx.ledgerDir, name), []byte(sb.String()), 0o644))
}

// writeExtract writes a back-office workbook with the header on headerRow.
func (fx *fixture) writeExtract(t *testing.T, name, sheet string, headerRow int, header []any, rows ...[]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	if headerRow > 1 {
		require.NoError(t, f.SetCellStr(sheet, "A1", "Back office extract"))
	}
	all := append([][]any{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, headerRow+i)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(filepath.Join(fx.boDir, name)))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// readReport returns the consolidated sheet keyed by label, each row keyed by header.
func readReport(t *testing.T, path string) ([]string, map[string]map[string]string) {
	t.Helper()
	rows, err := workbook.ReadRows(path, workbook.ConsolidatedSheetName)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	header := rows[0]
	byLabel := make(map[string]map[string]string)
	for _, row := range rows[1:] {
		values := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				values[h] = row[i]
			}
		}
		byLabel[row[0]] = values
	}
	return header, byLabel
}
