package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"iss-report/internal/catalog"
	"iss-report/internal/models"
	"iss-report/internal/reconcile"
	"iss-report/internal/workbook"
)

var sameMonthHeader = []any{"PRODUCT_CODE", "RELATED_ACCOUNT", "LCY_AMOUNT"}

func TestNewRunRequest(t *testing.T) {
	req := NewRunRequest([]string{"001", "002", "003"}, []string{"002", "404"}, testPeriod)
	require.Equal(t, []string{"001", "003"}, req.Branches)
	require.Equal(t, []string{"002", "404"}, req.Excluded)
	require.Equal(t, "September2026", req.Period.Name())
}

func loanFixture(t *testing.T) *fixture {
	fx := newFixture(t)
	fx.writeLedger(t, "BALSHEETBRN_001_30092026.html", balance{150120005, "100"}, balance{150120007, "5"})
	fx.writeLedger(t, "BALSHEETBRN_002_30092026.html", balance{150120005, "200"})
	fx.writeLedger(t, "BALSHEETBRN_003_30092026.html", balance{150120005, "300"}, balance{150820006, "0"})
	fx.writeExtract(t, "Same Month Adjusted.xlsx", "Report1", 3, sameMonthHeader,
		[]any{"L035", "0011234567", 50},
		[]any{"L999", "0011234568", 70},
		[]any{"L041", "0031234567", 25},
		[]any{"L035", "0021234567", 10},
	)
	return fx
}

func TestImportLoanPipeline(t *testing.T) {
	fx := loanFixture(t)
	p := NewImportLoanPipeline(fx.sources())
	req := NewRunRequest([]string{"001", "002", "003"}, []string{"002"}, testPeriod)

	result, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(fx.root, "out", "iss_import_loan", "ISS_Import-Loan_September2026.xlsx"), result.OutputPath)
	// the 002 adjustment belongs to an excluded branch
	require.Len(t, result.Warnings, 1)

	header, rows := readReport(t, result.OutputPath)
	require.Equal(t, []string{"Particulars", "001", "002", "003", models.TotalColumn}, header)
	require.Len(t, rows, len(ImportLoanLabels()))

	pad := rows["Total PAD (General)"]
	require.Equal(t, "100", pad["001"])
	require.Equal(t, "", pad["002"])
	require.Equal(t, "300", pad["003"])
	require.Equal(t, "400", pad[models.TotalColumn])

	sameMonth := rows[catalog.LoanSameMonthLabel]
	require.Equal(t, "50", sameMonth["001"])
	require.Equal(t, "25", sameMonth["003"])
	require.Equal(t, "75", sameMonth[models.TotalColumn])

	other := rows[catalog.LoanOtherLoans]
	require.Equal(t, "5", other["001"])
	require.Equal(t, "0", other["003"])

	lim := rows["Total LIM"]
	require.Equal(t, "0", lim["001"])
	require.Equal(t, "0", lim[models.TotalColumn])

	work := filepath.Join(fx.root, "out", "iss_import_loan", workFilesDir)
	otherSummary, err := workbook.ReadSummary(filepath.Join(work, "iss_001.xlsx"), "Other_Summary")
	require.NoError(t, err)
	require.Len(t, otherSummary, len(catalog.LoanOther.Items)+1)
	require.Equal(t, catalog.LoanOtherTotal, otherSummary[len(otherSummary)-1].Label)
	require.Equal(t, "5", otherSummary[len(otherSummary)-1].Amount.String())

	require.FileExists(t, filepath.Join(work, "gl_003.xlsx"))
	require.FileExists(t, filepath.Join(work, "same_month.xlsx"))
	require.NoFileExists(t, filepath.Join(work, "iss_002.xlsx"))
}

func TestImportLoanPipelineIsIdempotent(t *testing.T) {
	fx := loanFixture(t)
	p := NewImportLoanPipeline(fx.sources())
	req := NewRunRequest([]string{"001", "002", "003"}, []string{"002"}, testPeriod)

	first, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	firstRows, err := workbook.ReadRows(first.OutputPath, workbook.ConsolidatedSheetName)
	require.NoError(t, err)

	second, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	secondRows, err := workbook.ReadRows(second.OutputPath, workbook.ConsolidatedSheetName)
	require.NoError(t, err)

	require.Equal(t, first.OutputPath, second.OutputPath)
	require.Equal(t, firstRows, secondRows)
}

func TestImportLoanPipelineMissingLedger(t *testing.T) {
	fx := loanFixture(t)
	req := NewRunRequest([]string{"001", "004"}, nil, testPeriod)

	_, err := NewImportLoanPipeline(fx.sources()).Run(context.Background(), req)
	var missing *models.MissingSourceError
	require.True(t, errors.As(err, &missing))
	require.Contains(t, err.Error(), "branch 004")
}

func TestImportLoanPipelineMissingSameMonth(t *testing.T) {
	fx := newFixture(t)
	fx.writeLedger(t, "BALSHEETBRN_001_30092026.html", balance{150120005, "100"})

	_, err := NewImportLoanPipeline(fx.sources()).Run(context.Background(), NewRunRequest([]string{"001"}, nil, testPeriod))
	var missing *models.MissingSourceError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, "*same month*", missing.Pattern)
}

func TestImportLoanPipelineCanceled(t *testing.T) {
	fx := loanFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewImportLoanPipeline(fx.sources()).Run(ctx, NewRunRequest([]string{"001"}, nil, testPeriod))
	require.ErrorIs(t, err, context.Canceled)
}

func billFixture(t *testing.T, glTotal string) *fixture {
	fx := newFixture(t)
	fx.writeLedger(t, "BALSHEET_30092026.html", balance{501040000, glTotal}, balance{150120005, "999"})
	fx.writeExtract(t, "508 Bills.xlsx", "Report1", 3,
		[]any{"Cont. Ref  No.", "Contract No.", "Issue Date", "LCY Balance"},
		[]any{"001IB0126000001", "LC0000040001", date(2026, 9, 3), 1000},
		[]any{"003IB1626000002", "LC0000990002", date(2026, 9, 4), 500},
		[]any{"001IB0226000003", "LC0000020003", date(2026, 9, 5), 999},
	)
	return fx
}

func TestImportBillPipelineReconciled(t *testing.T) {
	fx := billFixture(t, "1000.50")
	p := NewImportBillPipeline(fx.sources(), reconcile.NewGate(reconcile.DefaultTolerance))
	req := NewRunRequest([]string{"001", "003"}, nil, testPeriod)

	result, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	require.Empty(t, result.Warnings)
	require.Equal(t, "ISS_Import-Bills_September2026.xlsx", filepath.Base(result.OutputPath))

	_, rows := readReport(t, result.OutputPath)
	require.Len(t, rows, len(catalog.ImportBillLines))

	local := rows["Accepted Bills Payable (Local)"]
	require.Equal(t, "1000", local["001"])
	require.Equal(t, "500", local["003"])
	require.Equal(t, "1500", local[models.TotalColumn])

	exportLC := rows["Total Acceptance provided Against Inland Bill Related to Export LC"]
	require.Equal(t, "1000", exportLC["001"])
	require.Equal(t, "0", exportLC["003"])

	foreign := rows["Accepted Bills Payable ( Foreign)"]
	require.Equal(t, "0", foreign[models.TotalColumn])

	recon, err := workbook.ReadRows(result.OutputPath, "Reconciliation")
	require.NoError(t, err)
	require.Equal(t, "reconciled", recon[len(recon)-1][1])
}

func TestImportBillPipelineNotReconciled(t *testing.T) {
	fx := billFixture(t, "1002")
	p := NewImportBillPipeline(fx.sources(), reconcile.NewGate(reconcile.DefaultTolerance))
	req := NewRunRequest([]string{"001", "002", "003"}, []string{"002"}, testPeriod)

	result, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0], "does not agree")

	_, rows := readReport(t, result.OutputPath)
	for label, row := range rows {
		require.Equal(t, reconcile.NotReconciled, row["001"], label)
		require.Equal(t, "", row["002"], label)
		require.Equal(t, reconcile.NotReconciled, row["003"], label)
		require.Equal(t, reconcile.NotReconciled, row[models.TotalColumn], label)
	}

	recon, err := workbook.ReadRows(result.OutputPath, "Reconciliation")
	require.NoError(t, err)
	require.Equal(t, reconcile.NotReconciled, recon[len(recon)-1][1])
}

func TestImportBillPipelineCountsMalformedReferences(t *testing.T) {
	fx := newFixture(t)
	fx.writeLedger(t, "BALSHEET_30092026.html", balance{501040000, "1500"})
	fx.writeExtract(t, "508 Bills.xlsx", "Report1", 3,
		[]any{"Cont. Ref  No.", "Contract No.", "LCY Balance"},
		[]any{"001IB0126000001", "LC0000040001", 1000},
		[]any{"HO1IB0126000009", "LC0000040009", 500},
	)
	p := NewImportBillPipeline(fx.sources(), reconcile.NewGate(reconcile.DefaultTolerance))

	result, err := p.Run(context.Background(), NewRunRequest([]string{"001"}, nil, testPeriod))
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0], "bills-508: 1 rows with malformed")

	recon, err := workbook.ReadRows(result.OutputPath, "Reconciliation")
	require.NoError(t, err)
	require.Equal(t, "reconciled", recon[len(recon)-1][1])

	// the malformed row has no branch column to land in
	_, rows := readReport(t, result.OutputPath)
	local := rows["Accepted Bills Payable (Local)"]
	require.Equal(t, "1000", local["001"])
	require.Equal(t, "1000", local[models.TotalColumn])
}

func TestImportBillPipelineWorkFile(t *testing.T) {
	fx := billFixture(t, "1000")
	result, err := NewImportBillPipeline(fx.sources(), reconcile.NewGate(reconcile.DefaultTolerance)).
		Run(context.Background(), NewRunRequest([]string{"001", "003"}, nil, testPeriod))
	require.NoError(t, err)

	work := filepath.Join(filepath.Dir(result.OutputPath), workFilesDir)
	rows, err := workbook.ReadRows(filepath.Join(work, "bill_508.xlsx"), billSheet)
	require.NoError(t, err)
	// denied IB02 row is gone
	require.Len(t, rows, 3)
	require.Equal(t, []string{"LC Code", "Code", "Br. Code"}, rows[0][:3])
	require.Equal(t, "LC04", rows[1][0])
	require.Equal(t, "IB01", rows[1][1])
	require.Equal(t, "001", rows[1][2])
}

func exportFixture(t *testing.T) *fixture {
	fx := newFixture(t)
	fx.writeLedger(t, "BALSHEETBRN_001_30092026.html", balance{150120019, "300"}, balance{501240000, "20"})
	fx.writeLedger(t, "BALSHEETBRN_003_30092026.html", balance{150120005, "999"})

	fx.writeExtract(t, "603R local.xlsx", "Report1", 4,
		[]any{"Contract Ref No", "OPC", "Accept Dt.", "CUR", "Bill Outstanding LCY"},
		[]any{"001LDBP01", "DIS", date(2026, 9, 1), "BDT", 100},
		[]any{"001LDBP02", "COL", date(2026, 9, 2), "BDT", 50},
		[]any{"001LDBP03", "DIS", "DEFERRED", "USD", 30},
		[]any{"003LDBP04", "DIS", "", "BDT", 70},
	)
	fx.writeExtract(t, "ACCEPTANCE MATURED.xlsx", "Report1", 4,
		[]any{"USER_REF_NO", "OPERATION", "MATURITY_DATE", "LCY_AMOUNT"},
		[]any{"LDBP001X", "DIS", date(2026, 3, 10), 200},
		[]any{"LDBP001Y", "DIS", date(2025, 12, 31), 999},
		[]any{"LDBP003Z", "DIS", date(2026, 10, 5), 999},
		[]any{"LDBP003W", "COL", date(2026, 5, 5), 999},
		[]any{"LDBP003V", "DIS", date(2026, 9, 30), 40},
	)
	fx.writeExtract(t, "625A overdue local.xlsx", "Report1", 5,
		[]any{"User Ref", "Opn", "Maturity Date", "Ccy", "Bill Amt"},
		[]any{"IBPA001X", "DIS", date(2026, 9, 15), "USD", 10},
		[]any{"IBPA001Y", "DIS", date(2026, 10, 15), "USD", 10},
		[]any{"IBPA003Z", "DIS", date(2026, 8, 1), "JPY", 5},
		[]any{"IBPA003W", "DIS", date(2026, 8, 1), "BDT", 5},
	)
	fx.writeExtract(t, "Ex-Rate.xlsx", "Sheet1", 1, []any{"Ccy", "Ex. Rate"}, []any{"USD", 110})
	return fx
}

func TestExportBillPipeline(t *testing.T) {
	fx := exportFixture(t)
	req := NewRunRequest([]string{"001", "002", "003"}, []string{"002"}, testPeriod)

	result, err := NewExportBillPipeline(fx.sources()).Run(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "ISS_Export-Local_September2026.xlsx", filepath.Base(result.OutputPath))
	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0], "JPY")

	_, rows := readReport(t, result.OutputPath)
	require.Len(t, rows, len(catalog.ExportBillLabels))

	expect := map[string][3]string{
		catalog.ExportAcceptedLocal:     {"100", "0", "100"},
		catalog.ExportLDBPOutstanding:   {"300", "0", "300"},
		catalog.ExportAcceptanceRecv:    {"300", "0", "300"},
		catalog.ExportAcceptanceMatured: {"200", "40", "240"},
		catalog.ExportUnrealized:        {"1100", "5", "1105"},
		catalog.ExportFCInTransit:       {"30", "0", "30"},
		catalog.ExportFCHolding:         {"30", "0", "30"},
		catalog.ExportCollection:        {"20", "0", "20"},
	}
	for label, want := range expect {
		row := rows[label]
		require.Equal(t, want[0], row["001"], label)
		require.Equal(t, "", row["002"], label)
		require.Equal(t, want[1], row["003"], label)
		require.Equal(t, want[2], row[models.TotalColumn], label)
	}

	work := filepath.Join(filepath.Dir(result.OutputPath), workFilesDir)
	sheets := func(name string) []string {
		f, err := excelize.OpenFile(filepath.Join(work, name))
		require.NoError(t, err)
		defer f.Close()
		return f.GetSheetList()
	}
	require.Equal(t, []string{"Report1", "001"}, sheets("603R.xlsx"))
	require.Equal(t, []string{"Report1", "001", "003"}, sheets("matured.xlsx"))
	require.Equal(t, []string{"Report1", "001", "003"}, sheets("625A.xlsx"))
	require.Equal(t, []string{"001"}, sheets("603F.xlsx"))

	// a second run starts 603F from scratch
	_, err = NewExportBillPipeline(fx.sources()).Run(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, []string{"001"}, sheets("603F.xlsx"))
}
