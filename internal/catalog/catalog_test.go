package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTablesAreExclusive(t *testing.T) {
	for _, table := range []Table{LoanMain, LoanOther, BillCategories} {
		t.Run(table.Name, func(t *testing.T) {
			require.NoError(t, table.Validate())
		})
	}
}

func TestValidateRejectsSharedCode(t *testing.T) {
	table := Table{
		Name:      "broken",
		Exclusive: true,
		Items: []LineItem{
			{Name: "a", Codes: []Code{GL(CorporatePrincipal, 1)}},
			{Name: "b", Codes: []Code{GL(SMEPrincipal, 1)}},
		},
	}
	require.Error(t, table.Validate())

	table.Exclusive = false
	require.NoError(t, table.Validate())
}

func TestLoanTables(t *testing.T) {
	require.Len(t, LoanMain.Items, 10)
	require.Len(t, LoanOther.Items, 11)
	require.Contains(t, LoanMain.Labels(), LoanSameMonthLabel)
	require.Len(t, LoanMain.Keys(), 24)
	require.Empty(t, LoanMain.Items[4].Codes)
}

func TestImportBillLinesUseKnownCategories(t *testing.T) {
	known := make(map[string]bool)
	for _, label := range BillCategories.Labels() {
		known[label] = true
	}
	for _, line := range ImportBillLines {
		for _, c := range line.Categories {
			require.True(t, known[c], "%s uses unknown category %s", line.Name, c)
		}
	}
	require.Len(t, DerivedLabels(ImportBillLines), 7)
	require.Len(t, ExportBillLabels, 8)
}

func TestGLKeys(t *testing.T) {
	require.Equal(t, []string{"501240000", "501250000"}, LocalBillsCollectionGLs)
	require.Equal(t, Code{Key: "150120005", Variant: CorporatePrincipal}, GL(CorporatePrincipal, 150120005))
}
