package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"iss-report/internal/tabular"
)

func TestOutstandingLocalBills(t *testing.T) {
	table := tabular.Table{
		Columns: []string{col603AcceptDate, col603OPC},
		Records: []tabular.Record{
			{col603AcceptDate: "46266", col603OPC: "DIS"},
			{col603AcceptDate: "46266", col603OPC: "COL"},
			{col603AcceptDate: "DEFERRED", col603OPC: "DIS"},
			{col603AcceptDate: "deferred pay", col603OPC: "DIS"},
			{col603AcceptDate: "  ", col603OPC: "DIS"},
			{col603AcceptDate: "30-09-2026", col603OPC: "ACC"},
		},
	}
	out := OutstandingLocalBills(table)
	require.Equal(t, 2, out.Len())
	require.Equal(t, "46266", out.Records[0][col603AcceptDate])
	require.Equal(t, "ACC", out.Records[1][col603OPC])
}

func TestMaturedAcceptances(t *testing.T) {
	table := tabular.Table{
		Columns: []string{colMaturedOp, colMaturedDate},
		Records: []tabular.Record{
			{colMaturedOp: "DIS", colMaturedDate: "2026-01-01"},
			{colMaturedOp: "DIS", colMaturedDate: "2026-09-30"},
			{colMaturedOp: "DIS", colMaturedDate: "2026-10-01"},
			{colMaturedOp: "DIS", colMaturedDate: "2025-12-31"},
			{colMaturedOp: "DIS", colMaturedDate: "soon"},
			{colMaturedOp: "COL", colMaturedDate: "garbage"},
		},
	}
	out, undated := MaturedAcceptances(table, testPeriod)
	require.Equal(t, 2, out.Len())
	require.Equal(t, 1, undated)
}

func TestOverdueBills(t *testing.T) {
	table := tabular.Table{
		Columns: []string{col625Op, col625Maturity, col625Currency, col625Amount},
		Records: []tabular.Record{
			{col625Op: "DIS", col625Maturity: "2026-09-30", col625Currency: "usd", col625Amount: "2.5"},
			{col625Op: "DIS", col625Maturity: "2026-10-01", col625Currency: "USD", col625Amount: "1"},
			{col625Op: "DIS", col625Maturity: "2026-01-01", col625Currency: "JPY", col625Amount: "1"},
			{col625Op: "DIS", col625Maturity: "2026-01-01", col625Currency: "EUR", col625Amount: "1"},
			{col625Op: "COL", col625Maturity: "2026-01-01", col625Currency: "USD", col625Amount: "1"},
		},
	}
	rates := map[string]decimal.Decimal{"USD": decimal.NewFromInt(110), "BDT": decimal.NewFromInt(1)}

	out, unrated := OverdueBills(table, testPeriod, rates)
	require.Equal(t, []string{"EUR", "JPY"}, unrated)
	require.Equal(t, 1, out.Len())
	require.Equal(t, col625LCYAmount, out.Columns[len(out.Columns)-1])
	require.Equal(t, "275", out.Records[0][col625LCYAmount])
}

func TestBillLines(t *testing.T) {
	bills := tabular.Table{
		Columns: []string{"LC Code", "Cont. Ref  No.", billAmountColumn},
		Records: []tabular.Record{
			{"LC Code": "LC04", "Cont. Ref  No.": "001IB0100000001", billAmountColumn: "100"},
			{"LC Code": "LC99", "Cont. Ref  No.": "001IB0100000002", billAmountColumn: "50"},
			{"LC Code": "LC02", "Cont. Ref  No.": "001IB0100000003", billAmountColumn: "30"},
			{"LC Code": "LC16", "Cont. Ref  No.": "001IB1600000004", billAmountColumn: "7"},
			{"LC Code": "", "Cont. Ref  No.": "001IB0100000005", billAmountColumn: "1000"},
		},
	}
	lines := BillLines(bills)
	want := []string{"150", "30", "7", "100", "50", "30", "187"}
	require.Len(t, lines, len(want))
	for i, w := range want {
		require.Equal(t, w, lines[i].Amount.String(), lines[i].Label)
	}
}
