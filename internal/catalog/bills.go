package catalog

// Mutually exclusive LC categories of accepted import bills.
const (
	LCLocalExport  = "local_export"
	LCLocalOther   = "local_other"
	LCForeign      = "foreign"
	LCForeignOther = "foreign_other"
	LCOther        = "other"
)

// BillCategories maps LC type codes to import bill categories.
var BillCategories = Table{
	Name:      "bill-categories",
	Exclusive: true,
	Items: []LineItem{
		{Name: LCLocalExport, Codes: []Code{{Key: "LC04"}}},
		{Name: LCLocalOther, Codes: []Code{{Key: "LC99"}}},
		{Name: LCForeign, Codes: []Code{
			{Key: "LC02"}, {Key: "LC06"}, {Key: "LC10"}, {Key: "LC12"},
			{Key: "LC18"}, {Key: "LC22"}, {Key: "LC25"}, {Key: "LC27"},
		}},
		{Name: LCForeignOther, Codes: []Code{{Key: "LC01"}}},
		{Name: LCOther, Codes: []Code{{Key: "LC14"}, {Key: "LC16"}}},
	},
}

// DerivedLine is a report line computed as the sum of categories.
type DerivedLine struct {
	Name       string
	Categories []string
}

// ImportBillLines are the published import bill acceptance lines.
var ImportBillLines = []DerivedLine{
	{Name: "Accepted Bills Payable (Local)", Categories: []string{LCLocalExport, LCLocalOther}},
	{Name: "Accepted Bills Payable ( Foreign)", Categories: []string{LCForeign, LCForeignOther}},
	{Name: "Other Bills Payable", Categories: []string{LCOther}},
	{Name: "Total Acceptance provided Against Inland Bill Related to Export LC", Categories: []string{LCLocalExport}},
	{Name: "Total Acceptance Provided Against Inland Bill not Related to Export LC", Categories: []string{LCLocalOther}},
	{Name: "Total Acceptance Provided Against Foreign Bill", Categories: []string{LCForeign, LCForeignOther}},
	{Name: "Total Outstanding of Acceptance Issued Against  FB/IB/AB", Categories: []string{LCLocalExport, LCLocalOther, LCForeign, LCForeignOther, LCOther}},
}

// DerivedLabels returns the names of derived lines.
func DerivedLabels(lines []DerivedLine) []string {
	labels := make([]string, len(lines))
	for i, l := range lines {
		labels[i] = l.Name
	}
	return labels
}

// BillProductDeny lists 508 product codes that are not acceptances.
var BillProductDeny = []string{"IB02", "IB06", "IB13", "IB52", "IB56", "IB63", "IB66"}

// BillNonContingentProduct is left out of the contingent liability total.
const BillNonContingentProduct = "IB16"

// AcceptanceGLs hold the outstanding accepted bills in the consolidated ledger.
var AcceptanceGLs = GLKeys(501040000, 501130000, 501140000, 501180000, 501280000, 501290000)

// Export local bills report lines, in template order.
const (
	ExportAcceptedLocal     = "Accepted Bills Receivable (Local)"
	ExportLDBPOutstanding   = "Total Loan Outstanding Against IBP/LDBP"
	ExportAcceptanceRecv    = "Total Outstanding of Acceptance Received from Other Bank/branch Against  FBP/IBP/ABP"
	ExportAcceptanceMatured = "Total Acceptance Matured to Other Bank/branch Against  FBP/IBP/ABP"
	ExportUnrealized        = "Unrealized Acceptance Receivable from Other Bank/branch Against  FBP/IBP/ABP"
	ExportFCInTransit       = "Total Foreign Currency in Transit"
	ExportFCHolding         = "Total Foreign Exchange Holding"
	ExportCollection        = "BILLS FOR COLLECTION (INLAND BILL SME+CORP)"
)

// ExportBillLabels is the line order of the export local bills report.
var ExportBillLabels = []string{
	ExportAcceptedLocal, ExportLDBPOutstanding, ExportAcceptanceRecv, ExportAcceptanceMatured,
	ExportUnrealized, ExportFCInTransit, ExportFCHolding, ExportCollection,
}

// LDBPGLs hold loans against IBP/LDBP.
var LDBPGLs = GLKeys(150120019, 150120020, 150120028, 150420019, 150420020, 150420028, 150820027, 150120031, 150420031)

// LocalBillsCollectionGLs hold inland bills for collection.
var LocalBillsCollectionGLs = GLKeys(501240000, 501250000)

// LocalCurrency is the reporting currency of the bank.
const LocalCurrency = "BDT"
