package catalog

// Sub-ledger variants of the loan GL codes.
const (
	CorporatePrincipal = "Corporate Principal"
	SMEPrincipal       = "SME Principal"
	CorporateInterest  = "Corporate Interest"
	SMEInterest        = "SME Interest"
	CorporateSuspense  = "Corporate Interest Suspense"
	SMESuspense        = "SME Interest Suspense"
)

// Extra rows of the loan summaries.
const (
	LoanOtherLoans     = "Other Loans"
	LoanOtherTotal     = "Total Amount"
	LoanSameMonthLabel = "Total Loan Disbursed and Settled within this Month"
)

// LoanMain is the main import loan table.
var LoanMain = Table{
	Name:      "loan-main",
	Exclusive: true,
	Items: []LineItem{
		{Name: "Total PAD (General)", Codes: []Code{
			GL(CorporatePrincipal, 150120005), GL(SMEPrincipal, 150120006),
			GL(CorporateInterest, 150420005), GL(SMEInterest, 150420006),
			GL(CorporateSuspense, 150820005), GL(SMESuspense, 150820006),
		}},
		{Name: "Total PAD (Capitalized)", Codes: []Code{
			GL(CorporatePrincipal, 150120041), GL(SMEPrincipal, 150120047),
			GL(CorporateInterest, 150420041), GL(SMEInterest, 150420047),
			GL(CorporateSuspense, 150820039), GL(SMESuspense, 150820045),
		}},
		{Name: "Total PAD (EDF)", Codes: []Code{
			GL(CorporatePrincipal, 150120011), GL(SMEPrincipal, 150120012),
			GL(CorporateInterest, 150420011), GL(SMEInterest, 150420012),
			GL(CorporateSuspense, 150820011), GL(SMESuspense, 150820012),
		}},
		{Name: "Total LTR/MPI", Codes: []Code{
			GL(CorporatePrincipal, 150120009), GL(SMEPrincipal, 150120010),
			GL(CorporateInterest, 150420009), GL(SMEInterest, 150420010),
			GL(CorporateSuspense, 150820009), GL(SMESuspense, 150820010),
		}},
		{Name: "Total LIM"},
		{Name: LoanSameMonthLabel},
		{Name: "Total Amount of LTR Converted to Term Loan"},
		{Name: "Total Outstanding of Term Loan Converted from Continuous, Demand and Time Loan"},
		{Name: "Total Amount of STL (Except LTR) Converted to Term loan"},
		{Name: "Total Amount of Time Loan Converted to Term loan"},
	},
}

// LoanOther is the table of loans reported together as "Other Loans".
var LoanOther = Table{
	Name:      "loan-other",
	Exclusive: true,
	Items: []LineItem{
		{Name: "Import Loan", Codes: []Code{
			GL(CorporatePrincipal, 150120007), GL(SMEPrincipal, 150120008),
			GL(CorporateInterest, 150420007), GL(SMEInterest, 150420008),
			GL(CorporateSuspense, 150820007), GL(SMESuspense, 150820008),
		}},
		{Name: "Import Loan (Capitalized)", Codes: []Code{
			GL(CorporatePrincipal, 150120040), GL(SMEPrincipal, 150120046),
			GL(CorporateInterest, 150420040), GL(SMEInterest, 150420046),
			GL(CorporateSuspense, 150820038), GL(SMESuspense, 150820044),
		}},
		{Name: "Time Loan (new)", Codes: []Code{
			GL(CorporatePrincipal, 150120025), GL(SMEPrincipal, 150120026),
			GL(CorporateInterest, 150420025), GL(SMEInterest, 150420026),
			GL(CorporateSuspense, 150820024), GL(SMESuspense, 150820025),
		}},
		{Name: "Time Loan (old)", Codes: []Code{
			GL(CorporatePrincipal, 150120003), GL(SMEPrincipal, 150120004),
			GL(CorporateInterest, 150420003),
			GL(CorporateSuspense, 150820003), GL(SMESuspense, 150820004),
		}},
		{Name: "Time Loan Amortized", Codes: []Code{
			GL(SMEPrincipal, 150220004),
			GL(SMEInterest, 150420004),
		}},
		{Name: "Time Loan (Capitalized)", Codes: []Code{
			GL(CorporatePrincipal, 150120045), GL(SMEPrincipal, 150120051),
			GL(CorporateInterest, 150420045), GL(SMEInterest, 150420051),
			GL(CorporateSuspense, 150820043), GL(SMESuspense, 150820049),
		}},
		{Name: "Term Loan (NEW)", Codes: []Code{
			GL(CorporatePrincipal, 150130024), GL(SMEPrincipal, 150130025),
			GL(CorporateInterest, 150430025), GL(SMEInterest, 150430026),
			GL(CorporateSuspense, 150830025),
		}},
		{Name: "Term Loan (OLD)", Codes: []Code{
			GL(CorporatePrincipal, 150130001), GL(SMEPrincipal, 150130002),
			GL(CorporateInterest, 150430001), GL(SMEInterest, 150430002),
			GL(CorporateSuspense, 150830001), GL(SMESuspense, 150830002),
		}},
		{Name: "Term Loan (Amortized)", Codes: []Code{
			GL(CorporatePrincipal, 150130026), GL(SMEPrincipal, 150130027),
			GL(CorporateInterest, 150430027), GL(SMEInterest, 150430028),
			GL(CorporateSuspense, 150830027),
		}},
		{Name: "Term Loan (Amortized) OLD", Codes: []Code{
			GL(CorporatePrincipal, 150130019), GL(SMEPrincipal, 150130020),
			GL(CorporateInterest, 150430019), GL(SMEInterest, 150430020),
			GL(CorporateSuspense, 150830019), GL(SMESuspense, 150830020),
		}},
		{Name: "LTFF", Codes: []Code{
			GL(CorporatePrincipal, 150130038),
			GL(CorporateInterest, 150430037),
		}},
	},
}

// SameMonthProducts are the loan products counted as disbursed and settled within the month.
var SameMonthProducts = []string{
	"L035", "L041", "L044", "L047", "L060", "L061", "L062", "L063",
	"L064", "L072", "L073", "L076", "L223", "L226", "L233",
}
