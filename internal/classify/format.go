// Package classify derives branch and category codes from back-office reference fields.
package classify

import (
	"fmt"
	"unicode"

	"iss-report/internal/models"
)

// Span is a half-open character range [Start, End) of a reference field.
type Span struct {
	Start int
	End   int
}

func (s Span) empty() bool { return s.End <= s.Start }

// ReferenceFormat fixes where codes sit inside one source's reference field.
// Offsets differ between sources and are never inferred.
type ReferenceFormat struct {
	Name   string
	Column string
	Branch Span
	// Category is optional; an empty span yields no category code.
	Category       Span
	CategoryPrefix string
	// CategoryColumn names the derived category column, CategoryColumn by default.
	CategoryColumn string
}

func (f ReferenceFormat) categoryColumn() string {
	if f.CategoryColumn != "" {
		return f.CategoryColumn
	}
	return CategoryColumn
}

// Reference is the parsed form of a reference field.
type Reference struct {
	Branch   string
	Category string
}

// Formats of the back-office extracts.
var (
	// Bills 508: "Cont. Ref  No." carries the branch in [0:3] and the product code in [3:7].
	Bills508 = ReferenceFormat{Name: "bills-508", Column: "Cont. Ref  No.", Branch: Span{0, 3}, Category: Span{3, 7}}
	// Bills 508 LC type: characters [6:8] of "Contract No." prefixed with "LC".
	BillsLCType = ReferenceFormat{Name: "bills-lc-type", Column: "Contract No.", Category: Span{6, 8}, CategoryPrefix: "LC", CategoryColumn: "LC Code"}
	// Same month adjustments: branch is the first three characters of the related account.
	SameMonth = ReferenceFormat{Name: "same-month", Column: "RELATED_ACCOUNT", Branch: Span{0, 3}}
	// 603R local bills register.
	LocalBills603R = ReferenceFormat{Name: "603r", Column: "Contract Ref No", Branch: Span{0, 3}}
	// Acceptance matured report.
	MaturedAcceptance = ReferenceFormat{Name: "matured", Column: "USER_REF_NO", Branch: Span{4, 7}}
	// 625A overdue local bills.
	OverdueLocal625A = ReferenceFormat{Name: "625a", Column: "User Ref", Branch: Span{4, 7}}
)

// Parse extracts the codes from ref. A reference too short for the declared
// spans, or with a non-digit branch code, returns ErrMalformedReference.
func (f ReferenceFormat) Parse(ref string) (Reference, error) {
	runes := []rune(ref)
	var out Reference

	if !f.Branch.empty() {
		if len(runes) < f.Branch.End {
			return out, fmt.Errorf("%w: %s %q shorter than %d", models.ErrMalformedReference, f.Name, ref, f.Branch.End)
		}
		branch := runes[f.Branch.Start:f.Branch.End]
		for _, r := range branch {
			if !unicode.IsDigit(r) {
				return out, fmt.Errorf("%w: %s %q has branch code %q", models.ErrMalformedReference, f.Name, ref, string(branch))
			}
		}
		out.Branch = string(branch)
	}

	if !f.Category.empty() {
		if len(runes) < f.Category.End {
			return out, fmt.Errorf("%w: %s %q shorter than %d", models.ErrMalformedReference, f.Name, ref, f.Category.End)
		}
		category := runes[f.Category.Start:f.Category.End]
		for _, r := range category {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return out, fmt.Errorf("%w: %s %q has category code %q", models.ErrMalformedReference, f.Name, ref, string(category))
			}
		}
		out.Category = f.CategoryPrefix + string(category)
	}

	return out, nil
}
