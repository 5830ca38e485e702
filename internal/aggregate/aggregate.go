// Package aggregate sums ledger or back-office postings into report line items.
package aggregate

import (
	"github.com/shopspring/decimal"

	"iss-report/internal/catalog"
	"iss-report/internal/models"
	"iss-report/internal/tabular"
)

// Posting is one balance keyed by a GL or product code.
type Posting struct {
	Key         string
	Description string
	Amount      decimal.Decimal
}

// Detail is one joined row kept for audit. Matched is false for codes absent
// from the postings.
type Detail struct {
	LineItem    string
	Variant     string
	Key         string
	Description string
	Amount      decimal.Decimal
	Matched     bool
}

// Result holds the joined detail rows and the per-line-item sums in table order.
type Result struct {
	Details []Detail
	Sums    []models.LineAmount
}

// Total is the sum of all line items.
func (r Result) Total() decimal.Decimal {
	total := decimal.Zero
	for _, s := range r.Sums {
		total = total.Add(s.Amount)
	}
	return total
}

// Aggregate left-joins the table codes to the postings and sums per line item.
// Line items without any matching posting sum to zero.
func Aggregate(table catalog.Table, postings []Posting) Result {
	byKey := make(map[string][]Posting)
	for _, p := range postings {
		byKey[p.Key] = append(byKey[p.Key], p)
	}

	result := Result{Sums: make([]models.LineAmount, len(table.Items))}
	for i, item := range table.Items {
		sum := decimal.Zero
		if len(item.Codes) == 0 {
			result.Details = append(result.Details, Detail{LineItem: item.Name})
		}
		for _, code := range item.Codes {
			matches := byKey[code.Key]
			if len(matches) == 0 {
				result.Details = append(result.Details, Detail{LineItem: item.Name, Variant: code.Variant, Key: code.Key})
				continue
			}
			for _, p := range matches {
				sum = sum.Add(p.Amount)
				result.Details = append(result.Details, Detail{
					LineItem:    item.Name,
					Variant:     code.Variant,
					Key:         code.Key,
					Description: p.Description,
					Amount:      p.Amount,
					Matched:     true,
				})
			}
		}
		result.Sums[i] = models.LineAmount{Label: item.Name, Amount: sum}
	}
	return result
}

// SumWhere adds the postings whose key is in keys.
func SumWhere(postings []Posting, keys []string) decimal.Decimal {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	total := decimal.Zero
	for _, p := range postings {
		if set[p.Key] {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// Postings turns a table into postings using keyColumn, descColumn and amountColumn.
func Postings(t tabular.Table, keyColumn, descColumn, amountColumn string) []Posting {
	postings := make([]Posting, 0, t.Len())
	for _, r := range t.Records {
		postings = append(postings, Posting{
			Key:         r[keyColumn],
			Description: r[descColumn],
			Amount:      r.Amount(amountColumn),
		})
	}
	return postings
}

// LedgerPostings reads the "GL Code" and "Total" columns of a normalized ledger.
// GL codes are normalized so "150120005.0" joins with 150120005.
func LedgerPostings(t tabular.Table) []Posting {
	postings := Postings(t, "GL Code", "GL Description", "Total")
	for i := range postings {
		if d, ok := tabular.ParseDecimal(postings[i].Key); ok {
			postings[i].Key = d.Truncate(0).String()
		}
	}
	return postings
}
