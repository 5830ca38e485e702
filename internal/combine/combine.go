// Package combine merges per-branch line-item columns into a consolidated report.
package combine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"iss-report/internal/models"
)

// Combine places branch reports side by side, aligned by row position, adds
// an Excluded column for every excluded branch, sorts columns by branch code
// and appends the total column.
//
// The total of a row is the sum of its computed cells. A row without computed
// cells but with skipped ones has a skipped total.
func Combine(labelHeader string, labels []string, reports []models.BranchReport, excluded []string) (models.Consolidated, error) {
	out := models.Consolidated{LabelHeader: labelHeader, Labels: labels}
	seen := make(map[string]bool)

	for _, r := range reports {
		if len(r.Cells) != len(labels) {
			return out, fmt.Errorf("%w: branch %s has %d rows, report has %d", models.ErrRowMismatch, r.Branch, len(r.Cells), len(labels))
		}
		if seen[r.Branch] {
			return out, fmt.Errorf("branch %s reported twice", r.Branch)
		}
		seen[r.Branch] = true
		out.Columns = append(out.Columns, r)
	}

	for _, br := range excluded {
		if seen[br] {
			// an excluded branch never keeps computed figures
			for i := range out.Columns {
				if out.Columns[i].Branch == br {
					out.Columns[i] = excludedColumn(br, len(labels))
				}
			}
			continue
		}
		seen[br] = true
		out.Columns = append(out.Columns, excludedColumn(br, len(labels)))
	}

	sort.SliceStable(out.Columns, func(i, j int) bool {
		return out.Columns[i].Branch < out.Columns[j].Branch
	})

	out.Total = make([]models.Cell, len(labels))
	for row := range labels {
		sum := decimal.Zero
		computed, skipped := 0, ""
		for _, col := range out.Columns {
			cell := col.Cells[row]
			switch cell.State {
			case models.CellComputed:
				sum = sum.Add(cell.Amount)
				computed++
			case models.CellSkipped:
				skipped = cell.Reason
			}
		}
		if computed == 0 && skipped != "" {
			out.Total[row] = models.Skipped(skipped)
			continue
		}
		out.Total[row] = models.Computed(sum)
	}
	return out, nil
}

func excludedColumn(branch string, rows int) models.BranchReport {
	cells := make([]models.Cell, rows)
	for i := range cells {
		cells[i] = models.Excluded()
	}
	return models.BranchReport{Branch: branch, Cells: cells}
}
