// Package reconcile compares independently computed totals of two sources.
package reconcile

import "github.com/shopspring/decimal"

// DefaultTolerance is the absolute difference, in currency units, below which
// two totals agree.
var DefaultTolerance = decimal.NewFromInt(1)

// NotReconciled is the reason attached to withheld figures.
const NotReconciled = "not reconciled"

type Gate struct {
	Tolerance decimal.Decimal
}

func NewGate(tolerance decimal.Decimal) Gate {
	if !tolerance.IsPositive() {
		tolerance = DefaultTolerance
	}
	return Gate{Tolerance: tolerance}
}

// Result describes one comparison.
type Result struct {
	BOTotal    decimal.Decimal `json:"bo_total"`
	GLTotal    decimal.Decimal `json:"gl_total"`
	Difference decimal.Decimal `json:"difference"`
	Tolerance  decimal.Decimal `json:"tolerance"`
	Reconciled bool            `json:"reconciled"`
}

// Check reports whether |bo - gl| is strictly below the tolerance.
func (g Gate) Check(bo, gl decimal.Decimal) Result {
	diff := bo.Sub(gl).Abs()
	return Result{
		BOTotal:    bo,
		GLTotal:    gl,
		Difference: diff,
		Tolerance:  g.Tolerance,
		Reconciled: diff.LessThan(g.Tolerance),
	}
}
