package classify

import (
	"strings"

	"iss-report/internal/tabular"
)

// Derived column names added by Classify.
const (
	BranchColumn   = "Br. Code"
	CategoryColumn = "Code"
)

// Options narrows the classified rows.
type Options struct {
	// Deny drops rows whose category code is listed.
	Deny []string
	// KnownBranches, when set, is used to count rows of branches outside the report.
	KnownBranches []string
	// KeepMalformed keeps rows with malformed references, with blank derived codes.
	KeepMalformed bool
}

// Stats counts data-quality problems met while classifying.
type Stats struct {
	Rows          int
	Malformed     int
	Denied        int
	UnknownBranch int
	// Samples of malformed reference values, at most ten.
	MalformedRefs []string
}

// Classify parses format.Column of every record and adds the category and
// branch columns the format defines, in front of the existing columns.
// Records with malformed references are counted and, unless opts.KeepMalformed
// is set, dropped.
func Classify(t tabular.Table, format ReferenceFormat, opts Options) (tabular.Table, Stats) {
	deny := toSet(opts.Deny)
	known := toSet(opts.KnownBranches)
	stats := Stats{Rows: t.Len()}

	var derived []string
	if !format.Category.empty() {
		derived = append(derived, format.categoryColumn())
	}
	if !format.Branch.empty() {
		derived = append(derived, BranchColumn)
	}
	out := tabular.Table{Columns: append(derived, without(t.Columns, derived)...)}

	for _, r := range t.Records {
		ref, err := format.Parse(strings.TrimSpace(r[format.Column]))
		if err != nil {
			stats.Malformed++
			if len(stats.MalformedRefs) < 10 {
				stats.MalformedRefs = append(stats.MalformedRefs, r[format.Column])
			}
			if !opts.KeepMalformed {
				continue
			}
			ref = Reference{}
		}
		if deny[ref.Category] {
			stats.Denied++
			continue
		}
		if len(known) > 0 && ref.Branch != "" && !known[ref.Branch] {
			stats.UnknownBranch++
		}

		rec := make(tabular.Record, len(r)+len(derived))
		for k, v := range r {
			rec[k] = v
		}
		if !format.Category.empty() {
			rec[format.categoryColumn()] = ref.Category
		}
		if !format.Branch.empty() {
			rec[BranchColumn] = ref.Branch
		}
		out.Records = append(out.Records, rec)
	}
	return out, stats
}

// ByBranch returns the classified records of one branch.
func ByBranch(t tabular.Table, branch string) tabular.Table {
	return t.Filter(func(r tabular.Record) bool { return r[BranchColumn] == branch })
}

func without(cols, drop []string) []string {
	skip := toSet(drop)
	var out []string
	for _, c := range cols {
		if !skip[c] {
			out = append(out, c)
		}
	}
	return out
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, v := range list {
		set[v] = true
	}
	return set
}
