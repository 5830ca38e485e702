// Package catalog holds the static line-item tables of the ISS report.
package catalog

import (
	"fmt"
	"strconv"
)

// Code is one ledger or product code of a line item, tagged with the
// sub-ledger variant it belongs to (principal, interest, suspended interest).
type Code struct {
	Key     string
	Variant string
}

// LineItem is a named row of a published report.
type LineItem struct {
	Name  string
	Codes []Code
}

// Table is an ordered set of line items. Order matches the report template.
type Table struct {
	Name  string
	Items []LineItem
	// Exclusive tables must not share a code between two line items.
	Exclusive bool
}

// Labels returns the line-item names in table order.
func (t Table) Labels() []string {
	labels := make([]string, len(t.Items))
	for i, it := range t.Items {
		labels[i] = it.Name
	}
	return labels
}

// Keys returns every code of the table.
func (t Table) Keys() []string {
	var keys []string
	for _, it := range t.Items {
		for _, c := range it.Codes {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// Validate checks that an exclusive table never assigns one code to two line items.
func (t Table) Validate() error {
	if !t.Exclusive {
		return nil
	}
	owner := make(map[string]string)
	for _, it := range t.Items {
		for _, c := range it.Codes {
			if prev, ok := owner[c.Key]; ok && prev != it.Name {
				return fmt.Errorf("catalog %s: code %s assigned to both %q and %q", t.Name, c.Key, prev, it.Name)
			}
			owner[c.Key] = it.Name
		}
	}
	return nil
}

// GL builds a ledger code of the given variant.
func GL(variant string, gl int64) Code {
	return Code{Key: GLKey(gl), Variant: variant}
}

// GLKey formats a GL code as a join key.
func GLKey(gl int64) string {
	return strconv.FormatInt(gl, 10)
}

// GLKeys formats GL codes as join keys.
func GLKeys(gls ...int64) []string {
	keys := make([]string, len(gls))
	for i, gl := range gls {
		keys[i] = GLKey(gl)
	}
	return keys
}
