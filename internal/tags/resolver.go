// Package tags normalizes Tag Editor exports into a fixed reporting schema.
package tags

import "strings"

// Sentinel marks an absent or empty value in a canonical record.
const Sentinel = "(not tagged)"

// Resolve returns the index of the first column whose name equals target
// ignoring case. If several columns differ only in case, the first one wins.
func Resolve(columns []string, target string) (int, bool) {
	for i, col := range columns {
		if strings.EqualFold(col, target) {
			return i, true
		}
	}
	return -1, false
}

// ValueOf returns the record's value for the logical column target, or
// Sentinel when the column is missing or the value is absent or empty.
func ValueOf(r RawRecord, target string) string {
	i, ok := Resolve(r.Columns, target)
	if !ok {
		return Sentinel
	}
	v, ok := r.Get(i)
	if !ok || v == "" {
		return Sentinel
	}
	return v
}
