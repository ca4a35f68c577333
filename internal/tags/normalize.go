package tags

import "strconv"

// TagFields are the tag columns counted towards a record's completeness.
var TagFields = [NumTagFields]string{
	"Tag: Name",
	"Tag: Env",
	"Tag: Purpose",
	"Tag: Owner",
	"Tag: EOP",
	"Tag: Contact",
}

// NumTagFields is the number of tracked tag columns.
const NumTagFields = 6

// Header is the canonical output column order.
var Header = []string{
	"Identifier", "Service", "Type", "Region",
	"Tag: Name", "Tag: Env", "Tag: Purpose",
	"Tag: Owner", "Tag: EOP", "Tag: Contact",
	"Tags", "ARN",
}

// RawRecord is one row of an export as the console produced it. Columns is
// usually shared by every row of the same file.
type RawRecord struct {
	Columns []string
	Values  []string
}

// Get returns the value at column index i. Rows shorter than the header
// report the trailing fields as absent.
func (r RawRecord) Get(i int) (string, bool) {
	if i < 0 || i >= len(r.Values) {
		return "", false
	}
	return r.Values[i], true
}

// CanonicalRecord is one row of the normalized report. Every string field
// holds either a value or Sentinel.
type CanonicalRecord struct {
	Identifier string
	Service    string
	Type       string
	Region     string
	TagValues  [NumTagFields]string
	Tags       int
	ARN        string
}

// Row returns the record's fields in Header order.
func (c CanonicalRecord) Row() []string {
	row := make([]string, 0, len(Header))
	row = append(row, c.Identifier, c.Service, c.Type, c.Region)
	row = append(row, c.TagValues[:]...)
	row = append(row, strconv.Itoa(c.Tags), c.ARN)
	return row
}

// Tag returns the value of the named tag field, matching case-insensitively.
func (c CanonicalRecord) Tag(name string) (string, bool) {
	i, ok := Resolve(TagFields[:], name)
	if !ok {
		return "", false
	}
	return c.TagValues[i], true
}

// Normalize projects raw records onto the canonical schema, one output
// record per input record in the same order. Columns are resolved against
// each record's own column set, so exports whose header casing drifts
// between runs normalize identically. Any upstream "Tags" value is ignored
// and recomputed.
func Normalize(raws []RawRecord) []CanonicalRecord {
	out := make([]CanonicalRecord, 0, len(raws))
	for _, r := range raws {
		out = append(out, normalizeRecord(r))
	}
	return out
}

func normalizeRecord(r RawRecord) CanonicalRecord {
	var c CanonicalRecord
	for i, field := range TagFields {
		c.TagValues[i] = ValueOf(r, field)
		if c.TagValues[i] != Sentinel {
			c.Tags++
		}
	}
	c.Identifier = ValueOf(r, "Identifier")
	c.Service = ValueOf(r, "Service")
	c.Type = ValueOf(r, "Type")
	c.Region = ValueOf(r, "Region")
	c.ARN = ValueOf(r, "ARN")
	return c
}
