package tags

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allSentinel() [NumTagFields]string {
	var v [NumTagFields]string
	for i := range v {
		v[i] = Sentinel
	}
	return v
}

func TestNormalize_SingleTag(t *testing.T) {
	raw := []RawRecord{{
		Columns: []string{"Identifier", "Service", "tag: name"},
		Values:  []string{"i-1", "EC2", "web"},
	}}

	got := Normalize(raw)
	require.Len(t, got, 1)

	want := CanonicalRecord{
		Identifier: "i-1",
		Service:    "EC2",
		Type:       Sentinel,
		Region:     Sentinel,
		TagValues:  allSentinel(),
		Tags:       1,
		ARN:        Sentinel,
	}
	want.TagValues[0] = "web"

	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_NoTagColumns(t *testing.T) {
	raw := []RawRecord{{
		Columns: []string{"Identifier", "Region", "Something Else"},
		Values:  []string{"bucket-a", "us-east-1", "x"},
	}}

	got := Normalize(raw)
	require.Len(t, got, 1)
	assert.Equal(t, allSentinel(), got[0].TagValues)
	assert.Zero(t, got[0].Tags)
	assert.Equal(t, "us-east-1", got[0].Region)
}

func TestNormalize_NoResolvableColumns(t *testing.T) {
	got := Normalize([]RawRecord{{Columns: []string{"foo"}, Values: []string{"bar"}}})
	require.Len(t, got, 1)
	for i, v := range got[0].Row() {
		if Header[i] == "Tags" {
			assert.Equal(t, "0", v)
			continue
		}
		assert.Equal(t, Sentinel, v, "column %s", Header[i])
	}
}

func TestNormalize_IgnoresUpstreamTagsCount(t *testing.T) {
	raw := []RawRecord{{
		Columns: []string{"Identifier", "Tags", "TAG: OWNER", "Tag: Contact"},
		Values:  []string{"i-2", "17", "ops", "ops@example.com"},
	}}

	got := Normalize(raw)
	assert.Equal(t, 2, got[0].Tags)
}

func TestNormalize_PerRecordColumns(t *testing.T) {
	raw := []RawRecord{
		{Columns: []string{"Identifier", "Tag: Env"}, Values: []string{"a", "prod"}},
		{Columns: []string{"IDENTIFIER", "tag: env", "tag: eop"}, Values: []string{"b", "dev", "2030"}},
	}

	got := Normalize(raw)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Identifier)
	assert.Equal(t, 1, got[0].Tags)
	assert.Equal(t, "b", got[1].Identifier)
	assert.Equal(t, 2, got[1].Tags)
	eop, ok := got[1].Tag("Tag: EOP")
	require.True(t, ok)
	assert.Equal(t, "2030", eop)
}

func TestNormalize_TagsInvariant(t *testing.T) {
	columns := append([]string{"Identifier"}, TagFields[:]...)
	var raws []RawRecord
	// every subset of the six tag fields
	for mask := 0; mask < 1<<NumTagFields; mask++ {
		values := []string{"id"}
		for i := 0; i < NumTagFields; i++ {
			if mask&(1<<i) != 0 {
				values = append(values, "v")
			} else {
				values = append(values, "")
			}
		}
		raws = append(raws, RawRecord{Columns: columns, Values: values})
	}

	for _, rec := range Normalize(raws) {
		count := 0
		for _, v := range rec.TagValues {
			assert.NotEmpty(t, v)
			if v != Sentinel {
				count++
			}
		}
		assert.Equal(t, count, rec.Tags)
		assert.GreaterOrEqual(t, rec.Tags, 0)
		assert.LessOrEqual(t, rec.Tags, NumTagFields)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := []RawRecord{{
		Columns: []string{"identifier", "service", "tag: purpose", "arn"},
		Values:  []string{"fn-1", "Lambda", "etl", "arn:aws:lambda:us-east-1:123456789012:function:fn-1"},
	}}
	first := Normalize(raw)

	var again []RawRecord
	for _, rec := range first {
		again = append(again, RawRecord{Columns: Header, Values: rec.Row()})
	}
	second := Normalize(again)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second pass changed records (-first +second):\n%s", diff)
	}
}

func TestNormalize_PreservesOrder(t *testing.T) {
	var raws []RawRecord
	for _, id := range []string{"c", "a", "b"} {
		raws = append(raws, RawRecord{Columns: []string{"Identifier"}, Values: []string{id}})
	}
	got := Normalize(raws)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{got[0].Identifier, got[1].Identifier, got[2].Identifier})
}

func TestNormalize_Empty(t *testing.T) {
	assert.Empty(t, Normalize(nil))
}
