package console

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRegion(t *testing.T) {
	regions := []string{"us-east-1", "us-west-2"}

	tests := []struct {
		name   string
		choice string
		entry  string
		want   RegionSelection
	}{
		{"all regions", "1", "", AllRegions()},
		{"default is all regions", "", "", AllRegions()},
		{"index", "2", "1", RegionSelection{Name: "us-east-1"}},
		{"last index", "2", "2", RegionSelection{Name: "us-west-2"}},
		{"literal name", "2", "eu-central-1", RegionSelection{Name: "eu-central-1"}},
		{"out of range index is a literal", "2", "9", RegionSelection{Name: "9"}},
		{"zero is a literal", "2", "0", RegionSelection{Name: "0"}},
		{"whitespace trimmed", " 2 ", " us-west-2 ", RegionSelection{Name: "us-west-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRegion(tt.choice, tt.entry, regions)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRegion_Invalid(t *testing.T) {
	_, err := ResolveRegion("3", "", nil)
	assert.True(t, errors.Is(err, ErrInvalidChoice))

	_, err = ResolveRegion("2", "  ", []string{"us-east-1"})
	assert.True(t, errors.Is(err, ErrInvalidChoice))
}

func TestRegionSelectionLabels(t *testing.T) {
	assert.Equal(t, "all", AllRegions().Label())
	assert.Equal(t, "All regions", AllRegions().Option())
	r := RegionSelection{Name: "ap-south-1"}
	assert.Equal(t, "ap-south-1", r.Label())
	assert.Equal(t, "ap-south-1", r.Option())
}

func TestFilterRegions(t *testing.T) {
	got := filterRegions([]string{"All regions", " us-east-1 ", "", "eu-west-1"})
	assert.Equal(t, []string{"us-east-1", "eu-west-1"}, got)
}
