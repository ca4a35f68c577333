package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidChoice is returned for a scope choice other than 1 or 2, or an
// empty region name.
var ErrInvalidChoice = errors.New("invalid region choice")

// Scope menu choices.
const (
	ChoiceAllRegions   = "1"
	ChoiceSingleRegion = "2"
)

// RegionSelection is either every region or one named region.
type RegionSelection struct {
	All  bool
	Name string
}

// AllRegions selects every region.
func AllRegions() RegionSelection {
	return RegionSelection{All: true}
}

// Label is the name used in report filenames.
func (r RegionSelection) Label() string {
	if r.All {
		return "all"
	}
	return r.Name
}

// Option is the dropdown entry to click for this selection.
func (r RegionSelection) Option() string {
	if r.All {
		return allRegionsOption
	}
	return r.Name
}

func (r RegionSelection) String() string {
	if r.All {
		return allRegionsOption
	}
	return r.Name
}

// ResolveRegion turns the scope choice and, for a single region, the
// user's entry into a selection. An entry that is a 1-based index into
// regions picks that region; any other entry is taken as a literal region
// name. An empty choice means all regions.
func ResolveRegion(choice, entry string, regions []string) (RegionSelection, error) {
	switch strings.TrimSpace(choice) {
	case "", ChoiceAllRegions:
		return AllRegions(), nil
	case ChoiceSingleRegion:
	default:
		return RegionSelection{}, fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
	}

	entry = strings.TrimSpace(entry)
	if entry == "" {
		return RegionSelection{}, fmt.Errorf("%w: empty region", ErrInvalidChoice)
	}
	if n, err := strconv.Atoi(entry); err == nil && n >= 1 && n <= len(regions) {
		return RegionSelection{Name: regions[n-1]}, nil
	}
	return RegionSelection{Name: entry}, nil
}

// filterRegions drops blanks and the all-regions pseudo option.
func filterRegions(texts []string) []string {
	regions := make([]string, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" || t == allRegionsOption {
			continue
		}
		regions = append(regions, t)
	}
	return regions
}
