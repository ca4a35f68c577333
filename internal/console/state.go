// Package console drives the Tag Editor export flow of the web console as an
// explicit state machine over a remote-controlled browser page.
package console

// State is a step of the export flow.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	ChallengePending
	Authenticated
	NavigatingToFeature
	ScopeSelection
	ResultsLoading
	ExportReady
	Exported
	Closed
	Aborted
)

var stateNames = [...]string{
	Unauthenticated:     "unauthenticated",
	Authenticating:      "authenticating",
	ChallengePending:    "challenge_pending",
	Authenticated:       "authenticated",
	NavigatingToFeature: "navigating_to_feature",
	ScopeSelection:      "scope_selection",
	ResultsLoading:      "results_loading",
	ExportReady:         "export_ready",
	Exported:            "exported",
	Closed:              "closed",
	Aborted:             "aborted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition leaves s.
func (s State) Terminal() bool {
	return s == Closed || s == Aborted
}
