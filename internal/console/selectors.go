package console

// Element locators for the AWS sign-in page and the Resource Groups & Tag
// Editor console. The region dropdown container is configured separately
// because its class name is build-generated.
var (
	locSignInLink   = Locator{CSS: "a", Text: "Sign In"}
	locAccount      = Locator{CSS: "#account"}
	locUsername     = Locator{CSS: "#username"}
	locPassword     = Locator{CSS: "#password"}
	locSignInButton = Locator{CSS: "#signin_button"}

	locMFAMethod   = Locator{CSS: "label", Text: "Authenticator app"}
	locMFAContinue = Locator{CSS: `[data-testid="mfa-continue-button"]`}
	locMFACode     = Locator{CSS: `input[placeholder="enter code"]`}
	locMFASubmit   = Locator{CSS: `[data-testid="mfa-submit-button"]`}

	locServiceSearch = Locator{CSS: "#awsc-concierge-input"}
	locFeatureResult = Locator{CSS: `[data-testid="services-search-result-link-resource-groups"]`}
	locTagEditorLink = Locator{CSS: "a", Text: "Tag Editor"}

	locRegionButton      = Locator{CSS: "button", Text: "Select regions"}
	locOption            = Locator{CSS: `[role="option"]`}
	locResourceTypes     = Locator{CSS: `[aria-label="Resource types"]`}
	locAllResourceTypes  = Locator{CSS: `[role="option"]`, Text: "All supported resource types"}
	locShowResults       = Locator{CSS: `[data-test="showResults"]`}
	locExportButton      = Locator{CSS: `button[aria-label*="Export to CSV"]`}
	locExportEnabled     = Locator{CSS: `button[aria-label*="Export to CSV"]:not([disabled])`}
	locExportAllMenuItem = Locator{CSS: `[role="menuitem"]`, Text: "Export all tags"}
)

const (
	featureSearchQuery = "Resource Groups & Tag Editor"
	allRegionsOption   = "All regions"
)

func optionNamed(name string) Locator {
	return Locator{CSS: locOption.CSS, Text: name}
}
