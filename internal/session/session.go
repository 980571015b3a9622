// Package session owns the client's view state and session data.
//
// All mutation goes through named operations on [Controller]; nothing else
// writes session fields. Each persisting operation ends with one explicit
// snapshot save, so the stored state always reflects a completed transition.
package session

import (
	"regexp"

	"github.com/melodycompare/mcx/internal/models"
)

// ViewState identifies the screen the client is showing. Exactly one value
// is active at a time.
type ViewState string

const (
	StateHome           ViewState = "home"
	StateLogin          ViewState = "login"
	StateAnalyzing      ViewState = "analyzing"
	StateAnalysis       ViewState = "analysis"
	StateLibrary        ViewState = "library"
	StateDashboard      ViewState = "dashboard"
	StateAccount        ViewState = "account"
	StateCatalog        ViewState = "catalog"
	StatePricing        ViewState = "pricing"
	StateInfo           ViewState = "info"
	StatePromptComposer ViewState = "prompt-composer"
)

var allStates = map[ViewState]bool{
	StateHome: true, StateLogin: true, StateAnalyzing: true,
	StateAnalysis: true, StateLibrary: true, StateDashboard: true,
	StateAccount: true, StateCatalog: true, StatePricing: true,
	StateInfo: true, StatePromptComposer: true,
}

// Valid reports whether v is one of the declared states.
func (v ViewState) Valid() bool { return allStates[v] }

// Transient reports whether v must never be persisted or restored. A reload
// lands the user on a stable screen, not mid-login or mid-analysis.
func (v ViewState) Transient() bool {
	return v == StateLogin || v == StateAnalyzing
}

// Session is the process-wide session snapshot. Controller hands out copies;
// render code never sees a value mid-transition.
type Session struct {
	View             ViewState
	User             *models.User
	SelectedAnalysis *models.AnalysisData
	InitialReport    string
	Library          []models.LibraryItem
	Catalog          []models.CatalogItem
	SharedView       bool
	AudioRef         string
	AudioTitle       string
	LoaderText       string
}

// LoggedIn reports whether a user is signed in.
func (s Session) LoggedIn() bool { return s.User != nil }

var (
	sharePathPattern = regexp.MustCompile(`/view/([a-zA-Z0-9]+)$`)
	shareIDPattern   = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// ShareIDFromLink extracts the share id from a /view/<id> link or returns the
// argument unchanged when it is already a bare id. Empty means no id.
func ShareIDFromLink(link string) string {
	if m := sharePathPattern.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	if shareIDPattern.MatchString(link) {
		return link
	}
	return ""
}
