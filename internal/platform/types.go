// Package platform is the client adapter for the translation-management
// service (Weblate-compatible REST API). It is the only writer of persisted
// target text; every other operation is read-only.
package platform

// Status is a unit's translation state as tracked by the platform.
type Status int

// Wire values follow the platform's state vocabulary.
const (
	StatusUntranslated Status = 0
	StatusNeedsReview  Status = 10
	StatusTranslated   Status = 20
	StatusApproved     Status = 30
)

func (s Status) String() string {
	switch s {
	case StatusUntranslated:
		return "untranslated"
	case StatusNeedsReview:
		return "needs-review"
	case StatusTranslated:
		return "translated"
	case StatusApproved:
		return "approved"
	default:
		return "unknown"
	}
}

// Terminal reports whether a unit in this state is done from the
// pipeline's point of view and must never be overwritten.
func (s Status) Terminal() bool {
	return s == StatusTranslated || s == StatusApproved
}

// Project is a top-level grouping of components.
type Project struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Component is a logical grouping of translatable units within a project.
type Component struct {
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Project string `json:"project"`
}

// Language identifies a target locale. It is a reference value, not owned
// by any entity.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Unit is one translatable string of a component for a specific target
// language. Source is immutable within a run; only Target is ever written,
// and only through WriteTarget.
type Unit struct {
	ID        int64  `json:"id"`
	Key       string `json:"context"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	State     Status `json:"state"`
	Language  string `json:"language"`
	Component string `json:"component"`
	ReadOnly  bool   `json:"read_only"`
}

// StatusFilter selects which unit states ListUnits returns.
type StatusFilter struct {
	Untranslated bool
	NeedsReview  bool
}

// DefaultFilter selects only untranslated units, the conservative default.
func DefaultFilter() StatusFilter {
	return StatusFilter{Untranslated: true}
}

// Matches reports whether a unit state passes the filter.
func (f StatusFilter) Matches(s Status) bool {
	switch s {
	case StatusUntranslated:
		return f.Untranslated
	case StatusNeedsReview:
		return f.NeedsReview
	default:
		return false
	}
}
