// Package recording defines the canonical package and document model produced
// by the builder and consumed by validation, submission, and persistence.
package recording

import (
	"strings"

	"erecord/internal/county"
	"erecord/internal/party"
)

// Status is the lifecycle of one row's package.
type Status string

const (
	StatusPending   Status = "pending"
	StatusBuilt     Status = "built"
	StatusValidated Status = "validated"
	StatusSubmitted Status = "submitted"
	StatusInvalid   Status = "invalid"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusBuilt,
	StatusValidated,
	StatusSubmitted,
	StatusInvalid,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status ends the row's state machine.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSubmitted, StatusInvalid, StatusFailed:
		return true
	default:
		return false
	}
}

// ReferenceInfo points at a previously recorded instrument by book and page.
type ReferenceInfo struct {
	Type string
	Book string
	Page string
}

// LegalDescription is the recorded property description. The parcel ID is
// appended to the description text when present and not already contained.
type LegalDescription struct {
	Description string
	ParcelID    string
}

// Combined returns the description with the parcel ID suffix applied.
func (l LegalDescription) Combined() string {
	desc := strings.TrimSpace(l.Description)
	parcel := strings.TrimSpace(l.ParcelID)
	if parcel == "" || strings.Contains(desc, parcel) {
		return desc
	}
	return strings.TrimSpace(desc + " " + parcel)
}

// Empty reports whether the legal description carries no content at all.
func (l LegalDescription) Empty() bool {
	return strings.TrimSpace(l.Description) == "" && strings.TrimSpace(l.ParcelID) == ""
}

// Document is one recordable instrument within a package. Optional fields are
// populated only when the active county profile includes them; an excluded
// field is left at its zero value and never serialized.
type Document struct {
	ID               string
	Name             string
	Kind             county.DocKind
	TypeCode         string
	Grantors         []party.Party
	Grantees         []party.Party
	ExecutionDate    string
	LegalDescription *LegalDescription
	ReferenceInfo    *ReferenceInfo
	Consideration    string
	FilePath         string
}

// Package is the canonical submittable unit for one spreadsheet row. It is
// owned exclusively by the row that produced it. Packages are always
// submitted as drafts; no component ever finalizes one.
type Package struct {
	PackageID   string
	Name        string
	Recipient   string
	RowIndex    int
	Documents   []*Document
	Status      Status
	RemoteID    string
	ErrorDetail string
}

// Document returns the package's document of the given kind, or nil.
func (p *Package) Document(kind county.DocKind) *Document {
	for _, doc := range p.Documents {
		if doc.Kind == kind {
			return doc
		}
	}
	return nil
}
