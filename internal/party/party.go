// Package party resolves raw spreadsheet name fields into typed grantor and
// grantee entities.
package party

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OrgMarker on a last-name field flags the row entry as an organization whose
// display name is carried in the first-name field.
const OrgMarker = "ORG:"

// Kind distinguishes individual and organization parties.
type Kind string

const (
	Person       Kind = "person"
	Organization Kind = "organization"
)

// Role is the party's position on a document.
type Role string

const (
	Grantor Role = "grantor"
	Grantee Role = "grantee"
)

// Party is a grantor or grantee on a recordable document. FirstName and
// LastName are populated only for Person parties; organizations carry their
// full name in DisplayName.
type Party struct {
	DisplayName string
	FirstName   string
	LastName    string
	Kind        Kind
	Role        Role
}

var upper = cases.Upper(language.AmericanEnglish)

// NormalizeName applies the recording service's naming rules: hyphens become
// spaces, runs of whitespace collapse, and the result is uppercased.
func NormalizeName(name string) string {
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.Join(strings.Fields(name), " ")
	return upper.String(name)
}

// Resolve turns one owner's first/last spreadsheet fields into a Party.
// A last name carrying the ORG: marker yields an Organization whose display
// name is the text after the marker, falling back to the first-name field
// when the marker stands alone. The second return is false when both fields
// are blank.
func Resolve(first, last string, role Role) (Party, bool) {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first == "" && last == "" {
		return Party{}, false
	}

	if strings.HasPrefix(strings.ToUpper(last), OrgMarker) {
		name := strings.TrimSpace(last[len(OrgMarker):])
		if name == "" {
			name = first
		}
		if name == "" {
			return Party{}, false
		}
		return Org(name, role), true
	}

	display := NormalizeName(strings.TrimSpace(first + " " + last))
	return Party{
		DisplayName: display,
		FirstName:   NormalizeName(first),
		LastName:    NormalizeName(last),
		Kind:        Person,
		Role:        role,
	}, true
}

// Org builds an organization party with a normalized display name.
func Org(name string, role Role) Party {
	return Party{DisplayName: NormalizeName(name), Kind: Organization, Role: role}
}

// WithRole returns a copy of the party reassigned to another role.
func (p Party) WithRole(role Role) Party {
	p.Role = role
	return p
}
