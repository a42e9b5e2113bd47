package county

import "strings"

// DocKind identifies one of the recordable instrument kinds this system
// assembles. Every profile carries settings for both kinds.
type DocKind string

const (
	KindDeed                 DocKind = "deed"
	KindMortgageSatisfaction DocKind = "mortgage_satisfaction"
)

// AllKinds returns the ordered list of document kinds in package order:
// the deed always precedes the satisfaction within a package.
func AllKinds() []DocKind {
	return []DocKind{KindDeed, KindMortgageSatisfaction}
}

// GranteeRule selects how a document's grantee list is assembled.
type GranteeRule string

const (
	// GranteeFromColumn uses the GRANTOR/GRANTEE column value as the sole grantee.
	GranteeFromColumn GranteeRule = "column"
	// GranteeFromOwners uses the resolved owner parties as grantees.
	GranteeFromOwners GranteeRule = "owners"
)

// FieldSet declares which optional indexing fields a jurisdiction populates
// for a document kind. A field absent from the set is omitted from the built
// document entirely, never zeroed.
type FieldSet struct {
	ExecutionDate    bool
	LegalDescription bool
	ReferenceInfo    bool
}

// NameTemplates holds the naming patterns for packages and documents.
// Placeholders: {account}, {owner}, {file}.
type NameTemplates struct {
	Package  string
	Deed     string
	Mortgage string
}

// Profile is the declarative ruleset for one recording jurisdiction.
// Profiles are pure data: all branching on their contents lives in the
// package builder's projection, never here.
type Profile struct {
	ID          string
	Name        string
	State       string
	DocTypes    map[DocKind]string
	Fields      map[DocKind]FieldSet
	GranteeRule GranteeRule
	Templates   NameTemplates
}

// DocType returns the external service's document type code for a kind.
func (p Profile) DocType(kind DocKind) string {
	return p.DocTypes[kind]
}

// FieldsFor returns the inclusion set for a kind.
func (p Profile) FieldsFor(kind DocKind) FieldSet {
	return p.Fields[kind]
}

// DocTemplate returns the document name template for a kind.
func (p Profile) DocTemplate(kind DocKind) string {
	if kind == KindDeed {
		return p.Templates.Deed
	}
	return p.Templates.Mortgage
}

// ExpandTemplate substitutes row values into a naming template.
func ExpandTemplate(template, account, owner, fileNo string) string {
	r := strings.NewReplacer(
		"{account}", account,
		"{owner}", owner,
		"{file}", fileNo,
	)
	return strings.Join(strings.Fields(r.Replace(template)), " ")
}
