// Package validate checks built recording packages against the active
// county profile before anything is sent to the recording service.
package validate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"erecord/internal/county"
	"erecord/internal/recording"
	"erecord/internal/services"
)

// Violation is one field-level problem in a built package. Violations are
// data problems, reported in bulk; they never abort the batch.
type Violation struct {
	Document string
	Field    string
	Message  string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s: %s", v.Document, v.Field, v.Message)
}

var dateLayouts = []string{"01/02/2006", "2006-01-02"}

// Validate checks pkg against profile. An empty slice means the package is
// fit to submit. The error return is reserved for structural problems — a
// package missing a document kind is a programming error upstream, not a
// data violation.
func Validate(pkg *recording.Package, profile county.Profile) ([]Violation, error) {
	if pkg == nil {
		return nil, services.Wrap(services.ErrStructural, "validate", "validate", "nil package", nil)
	}

	var violations []Violation
	for _, kind := range county.AllKinds() {
		doc := pkg.Document(kind)
		if doc == nil {
			return nil, services.Wrap(services.ErrStructural, "validate", "validate",
				fmt.Sprintf("package %s is missing its %s document", pkg.PackageID, kind), nil)
		}
		violations = append(violations, validateDocument(doc, profile.FieldsFor(kind))...)
	}
	return violations, nil
}

func validateDocument(doc *recording.Document, fields county.FieldSet) []Violation {
	var violations []Violation
	add := func(field, message string) {
		violations = append(violations, Violation{Document: doc.ID, Field: field, Message: message})
	}

	if len(doc.Grantors) == 0 {
		add("grantors", "at least one grantor is required")
	}
	if len(doc.Grantees) == 0 {
		add("grantees", "at least one grantee is required")
	}
	for _, p := range doc.Grantors {
		if strings.TrimSpace(p.DisplayName) == "" {
			add("grantors", "party name is empty")
		}
	}
	for _, p := range doc.Grantees {
		if strings.TrimSpace(p.DisplayName) == "" {
			add("grantees", "party name is empty")
		}
	}

	if doc.TypeCode == "" {
		add("type", "document type code is empty")
	}
	if doc.FilePath == "" {
		add("file", "document file path is empty")
	}

	if fields.ExecutionDate {
		if doc.ExecutionDate == "" {
			add("executionDate", "execution date is required")
		} else if !parsesAsDate(doc.ExecutionDate) {
			add("executionDate", fmt.Sprintf("%q is not a valid date", doc.ExecutionDate))
		}
	}
	if fields.LegalDescription {
		if doc.LegalDescription == nil || doc.LegalDescription.Empty() {
			add("legalDescription", "legal description is required")
		}
	}
	if fields.ReferenceInfo {
		if doc.ReferenceInfo == nil || (doc.ReferenceInfo.Book == "" && doc.ReferenceInfo.Page == "") {
			add("referenceInfo", "reference book/page is required")
		}
	}

	if doc.Kind == county.KindDeed {
		if doc.Consideration == "" {
			add("consideration", "consideration is required")
		} else if amount, err := strconv.ParseFloat(strings.ReplaceAll(doc.Consideration, ",", ""), 64); err != nil {
			add("consideration", fmt.Sprintf("%q is not a parseable amount", doc.Consideration))
		} else if amount < 0 {
			add("consideration", fmt.Sprintf("%q is negative", doc.Consideration))
		}
	}

	return violations
}

func parsesAsDate(value string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// Summarize renders violations as a single error detail string.
func Summarize(violations []Violation) string {
	if len(violations) == 0 {
		return ""
	}
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}
