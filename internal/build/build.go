// Package build turns aligned spreadsheet rows into canonical recording
// packages, projected through a county profile.
package build

import (
	"fmt"
	"strings"

	"erecord/internal/county"
	"erecord/internal/docpair"
	"erecord/internal/party"
	"erecord/internal/recording"
	"erecord/internal/rowfeed"
	"erecord/internal/services"
)

// FixedDeedGrantor is the trustee organization that appears first on every
// deed's grantor list regardless of jurisdiction.
const FixedDeedGrantor = "KING CUNNINGHAM LLC TR"

// Build constructs a recording package from one row, its document pair, and
// the active county profile. It is pure: the same inputs always produce the
// same package, and nothing outside the return value is modified.
//
// Jurisdiction differences are expressed only through the profile — the
// document type codes, the grantee rule, the field inclusion sets, and the
// naming templates. Build itself contains no per-county branching.
func Build(row rowfeed.RowRecord, pair docpair.DocumentPair, profile county.Profile) (*recording.Package, error) {
	if strings.TrimSpace(row.Account) == "" {
		return nil, malformed(row, "account number is empty")
	}
	if strings.TrimSpace(row.FileNo) == "" {
		return nil, malformed(row, "file number is empty")
	}

	owner1, ok := party.Resolve(row.FirstName1, row.LastName1, party.Grantor)
	if !ok {
		return nil, malformed(row, "owner 1 name is empty")
	}
	owners := []party.Party{owner1}
	if row.HasSecondOwner {
		if owner2, ok := party.Resolve(row.FirstName2, row.LastName2, party.Grantor); ok {
			owners = append(owners, owner2)
		}
	}

	entity := strings.TrimSpace(row.GrantorGrantee)

	grantees, err := grantees(profile, entity, owners)
	if err != nil {
		return nil, malformed(row, err.Error())
	}

	ownerName := ownerDisplay(row, owner1)

	deed, err := buildDocument(row, profile, county.KindDeed, ownerName, owners, entity, grantees, pair.Deed)
	if err != nil {
		return nil, err
	}
	satisfaction, err := buildDocument(row, profile, county.KindMortgageSatisfaction, ownerName, owners, entity, grantees, pair.Satisfaction)
	if err != nil {
		return nil, err
	}

	pkg := &recording.Package{
		PackageID: fmt.Sprintf("%s-%s", row.FileNo, row.Account),
		Name:      county.ExpandTemplate(profile.Templates.Package, row.Account, ownerName, row.FileNo),
		Recipient: profile.ID,
		RowIndex:  row.Index,
		Documents: []*recording.Document{deed, satisfaction},
		Status:    recording.StatusBuilt,
	}
	return pkg, nil
}

func buildDocument(row rowfeed.RowRecord, profile county.Profile, kind county.DocKind, ownerName string, owners []party.Party, entity string, granteeList []party.Party, filePath string) (*recording.Document, error) {
	fields := profile.FieldsFor(kind)

	doc := &recording.Document{
		Kind:     kind,
		TypeCode: profile.DocType(kind),
		Grantees: withRole(granteeList, party.Grantee),
		FilePath: filePath,
	}

	switch kind {
	case county.KindDeed:
		doc.ID = fmt.Sprintf("D-%s-TD", row.Account)
		doc.Grantors = append(doc.Grantors, party.Org(FixedDeedGrantor, party.Grantor))
		if entity != "" {
			doc.Grantors = append(doc.Grantors, party.Org(entity, party.Grantor))
		}
		doc.Grantors = append(doc.Grantors, owners...)
		doc.Consideration = row.Consideration
	case county.KindMortgageSatisfaction:
		doc.ID = fmt.Sprintf("D-%s-SAT", row.Account)
		doc.Grantors = append(doc.Grantors, owners...)
	}

	doc.Name = county.ExpandTemplate(profile.DocTemplate(kind), row.Account, ownerName, row.FileNo)

	if fields.ExecutionDate {
		if row.ExecutionDate == "" {
			return nil, malformed(row, fmt.Sprintf("%s requires an execution date", kind))
		}
		doc.ExecutionDate = row.ExecutionDate
	}

	if fields.LegalDescription {
		if row.LegalDescription == "" {
			return nil, malformed(row, fmt.Sprintf("%s requires a legal description", kind))
		}
		doc.LegalDescription = &recording.LegalDescription{
			Description: row.LegalDescription,
			ParcelID:    row.ParcelID,
		}
	}

	if fields.ReferenceInfo {
		book, page := referenceFor(row, kind)
		if book == "" && page == "" {
			return nil, malformed(row, fmt.Sprintf("%s requires reference book/page", kind))
		}
		doc.ReferenceInfo = &recording.ReferenceInfo{
			Type: doc.TypeCode,
			Book: book,
			Page: page,
		}
	}

	return doc, nil
}

func referenceFor(row rowfeed.RowRecord, kind county.DocKind) (book, page string) {
	if kind == county.KindDeed {
		return row.DeedBook, row.DeedPage
	}
	return row.MortgageBook, row.MortgagePage
}

func grantees(profile county.Profile, entity string, owners []party.Party) ([]party.Party, error) {
	switch profile.GranteeRule {
	case county.GranteeFromColumn:
		if entity == "" {
			return nil, fmt.Errorf("grantor/grantee column is empty")
		}
		return []party.Party{party.Org(entity, party.Grantee)}, nil
	case county.GranteeFromOwners:
		return owners, nil
	default:
		return nil, fmt.Errorf("profile %s has no grantee rule", profile.ID)
	}
}

func withRole(parties []party.Party, role party.Role) []party.Party {
	out := make([]party.Party, len(parties))
	for i, p := range parties {
		out[i] = p.WithRole(role)
	}
	return out
}

// ownerDisplay picks the name used in package and document titles: the
// organization name when owner 1 is an organization, the last name otherwise.
func ownerDisplay(row rowfeed.RowRecord, owner1 party.Party) string {
	if owner1.Kind == party.Organization {
		return owner1.DisplayName
	}
	return party.NormalizeName(row.LastName1)
}

func malformed(row rowfeed.RowRecord, message string) error {
	return services.Wrap(services.ErrMalformedRow, "build", "build",
		fmt.Sprintf("row %d: %s", row.Index+2, message), nil)
}
