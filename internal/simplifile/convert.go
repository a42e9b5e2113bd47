package simplifile

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"

	"erecord/internal/county"
	"erecord/internal/party"
	"erecord/internal/recording"
	"erecord/internal/services"
)

// Wire payload types for the package-create endpoint. Field names follow
// the service's JSON contract.

type packagePayload struct {
	Documents          []documentPayload `json:"documents"`
	Recipient          string            `json:"recipient"`
	SubmitterPackageID string            `json:"submitterPackageID"`
	Name               string            `json:"name"`
	Operations         operationsPayload `json:"operations"`
}

// operationsPayload carries the draft flags. Packages are always created as
// drafts: draftOnErrors stays true and submitImmediately stays false.
type operationsPayload struct {
	DraftOnErrors     bool `json:"draftOnErrors"`
	SubmitImmediately bool `json:"submitImmediately"`
	VerifyPageMargins bool `json:"verifyPageMargins"`
}

type documentPayload struct {
	SubmitterDocumentID string          `json:"submitterDocumentID"`
	Name                string          `json:"name"`
	KindOfInstrument    []string        `json:"kindOfInstrument"`
	IndexingData        indexingPayload `json:"indexingData"`
	FileBytes           []string        `json:"fileBytes"`
}

type indexingPayload struct {
	Grantors             []partyPayload            `json:"grantors"`
	Grantees             []partyPayload            `json:"grantees"`
	ExecutionDate        string                    `json:"executionDate,omitempty"`
	Consideration        *float64                  `json:"consideration,omitempty"`
	LegalDescriptions    []legalDescriptionPayload `json:"legalDescriptions,omitempty"`
	ReferenceInformation []referencePayload        `json:"referenceInformation,omitempty"`
}

type partyPayload struct {
	Type         string `json:"type"`
	NameUnparsed string `json:"nameUnparsed,omitempty"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
}

type legalDescriptionPayload struct {
	Description string `json:"description"`
	ParcelID    string `json:"parcelId"`
}

type referencePayload struct {
	DocumentType string `json:"documentType"`
	Book         string `json:"book"`
	Page         int    `json:"page"`
}

func buildPayload(pkg *recording.Package) (*packagePayload, error) {
	payload := &packagePayload{
		Recipient:          pkg.Recipient,
		SubmitterPackageID: pkg.PackageID,
		Name:               strings.ToUpper(pkg.Name),
		Operations: operationsPayload{
			DraftOnErrors:     true,
			SubmitImmediately: false,
			VerifyPageMargins: true,
		},
	}

	for _, doc := range pkg.Documents {
		converted, err := buildDocumentPayload(doc)
		if err != nil {
			return nil, err
		}
		payload.Documents = append(payload.Documents, *converted)
	}
	return payload, nil
}

func buildDocumentPayload(doc *recording.Document) (*documentPayload, error) {
	fileBytes, err := encodeFile(doc.FilePath)
	if err != nil {
		return nil, services.Wrap(services.ErrMalformedRow, "simplifile", "encode",
			fmt.Sprintf("document %s: read file", doc.ID), err)
	}

	payload := &documentPayload{
		SubmitterDocumentID: doc.ID,
		Name:                strings.ToUpper(doc.Name),
		KindOfInstrument:    []string{doc.TypeCode},
		IndexingData: indexingPayload{
			Grantors: convertParties(doc.Grantors),
			Grantees: convertParties(doc.Grantees),
		},
		FileBytes: []string{fileBytes},
	}

	if doc.ExecutionDate != "" {
		payload.IndexingData.ExecutionDate = doc.ExecutionDate
	}
	if doc.Kind == county.KindDeed && doc.Consideration != "" {
		amount, err := strconv.ParseFloat(strings.ReplaceAll(doc.Consideration, ",", ""), 64)
		if err != nil {
			return nil, services.Wrap(services.ErrMalformedRow, "simplifile", "encode",
				fmt.Sprintf("document %s: consideration %q is not an amount", doc.ID, doc.Consideration), err)
		}
		payload.IndexingData.Consideration = &amount
	}
	if doc.LegalDescription != nil && !doc.LegalDescription.Empty() {
		payload.IndexingData.LegalDescriptions = []legalDescriptionPayload{{
			Description: strings.ToUpper(doc.LegalDescription.Combined()),
			// The service indexes the parcel inside the description; the
			// dedicated field stays blank.
			ParcelID: "",
		}}
	}
	if doc.ReferenceInfo != nil {
		page, _ := strconv.Atoi(doc.ReferenceInfo.Page)
		payload.IndexingData.ReferenceInformation = []referencePayload{{
			DocumentType: doc.ReferenceInfo.Type,
			Book:         doc.ReferenceInfo.Book,
			Page:         page,
		}}
	}

	return payload, nil
}

func convertParties(parties []party.Party) []partyPayload {
	out := make([]partyPayload, 0, len(parties))
	for _, p := range parties {
		if p.Kind == party.Organization {
			out = append(out, partyPayload{
				Type:         "Organization",
				NameUnparsed: p.DisplayName,
			})
			continue
		}
		out = append(out, partyPayload{
			Type:      "Individual",
			FirstName: p.FirstName,
			LastName:  p.LastName,
		})
	}
	return out
}

func encodeFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
