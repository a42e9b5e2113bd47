package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"erecord/internal/align"
	"erecord/internal/build"
	"erecord/internal/county"
	"erecord/internal/docpair"
	"erecord/internal/party"
	"erecord/internal/recording"
	"erecord/internal/rowfeed"
	"erecord/internal/validate"
)

// previewRow is the JSON shape emitted per spreadsheet row.
type previewRow struct {
	Row        int               `json:"row"`
	Package    string            `json:"package,omitempty"`
	PackageID  string            `json:"packageId,omitempty"`
	Documents  []previewDocument `json:"documents,omitempty"`
	Violations []string          `json:"violations,omitempty"`
	Error      string            `json:"error,omitempty"`
}

type previewDocument struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	Grantors         []string `json:"grantors"`
	Grantees         []string `json:"grantees"`
	ExecutionDate    string   `json:"executionDate,omitempty"`
	LegalDescription string   `json:"legalDescription,omitempty"`
	ReferenceBook    string   `json:"referenceBook,omitempty"`
	ReferencePage    string   `json:"referencePage,omitempty"`
	Consideration    string   `json:"consideration,omitempty"`
	File             string   `json:"file"`
}

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var (
		rowsPath   string
		deedDir    string
		satDir     string
		countyFlag string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Build and validate a batch, printing package detail as JSON without submitting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			countyID := strings.ToUpper(strings.TrimSpace(countyFlag))
			if countyID == "" {
				countyID = cfg.Submission.DefaultCounty
			}
			if countyID == "" {
				return errors.New("no county given: pass --county or set submission.default_county")
			}
			profile, err := county.Builtin().Get(countyID)
			if err != nil {
				return err
			}

			feed, err := rowfeed.ReadCSV(rowsPath)
			if err != nil {
				return err
			}
			pairs, err := docpair.DirSource(deedDir, satDir)
			if err != nil {
				return err
			}
			aligned, err := align.Align(feed.Rows, pairs)
			if err != nil {
				return err
			}

			previews := make([]previewRow, 0, len(aligned))
			for _, item := range aligned {
				previews = append(previews, previewOne(item, profile))
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(previews)
		},
	}

	cmd.Flags().StringVar(&rowsPath, "rows", "", "CSV export of the closing spreadsheet")
	cmd.Flags().StringVar(&deedDir, "deeds", "", "Directory of split deed documents, one per row")
	cmd.Flags().StringVar(&satDir, "satisfactions", "", "Directory of split satisfaction documents, one per row")
	cmd.Flags().StringVar(&countyFlag, "county", "", "County profile to project against")
	_ = cmd.MarkFlagRequired("rows")
	_ = cmd.MarkFlagRequired("deeds")
	_ = cmd.MarkFlagRequired("satisfactions")

	return cmd
}

func previewOne(item align.Aligned, profile county.Profile) previewRow {
	preview := previewRow{Row: item.Index + 2}

	pkg, err := build.Build(item.Row, item.Pair, profile)
	if err != nil {
		preview.Error = err.Error()
		return preview
	}
	preview.Package = pkg.Name
	preview.PackageID = pkg.PackageID

	for _, doc := range pkg.Documents {
		preview.Documents = append(preview.Documents, previewFromDocument(doc))
	}

	violations, err := validate.Validate(pkg, profile)
	if err != nil {
		preview.Error = err.Error()
		return preview
	}
	for _, violation := range violations {
		preview.Violations = append(preview.Violations, violation.String())
	}
	return preview
}

func previewFromDocument(doc *recording.Document) previewDocument {
	out := previewDocument{
		ID:            doc.ID,
		Name:          doc.Name,
		Type:          doc.TypeCode,
		Grantors:      partyNames(doc.Grantors),
		Grantees:      partyNames(doc.Grantees),
		ExecutionDate: doc.ExecutionDate,
		Consideration: doc.Consideration,
		File:          doc.FilePath,
	}
	if doc.LegalDescription != nil {
		out.LegalDescription = doc.LegalDescription.Combined()
	}
	if doc.ReferenceInfo != nil {
		out.ReferenceBook = doc.ReferenceInfo.Book
		out.ReferencePage = doc.ReferenceInfo.Page
	}
	return out
}

func partyNames(parties []party.Party) []string {
	names := make([]string, 0, len(parties))
	for _, p := range parties {
		label := p.DisplayName
		if p.Kind == party.Organization {
			label = fmt.Sprintf("%s (org)", label)
		}
		names = append(names, label)
	}
	return names
}
