// Package rowfeed reads closing spreadsheets exported as CSV and turns
// them into immutable row records for package building.
package rowfeed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"erecord/internal/services"
)

// Column names expected in the exported spreadsheet.
const (
	ColFileNo           = "File No."
	ColAccount          = "Account"
	ColLastName1        = "Last Name #1"
	ColFirstName1       = "First Name #1"
	ColSecondOwner      = "&"
	ColLastName2        = "Last Name #2"
	ColFirstName2       = "First Name #2"
	ColDeedBook         = "Deed Book"
	ColDeedPage         = "Deed Page"
	ColRecordedDate     = "Recorded Date"
	ColMortgageBook     = "Mortgage Book"
	ColMortgagePage     = "Mortgage Page"
	ColSuite            = "Suite"
	ColConsideration    = "Consideration"
	ColExecutionDate    = "Execution Date"
	ColGrantorGrantee   = "GRANTOR/GRANTEE"
	ColLegalDescription = "LEGAL DESCRIPTION"
	ColParcelID         = "Parcel Id"
)

var requiredColumns = []string{ColFileNo, ColAccount, ColLastName1, ColFirstName1}

// RowRecord is one spreadsheet row. Records are value types and are not
// modified after reading. SecondOwner fields are populated only when the
// additional-owner marker column contains "&".
type RowRecord struct {
	Index int

	FileNo  string
	Account string

	FirstName1 string
	LastName1  string

	HasSecondOwner bool
	FirstName2     string
	LastName2      string

	DeedBook     string
	DeedPage     string
	MortgageBook string
	MortgagePage string

	RecordedDate  string
	ExecutionDate string
	Suite         string
	Consideration string

	GrantorGrantee   string
	LegalDescription string
	ParcelID         string
}

// Feed is the result of reading a spreadsheet: the parsed rows plus
// advisory warnings that do not prevent a batch from running.
type Feed struct {
	Rows     []RowRecord
	Warnings []string
}

// ReadCSV reads a spreadsheet export from path. A missing required column
// is a structural error; formatting oddities are reported as warnings.
func ReadCSV(path string) (*Feed, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrStructural, "rowfeed", "read", "open spreadsheet", err)
	}
	defer file.Close()

	feed, err := Read(file)
	if err != nil {
		return nil, err
	}
	return feed, nil
}

// Read parses CSV spreadsheet data from r.
func Read(r io.Reader) (*Feed, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, services.Wrap(services.ErrStructural, "rowfeed", "read", "read header row", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, services.Wrap(services.ErrStructural, "rowfeed", "read",
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")), nil)
	}

	feed := &Feed{}
	cell := func(record []string, name string) string {
		index, ok := columns[name]
		if !ok || index >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[index])
	}

	for rowIndex := 0; ; rowIndex++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrStructural, "rowfeed", "read",
				fmt.Sprintf("parse row %d", rowIndex+2), err)
		}

		row := RowRecord{
			Index:            rowIndex,
			FileNo:           cell(record, ColFileNo),
			Account:          cell(record, ColAccount),
			FirstName1:       cell(record, ColFirstName1),
			LastName1:        cell(record, ColLastName1),
			DeedBook:         cell(record, ColDeedBook),
			DeedPage:         cell(record, ColDeedPage),
			MortgageBook:     cell(record, ColMortgageBook),
			MortgagePage:     cell(record, ColMortgagePage),
			RecordedDate:     cell(record, ColRecordedDate),
			ExecutionDate:    cell(record, ColExecutionDate),
			Suite:            cell(record, ColSuite),
			Consideration:    cell(record, ColConsideration),
			GrantorGrantee:   cell(record, ColGrantorGrantee),
			LegalDescription: cell(record, ColLegalDescription),
			ParcelID:         cell(record, ColParcelID),
		}

		// Owner-2 fields carry over only when the marker column says so.
		if strings.Contains(cell(record, ColSecondOwner), "&") {
			row.HasSecondOwner = true
			row.FirstName2 = cell(record, ColFirstName2)
			row.LastName2 = cell(record, ColLastName2)
		}

		feed.Warnings = append(feed.Warnings, rowWarnings(row)...)
		feed.Rows = append(feed.Rows, row)
	}

	return feed, nil
}

func rowWarnings(row RowRecord) []string {
	var warnings []string
	sheetRow := row.Index + 2
	if row.LastName1 != "" && row.LastName1 != strings.ToUpper(row.LastName1) {
		warnings = append(warnings, fmt.Sprintf("row %d: last name %q is not in ALL CAPS", sheetRow, row.LastName1))
	}
	if row.FirstName1 != "" && row.FirstName1 != strings.ToUpper(row.FirstName1) {
		warnings = append(warnings, fmt.Sprintf("row %d: first name %q is not in ALL CAPS", sheetRow, row.FirstName1))
	}
	if row.Account == "" {
		warnings = append(warnings, fmt.Sprintf("row %d: empty account number", sheetRow))
	}
	return warnings
}
