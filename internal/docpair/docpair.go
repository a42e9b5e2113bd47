// Package docpair pairs deed and mortgage-satisfaction artifacts with
// spreadsheet rows by ordinal position.
package docpair

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"erecord/internal/services"
)

// DocumentPair holds the file paths of the two recordable documents for
// one spreadsheet row.
type DocumentPair struct {
	Deed         string
	Satisfaction string
}

// Splitter produces ordered document pairs from scanned source PDFs. The
// concrete implementation lives outside this module; it must return exactly
// rowCount pairs in spreadsheet row order.
type Splitter interface {
	SplitAndPair(ctx context.Context, deedPDF, affidavitPDF, satisfactionPDF string, rowCount int) ([]DocumentPair, error)
}

// DirSource loads pre-split documents from two directories. Files are
// ordered by name within each directory; the Nth deed is paired with the
// Nth satisfaction. A count mismatch between the directories is a
// structural error.
func DirSource(deedDir, satisfactionDir string) ([]DocumentPair, error) {
	deeds, err := listDocuments(deedDir)
	if err != nil {
		return nil, err
	}
	satisfactions, err := listDocuments(satisfactionDir)
	if err != nil {
		return nil, err
	}

	if len(deeds) != len(satisfactions) {
		return nil, services.Wrap(services.ErrStructural, "docpair", "pair",
			fmt.Sprintf("deed count %d does not match satisfaction count %d", len(deeds), len(satisfactions)), nil)
	}

	pairs := make([]DocumentPair, len(deeds))
	for i := range deeds {
		pairs[i] = DocumentPair{Deed: deeds[i], Satisfaction: satisfactions[i]}
	}
	return pairs, nil
}

func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrStructural, "docpair", "list", "read document directory", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".pdf", ".tif", ".tiff":
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
