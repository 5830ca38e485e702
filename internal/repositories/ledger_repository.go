package repositories

import (
	"os"
	"path/filepath"
	"strings"

	"iss-report/internal/models"
)

const (
	branchLedgerMarker = "BALSHEETBRN"
	ledgerMarker       = "BALSHEET"
)

// LedgerRepository locates the HTML balance sheet exports.
type LedgerRepository interface {
	BranchLedgerPath(branch string) (string, error)
	ConsolidatedLedgerPath() (string, error)
}

type ledgerRepository struct {
	dir string
}

func NewLedgerRepository(dir string) LedgerRepository {
	return &ledgerRepository{dir: dir}
}

// BranchLedgerPath returns the export whose name contains the branch code,
// preferring branch balance sheets over any other export.
func (r *ledgerRepository) BranchLedgerPath(branch string) (string, error) {
	names, err := r.htmlFiles()
	if err != nil {
		return "", err
	}

	var fallback string
	for _, name := range names {
		if !strings.Contains(name, branch) {
			continue
		}
		if strings.Contains(strings.ToUpper(name), branchLedgerMarker) {
			return filepath.Join(r.dir, name), nil
		}
		if fallback == "" {
			fallback = name
		}
	}
	if fallback != "" {
		return filepath.Join(r.dir, fallback), nil
	}
	return "", &models.MissingSourceError{Dir: r.dir, Pattern: "*" + branch + "*.htm*"}
}

// ConsolidatedLedgerPath returns the bank-wide balance sheet export.
func (r *ledgerRepository) ConsolidatedLedgerPath() (string, error) {
	names, err := r.htmlFiles()
	if err != nil {
		return "", err
	}
	for _, name := range names {
		upper := strings.ToUpper(name)
		if strings.Contains(upper, ledgerMarker) && !strings.Contains(upper, branchLedgerMarker) {
			return filepath.Join(r.dir, name), nil
		}
	}
	return "", &models.MissingSourceError{Dir: r.dir, Pattern: "*" + ledgerMarker + "*.htm*"}
}

func (r *ledgerRepository) htmlFiles() ([]string, error) {
	return listFiles(r.dir, ".htm", ".html")
}

// listFiles returns the regular file names of dir with one of the extensions,
// in name order. A missing directory yields no names.
func listFiles(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range exts {
			if ext == want {
				names = append(names, e.Name())
				break
			}
		}
	}
	return names, nil
}
