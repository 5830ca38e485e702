package repositories

import (
	"path/filepath"
	"strings"

	"iss-report/internal/models"
)

// Name keywords of the back-office extracts.
var (
	KeywordSameMonth    = []string{"same month"}
	KeywordBills        = []string{"bills"}
	Keyword603R         = []string{"603r"}
	KeywordMatured      = []string{"matured", "mautured"}
	KeywordOverdueLocal = []string{"overdue local"}
)

// BORepository locates back-office spreadsheet extracts by name keyword.
type BORepository interface {
	Find(keywords ...string) (string, error)
}

type boRepository struct {
	dir     string
	exclude []string
}

// NewBORepository searches dir. Files named in exclude (such as the exchange
// rate table) are never returned.
func NewBORepository(dir string, exclude ...string) BORepository {
	return &boRepository{dir: dir, exclude: exclude}
}

// Find returns the first spreadsheet whose lower-cased name contains any of
// the keywords.
func (r *boRepository) Find(keywords ...string) (string, error) {
	names, err := listFiles(r.dir, ".xlsx", ".xlsm", ".xls")
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if r.excluded(name) {
			continue
		}
		lower := strings.ToLower(name)
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return filepath.Join(r.dir, name), nil
			}
		}
	}
	return "", &models.MissingSourceError{Dir: r.dir, Pattern: "*" + strings.Join(keywords, "*|*") + "*"}
}

func (r *boRepository) excluded(name string) bool {
	for _, ex := range r.exclude {
		if strings.EqualFold(filepath.Base(ex), name) {
			return true
		}
	}
	return false
}
