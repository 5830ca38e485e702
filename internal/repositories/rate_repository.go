package repositories

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"iss-report/internal/models"
	"iss-report/internal/tabular"
)

// Columns of the exchange rate table.
const (
	RateCurrencyColumn = "Ccy"
	RateValueColumn    = "Ex. Rate"
)

// RateRepository reads the exchange rate table.
type RateRepository interface {
	// Rates maps upper-case currency codes to the local currency rate.
	Rates() (map[string]decimal.Decimal, error)
}

type rateRepository struct {
	path          string
	localCurrency string
}

// NewRateRepository reads the table at path. The local currency always has a
// rate of one unless the table says otherwise.
func NewRateRepository(path, localCurrency string) RateRepository {
	return &rateRepository{path: path, localCurrency: localCurrency}
}

func (r *rateRepository) Rates() (map[string]decimal.Decimal, error) {
	if _, err := os.Stat(r.path); errors.Is(err, fs.ErrNotExist) {
		return nil, &models.MissingSourceError{Dir: filepath.Dir(r.path), Pattern: filepath.Base(r.path)}
	}

	result, err := tabular.LoadSheet(r.path, tabular.SheetOptions{
		HeaderRow:      1,
		KeyColumn:      RateCurrencyColumn,
		NumericColumns: []string{RateValueColumn},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange rates: %w", err)
	}

	rates := make(map[string]decimal.Decimal, result.Table.Len()+1)
	if r.localCurrency != "" {
		rates[strings.ToUpper(r.localCurrency)] = decimal.NewFromInt(1)
	}
	for _, rec := range result.Table.Records {
		rates[strings.ToUpper(rec[RateCurrencyColumn])] = rec.Amount(RateValueColumn)
	}
	return rates, nil
}
