package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dylanw/budget-tracker/internal/categories"
	"github.com/dylanw/budget-tracker/internal/domain"
)

// AmexParser extracts transactions from Amex CSV exports. The export
// carries Date, Description and Amount columns (card/account columns are
// ignored). Amex prints expenses as positive numbers, so amounts are
// sign-inverted to match the canonical negative-is-expense convention.
// CSV statements carry no running balance.
type AmexParser struct {
	resolver *categories.Resolver
}

// NewAmexParser creates a parser using the given category resolver.
func NewAmexParser(resolver *categories.Resolver) *AmexParser {
	return &AmexParser{resolver: resolver}
}

// Parse reads one CSV statement and returns its cleaned transactions.
// Rows whose amount fails to parse are dropped by the cleaning step, not
// raised as errors.
func (p *AmexParser) Parse(r io.Reader) ([]domain.Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("AmexParser.Parse: reading header: %w", err)
	}

	dateCol, descCol, amountCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			dateCol = i
		case "description":
			descCol = i
		case "amount":
			amountCol = i
		}
	}
	if dateCol < 0 || descCol < 0 || amountCol < 0 {
		return nil, fmt.Errorf("AmexParser.Parse: header %v missing Date/Description/Amount", header)
	}

	var raw []pending
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("AmexParser.Parse: reading row: %w", err)
		}
		if len(rec) <= dateCol || len(rec) <= descCol || len(rec) <= amountCol {
			continue
		}

		raw = append(raw, pending{
			Date:        strings.TrimSpace(rec[dateCol]),
			Description: strings.TrimSpace(rec[descCol]),
			Amount:      invertSign(rec[amountCol]),
		})
	}

	return clean(raw, SourceAmexCSV, p.resolver), nil
}

// invertSign flips the sign of a raw amount string. Unparsable values are
// passed through untouched so the cleaning step can zero and drop them.
func invertSign(raw string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return d.Neg().String()
}
