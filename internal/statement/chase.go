package statement

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dslipak/pdf"
	"github.com/shopspring/decimal"

	"github.com/dylanw/budget-tracker/internal/categories"
	"github.com/dylanw/budget-tracker/internal/domain"
)

// closingBalancePattern captures the document-level closing balance footer.
var closingBalancePattern = regexp.MustCompile(`Closing balance\s*([+-]?£[\d,]+\.\d{2})`)

// ChaseParser extracts transactions from Chase UK PDF statements. The
// layout is fixed: each transaction starts with a "DD Mon YYYY" line and
// may continue over several lines until the next dated line or the end of
// the page.
type ChaseParser struct {
	resolver *categories.Resolver
}

// NewChaseParser creates a parser using the given category resolver.
func NewChaseParser(resolver *categories.Resolver) *ChaseParser {
	return &ChaseParser{resolver: resolver}
}

// Parse reads a whole PDF statement and returns its cleaned transactions
// plus the closing balance from the statement footer when present. The
// closing balance is informational only and is not attached to any row.
func (p *ChaseParser) Parse(r io.Reader) ([]domain.Transaction, *decimal.Decimal, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("ChaseParser.Parse: reading statement: %w", err)
	}

	pages, err := extractPDFText(data)
	if err != nil {
		return nil, nil, fmt.Errorf("ChaseParser.Parse: %w", err)
	}

	var (
		raw     []pending
		closing *decimal.Decimal
	)
	for _, text := range pages {
		lines := strings.Split(text, "\n")
		raw = append(raw, extractPage(lines)...)

		if closing == nil {
			if m := closingBalancePattern.FindStringSubmatch(text); m != nil {
				bal := parseMoney(m[1])
				closing = &bal
			}
		}
	}

	return clean(raw, SourceChasePDF, p.resolver), closing, nil
}

// extractPDFText returns the plain text of each page in page order. The
// pdf library panics on some malformed documents, so the panic is turned
// into an error here to keep the per-file failure contract.
func extractPDFText(data []byte) (pages []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("extracting pdf text: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
