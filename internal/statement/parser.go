// Package statement reconstructs structured transactions from uploaded
// bank statement files. A line-oriented state machine handles the Chase
// PDF layout; a tabular adapter handles Amex CSV exports. Both feed the
// same cleaning and categorization pipeline so the two formats behave
// identically downstream.
package statement

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dylanw/budget-tracker/internal/categories"
	"github.com/dylanw/budget-tracker/internal/domain"
)

// Parser dispatches a statement file to the adapter for its format.
type Parser struct {
	chase *ChaseParser
	amex  *AmexParser
}

// NewParser builds a parser backed by the given category resolver. The
// resolver carries the static rulebook merged with one user's learned
// rules, so a Parser is scoped to a single user and parse pass.
func NewParser(resolver *categories.Resolver) *Parser {
	return &Parser{
		chase: NewChaseParser(resolver),
		amex:  NewAmexParser(resolver),
	}
}

// Result is the outcome of parsing one statement file.
type Result struct {
	Filename       string
	Transactions   []domain.Transaction
	ClosingBalance *decimal.Decimal // PDF footer balance; nil for CSV
}

// FileError records a statement that could not be parsed. Failures are
// data for the caller to report, not raised errors; one bad file never
// aborts the rest of a batch.
type FileError struct {
	Filename string
	Err      error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

// Parse reads one statement, choosing the adapter from the filename
// extension. Malformed-but-readable content yields fewer (or zero) rows,
// never an error; only an unreadable document or an unsupported extension
// fails.
func (p *Parser) Parse(r io.Reader, filename string) (Result, error) {
	res := Result{Filename: filename}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		txs, closing, err := p.chase.Parse(r)
		if err != nil {
			return res, err
		}
		res.Transactions = txs
		res.ClosingBalance = closing
	case ".csv":
		txs, err := p.amex.Parse(r)
		if err != nil {
			return res, err
		}
		res.Transactions = txs
	default:
		return res, fmt.Errorf("unsupported statement type %q", filepath.Ext(filename))
	}

	return res, nil
}

// File pairs a statement's content with its name for batch parsing.
type File struct {
	Name    string
	Content io.Reader
}

// ParseBatch parses several statements, merges and deduplicates their
// transactions, and reports per-file failures alongside the combined
// result. Already-parsed files remain valid output even when later files
// fail.
func (p *Parser) ParseBatch(files []File) ([]domain.Transaction, []FileError) {
	var (
		batches  [][]domain.Transaction
		failures []FileError
	)
	for _, f := range files {
		res, err := p.Parse(f.Content, f.Name)
		if err != nil {
			failures = append(failures, FileError{Filename: f.Name, Err: err})
			continue
		}
		batches = append(batches, res.Transactions)
	}
	return Merge(batches...), failures
}
