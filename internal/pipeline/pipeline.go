// Package pipeline orchestrates statement ingestion: download the raw
// file from blob storage, parse and categorize it, deduplicate against
// the user's stored transactions, and persist the new rows.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dylanw/budget-tracker/internal/categories"
	"github.com/dylanw/budget-tracker/internal/domain"
	"github.com/dylanw/budget-tracker/internal/gcs"
	infra "github.com/dylanw/budget-tracker/internal/infra/bigquery"
	"github.com/dylanw/budget-tracker/internal/logger"
	"github.com/dylanw/budget-tracker/internal/statement"
)

// Ingestor wires the parsing core to its collaborators. The core itself
// never touches the network; all I/O goes through these interfaces.
type Ingestor struct {
	Store        gcs.StatementStore
	Statements   infra.StatementRepository
	Transactions infra.TransactionRepository
	Rules        infra.RuleRepository
	Rulebook     []categories.KeywordRule
}

// IngestStatement processes one uploaded statement for a user and
// returns how many new transactions were stored. Rows already present
// for the user (same date, description and amount) are skipped so
// re-uploading an overlapping statement period never double-counts.
func (i *Ingestor) IngestStatement(ctx context.Context, userID, objectPath string) (int, error) {
	log := logger.FromContext(ctx)

	content, err := i.Store.Download(ctx, objectPath)
	if err != nil {
		return 0, fmt.Errorf("IngestStatement: downloading %s: %w", objectPath, err)
	}
	if len(content) == 0 {
		log.Warn().Str("object_path", objectPath).Msg("Empty statement file, skipping")
		return 0, nil
	}

	learned, err := i.Rules.ListLearnedRules(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("IngestStatement: loading learned rules: %w", err)
	}

	resolver := categories.NewResolver(i.Rulebook, learned)
	parser := statement.NewParser(resolver)

	filename := gcs.Filename(objectPath)
	res, err := parser.Parse(bytes.NewReader(content), filename)
	if err != nil {
		return 0, fmt.Errorf("IngestStatement: parsing %s: %w", filename, err)
	}

	fresh, err := i.dropStored(ctx, userID, res.Transactions)
	if err != nil {
		return 0, err
	}

	statementID := uuid.NewString()
	if err := i.Statements.InsertStatement(ctx, &infra.StatementRow{
		StatementID:      statementID,
		UserID:           userID,
		ObjectPath:       objectPath,
		OriginalFilename: filename,
		TransactionCount: int64(len(fresh)),
		UploadTS:         time.Now(),
	}); err != nil {
		return 0, fmt.Errorf("IngestStatement: recording statement: %w", err)
	}

	if err := i.Transactions.InsertTransactions(ctx, ToRows(userID, statementID, fresh)); err != nil {
		return 0, fmt.Errorf("IngestStatement: storing transactions: %w", err)
	}

	log.Info().
		Str("user_id", userID).
		Str("object_path", objectPath).
		Int("parsed", len(res.Transactions)).
		Int("stored", len(fresh)).
		Msg("Statement ingested")

	return len(fresh), nil
}

// dropStored filters out transactions whose (date, description, amount)
// already exists for the user.
func (i *Ingestor) dropStored(ctx context.Context, userID string, txs []domain.Transaction) ([]domain.Transaction, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	stored, err := i.Transactions.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("IngestStatement: listing stored transactions: %w", err)
	}

	seen := make(map[string]struct{}, len(stored))
	for _, tx := range FromRows(stored) {
		seen[tx.Key()] = struct{}{}
	}

	fresh := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if _, ok := seen[tx.Key()]; ok {
			continue
		}
		seen[tx.Key()] = struct{}{}
		fresh = append(fresh, tx)
	}
	return fresh, nil
}
