package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var errNoTx = errors.New("no transaction in context")

// CopyRows bulk-loads rows into table with COPY on the transaction in ctx.
// Stock movements are written this way; bill items use a multi-row INSERT.
func (m *TxManager) CopyRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx := m.GetTx(ctx)
	if tx == nil {
		return 0, fmt.Errorf("copy into %s: %w", table, errNoTx)
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	return n, TranslateError(err)
}

// SendBatch runs the queued statements of b in one round-trip on the
// transaction in ctx and fails on the first statement that errors.
func (m *TxManager) SendBatch(ctx context.Context, b *pgx.Batch) error {
	if b.Len() == 0 {
		return nil
	}
	tx := m.GetTx(ctx)
	if tx == nil {
		return errNoTx
	}
	res := tx.SendBatch(ctx, b)
	for i := range b.Len() {
		if _, err := res.Exec(); err != nil {
			_ = res.Close()
			return fmt.Errorf("batch statement %d: %w", i+1, TranslateError(err))
		}
	}
	return res.Close()
}
