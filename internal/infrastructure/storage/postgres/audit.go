package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"shoppos/internal/core/id"
	"shoppos/internal/domain/audit"
)

const (
	algoNone = "none"
	algoZstd = "zstd"
)

// Snapshots larger than this are stored zstd-compressed. A deleted bill with
// a few dozen lines crosses it.
const compressAbove = 4 << 10

// auditRow mirrors sys_audit. Exactly one of Changes and Compressed is set.
type auditRow struct {
	ID         id.ID           `db:"id"`
	EntityType string          `db:"entity_type"`
	EntityID   id.ID           `db:"entity_id"`
	Action     audit.Action    `db:"action"`
	UserID     string          `db:"user_id"`
	UserEmail  string          `db:"user_email"`
	Changes    json.RawMessage `db:"changes"`
	Compressed []byte          `db:"changes_compressed"`
	Algo       string          `db:"compression_algo"`
	CreatedAt  time.Time       `db:"created_at"`
}

var _ audit.Recorder = (*AuditService)(nil)

// AuditService is the sys_audit table. Writes join the caller's transaction,
// so a bill delete and its snapshot commit together.
type AuditService struct {
	txManager *TxManager
	enc       *zstd.Encoder
	dec       *zstd.Decoder
}

func NewAuditService(txManager *TxManager) (*AuditService, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &AuditService{txManager: txManager, enc: enc, dec: dec}, nil
}

// LogChange records changes against the entity, attributed to the user in ctx.
func (s *AuditService) LogChange(ctx context.Context, entityType string, entityID id.ID, action audit.Action, changes map[string]any) error {
	raw, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("marshal audit changes: %w", err)
	}
	actor := audit.ActorFromContext(ctx)
	row := s.pack(auditRow{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		UserID:     actor.UserID,
		UserEmail:  actor.Email,
		Changes:    raw,
		CreatedAt:  time.Now().UTC(),
	})

	var plain any
	if row.Changes != nil {
		plain = row.Changes
	}
	_, err = s.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_audit (id, entity_type, entity_id, action, user_id, user_email,
		                       changes, changes_compressed, compression_algo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		row.ID, row.EntityType, row.EntityID, row.Action, row.UserID, row.UserEmail,
		plain, row.Compressed, row.Algo, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", TranslateError(err))
	}
	return nil
}

// History returns the trail of one entity, newest first.
func (s *AuditService) History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]audit.Entry, error) {
	var rows []auditRow
	err := pgxscan.Select(ctx, s.txManager.GetQuerier(ctx), &rows, `
		SELECT id, entity_type, entity_id, action, user_id, user_email,
		       changes, changes_compressed, compression_algo, created_at
		FROM sys_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3`, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("audit history: %w", TranslateError(err))
	}

	out := make([]audit.Entry, 0, len(rows))
	for _, r := range rows {
		if err := s.unpack(&r); err != nil {
			return nil, fmt.Errorf("audit entry %s: %w", r.ID, err)
		}
		out = append(out, audit.Entry{
			ID:         r.ID,
			EntityType: r.EntityType,
			EntityID:   r.EntityID,
			Action:     r.Action,
			UserID:     r.UserID,
			UserEmail:  r.UserEmail,
			Changes:    r.Changes,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}

func (s *AuditService) pack(r auditRow) auditRow {
	if len(r.Changes) <= compressAbove {
		r.Algo = algoNone
		return r
	}
	r.Compressed = s.enc.EncodeAll(r.Changes, make([]byte, 0, len(r.Changes)/4))
	r.Changes = nil
	r.Algo = algoZstd
	return r
}

func (s *AuditService) unpack(r *auditRow) error {
	if r.Algo != algoZstd {
		return nil
	}
	raw, err := s.dec.DecodeAll(r.Compressed, nil)
	if err != nil {
		return fmt.Errorf("zstd: %w", err)
	}
	r.Changes, r.Compressed = raw, nil
	return nil
}
