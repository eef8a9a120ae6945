package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"shoppos/internal/core/apperror"
)

type keyStatus string

const (
	keyPending keyStatus = "pending"
	keyDone    keyStatus = "success"
	keyFailed  keyStatus = "failed"
)

// A pending key untouched for this long is taken to belong to a request
// that died, and the next caller may claim it.
const staleAfter = time.Minute

// IdempotencyReplay is a stored response, written back verbatim when a till
// repeats a request.
type IdempotencyReplay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

type keyRow struct {
	UserID      string    `db:"user_id"`
	Operation   string    `db:"operation"`
	Status      keyStatus `db:"status"`
	RequestHash string    `db:"request_hash"`
	Response    []byte    `db:"response"`
	StatusCode  int       `db:"response_status"`
	ContentType string    `db:"response_content_type"`
	UpdatedAt   time.Time `db:"updated_at"`
	Inserted    bool      `db:"inserted"`
}

// IdempotencyStore backs the Idempotency-Key header of POST /bills and the
// other non-repeatable writes.
type IdempotencyStore struct {
	txManager *TxManager
	ttl       time.Duration
}

// NewIdempotencyStore keeps keys for ttl, 24h when ttl is not positive.
func NewIdempotencyStore(txManager *TxManager, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{txManager: txManager, ttl: ttl}
}

const claimKeySQL = `
	INSERT INTO sys_idempotency AS k
		(idempotency_key, user_id, operation, status, request_hash, created_at, updated_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
	ON CONFLICT (idempotency_key) DO UPDATE
		SET expires_at = GREATEST(k.expires_at, EXCLUDED.expires_at)
	RETURNING user_id, operation, status, request_hash, response,
	          response_status, response_content_type, updated_at,
	          (xmax = 0) AS inserted`

// AcquireKey claims key for one request. A nil replay with a nil error means
// the caller owns the key and must finish it with CompleteKey, FailKey or
// ReleaseKey. A non-nil replay is the stored outcome of an earlier run.
func (s *IdempotencyStore) AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*IdempotencyReplay, error) {
	now := time.Now().UTC()
	q := s.txManager.GetQuerier(ctx)

	var row keyRow
	if err := pgxscan.Get(ctx, q, &row, claimKeySQL,
		key, userID, operation, keyPending, requestHash, now, now.Add(s.ttl)); err != nil {
		return nil, fmt.Errorf("claim idempotency key: %w", TranslateError(err))
	}

	replay, claimStale, err := row.resolve(key, userID, operation, requestHash, now)
	if err != nil || !claimStale {
		return replay, err
	}

	// Optimistic takeover: only one caller sees its own updated_at win.
	tag, err := q.Exec(ctx, `
		UPDATE sys_idempotency SET updated_at = $1
		WHERE idempotency_key = $2 AND status = $3 AND updated_at = $4`,
		now, key, keyPending, row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("reclaim idempotency key: %w", TranslateError(err))
	}
	if tag.RowsAffected() != 1 {
		return nil, apperror.NewIdempotencyConflict(key)
	}
	return nil, nil
}

// resolve decides what an existing or fresh row means for the caller.
// claimStale asks the caller to try taking over an abandoned pending key.
func (r keyRow) resolve(key, userID, operation, requestHash string, now time.Time) (replay *IdempotencyReplay, claimStale bool, err error) {
	if r.Inserted {
		return nil, false, nil
	}
	if r.UserID != userID || r.Operation != operation || r.RequestHash != requestHash {
		return nil, false, apperror.NewIdempotencyMismatch(key).
			WithDetail("stored_operation", r.Operation).
			WithDetail("request_operation", operation)
	}
	switch r.Status {
	case keyDone, keyFailed:
		replay := &IdempotencyReplay{StatusCode: r.StatusCode, ContentType: r.ContentType, Body: r.Response}
		if replay.StatusCode == 0 {
			replay.StatusCode = http.StatusOK
		}
		if replay.ContentType == "" {
			replay.ContentType = "application/json"
		}
		return replay, false, nil
	case keyPending:
		if now.Sub(r.UpdatedAt) > staleAfter {
			return nil, true, nil
		}
	}
	return nil, false, apperror.NewIdempotencyConflict(key)
}

// CompleteKey stores a successful response for replay.
func (s *IdempotencyStore) CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	body, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	return s.settle(ctx, key, keyDone, statusCode, contentType, body)
}

// FailKey stores a client error so a repeat gets the same answer instead of
// running the sale again.
func (s *IdempotencyStore) FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	body, err := json.Marshal(response)
	if err != nil {
		body = []byte(`{"success":false,"message":"request failed"}`)
	}
	return s.settle(ctx, key, keyFailed, statusCode, contentType, body)
}

// ReleaseKey forgets a pending key after a server-side failure so the
// request can be retried.
func (s *IdempotencyStore) ReleaseKey(ctx context.Context, key string) error {
	_, err := s.txManager.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM sys_idempotency WHERE idempotency_key = $1 AND status = $2`, key, keyPending)
	return TranslateError(err)
}

func (s *IdempotencyStore) settle(ctx context.Context, key string, status keyStatus, statusCode int, contentType string, body []byte) error {
	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_idempotency
		SET status = $1, response = $2, response_status = $3, response_content_type = $4, updated_at = $5
		WHERE idempotency_key = $6`,
		status, body, statusCode, contentType, time.Now().UTC(), key)
	return TranslateError(err)
}

// CleanupExpired deletes keys past their expiry and returns how many.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := s.txManager.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM sys_idempotency WHERE expires_at < $1`, time.Now().UTC())
	if err != nil {
		return 0, TranslateError(err)
	}
	return tag.RowsAffected(), nil
}
