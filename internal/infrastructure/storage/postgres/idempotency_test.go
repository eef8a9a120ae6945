package postgres

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppos/internal/core/apperror"
)

func TestKeyRowResolve(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	base := keyRow{UserID: "u1", Operation: "POST /api/v1/bills", RequestHash: "h1", UpdatedAt: now}
	resolve := func(r keyRow) (*IdempotencyReplay, bool, error) {
		return r.resolve("k", "u1", "POST /api/v1/bills", "h1", now)
	}

	t.Run("fresh insert owns the key", func(t *testing.T) {
		r := base
		r.Inserted = true
		replay, stale, err := resolve(r)
		assert.NoError(t, err)
		assert.Nil(t, replay)
		assert.False(t, stale)
	})

	t.Run("completed sale is replayed", func(t *testing.T) {
		r := base
		r.Status, r.StatusCode, r.Response = keyDone, http.StatusCreated, []byte(`{"bill_number":"INV-000001"}`)
		replay, _, err := resolve(r)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, replay.StatusCode)
		assert.Equal(t, "application/json", replay.ContentType)
	})

	t.Run("different body is a mismatch", func(t *testing.T) {
		_, _, err := base.resolve("k", "u1", "POST /api/v1/bills", "h2", now)
		assert.True(t, apperror.HasCode(err, apperror.CodeIdempotency))
	})

	t.Run("in-flight key conflicts", func(t *testing.T) {
		r := base
		r.Status = keyPending
		_, _, err := resolve(r)
		require.Error(t, err)
		appErr, _ := apperror.AsAppError(err)
		assert.True(t, appErr.Retryable())
	})

	t.Run("abandoned key may be claimed", func(t *testing.T) {
		r := base
		r.Status, r.UpdatedAt = keyPending, now.Add(-2*staleAfter)
		_, stale, err := resolve(r)
		assert.NoError(t, err)
		assert.True(t, stale)
	})
}
