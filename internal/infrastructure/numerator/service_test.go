package numerator

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppos/internal/core/apperror"
	corenumerator "shoppos/internal/core/numerator"
)

// mockQuerier emulates the sys_sequences UPSERT.
type mockQuerier struct {
	counters map[string]int64
	lastSQL  string
	err      error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{counters: make(map[string]int64)}
}

type mockRow struct {
	val int64
	err error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.val
	return nil
}

func (m *mockQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.lastSQL = sql
	if m.err != nil {
		return mockRow{err: m.err}
	}
	key := args[0].(string)
	if len(args) > 1 {
		m.counters[key] = args[1].(int64)
	} else {
		m.counters[key]++
	}
	return mockRow{val: m.counters[key]}
}

func TestService_GetNextNumber_StrictlyIncreasing(t *testing.T) {
	q := newMockQuerier()
	svc := NewWithQuerier(q)
	cfg := corenumerator.DefaultConfig("INV")
	ctx := context.Background()

	first, err := svc.GetNextNumber(ctx, cfg)
	require.NoError(t, err)
	second, err := svc.GetNextNumber(ctx, cfg)
	require.NoError(t, err)

	assert.Equal(t, "INV-000001", first)
	assert.Equal(t, "INV-000002", second)
	assert.Contains(t, q.lastSQL, "ON CONFLICT (key)")
	assert.Equal(t, int64(2), q.counters["inv"])
}

func TestService_SetNextNumber(t *testing.T) {
	q := newMockQuerier()
	svc := NewWithQuerier(q)
	cfg := corenumerator.DefaultConfig("INV")
	ctx := context.Background()

	require.NoError(t, svc.SetNextNumber(ctx, cfg, 41))

	next, err := svc.GetNextNumber(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, "INV-000042", next)

	assert.Error(t, svc.SetNextNumber(ctx, cfg, -1))
}

func TestService_GetNextNumber_TranslatesErrors(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection refused")
	svc := NewWithQuerier(q)

	_, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("INV"))
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}

func TestService_Nil(t *testing.T) {
	var svc *Service
	_, err := svc.GetNextNumber(context.Background(), corenumerator.DefaultConfig("INV"))
	assert.Error(t, err)
}
