package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_LargeSnapshotRoundTrip(t *testing.T) {
	svc, err := NewAuditService(nil)
	require.NoError(t, err)

	lines := strings.Repeat(`{"product_name":"Basmati Rice 5kg","quantity":2,"unit_price":"450.00"},`, 120)
	snapshot := []byte(`{"bill":{"bill_number":"INV-000042","items":[` + strings.TrimSuffix(lines, ",") + `]}}`)

	row := svc.pack(auditRow{Changes: snapshot})
	assert.Equal(t, algoZstd, row.Algo)
	assert.Nil(t, row.Changes)
	assert.Less(t, len(row.Compressed), len(snapshot))

	require.NoError(t, svc.unpack(&row))
	assert.JSONEq(t, string(snapshot), string(row.Changes))
	assert.Nil(t, row.Compressed)
}

func TestAuditService_SmallSnapshotStaysPlain(t *testing.T) {
	svc, err := NewAuditService(nil)
	require.NoError(t, err)

	row := svc.pack(auditRow{Changes: []byte(`{"bill_number":"INV-000001"}`)})
	assert.Equal(t, algoNone, row.Algo)
	assert.NotNil(t, row.Changes)
	assert.Nil(t, row.Compressed)
	require.NoError(t, svc.unpack(&row))
}
