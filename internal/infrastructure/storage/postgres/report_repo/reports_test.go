package report_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppos/internal/domain/reports"
)

func TestSalesQuery_PatternIsFirstArgument(t *testing.T) {
	r := NewReportRepo(nil)
	start := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	sql, args, err := r.salesQuery(reports.SalesFilter{GroupBy: reports.GroupByMonth, Start: &start, End: &end}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "to_char(created_at, $1) AS period")
	assert.Contains(t, sql, "created_at::date >= $2::date")
	assert.Contains(t, sql, "created_at::date <= $3::date")
	assert.Contains(t, sql, "GROUP BY period")
	assert.Equal(t, []any{"YYYY-MM", "2026-03-01", "2026-03-31"}, args)
}

func TestSalesQuery_Unbounded(t *testing.T) {
	r := NewReportRepo(nil)

	sql, args, err := r.salesQuery(reports.SalesFilter{GroupBy: reports.GroupByYear}).ToSql()
	require.NoError(t, err)

	assert.NotContains(t, sql, "WHERE")
	assert.Equal(t, []any{"YYYY"}, args)
}
