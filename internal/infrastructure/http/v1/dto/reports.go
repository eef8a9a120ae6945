package dto

import (
	"shoppos/internal/core/apperror"
	"shoppos/internal/domain/reports"
)

// SalesReportQuery selects a sales report. Dates are YYYY-MM-DD.
type SalesReportQuery struct {
	GroupBy   string `form:"group_by"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// ToFilter converts to the domain filter.
func (q *SalesReportQuery) ToFilter() (reports.SalesFilter, error) {
	groupBy, err := reports.ParseGroupBy(q.GroupBy)
	if err != nil {
		return reports.SalesFilter{}, err
	}
	start, err := ParseDate("start_date", q.StartDate)
	if err != nil {
		return reports.SalesFilter{}, err
	}
	end, err := ParseDate("end_date", q.EndDate)
	if err != nil {
		return reports.SalesFilter{}, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return reports.SalesFilter{}, apperror.NewValidation("end_date must not be before start_date").
			WithDetail("field", "end_date")
	}
	return reports.SalesFilter{GroupBy: groupBy, Start: start, End: end}, nil
}

// LowStockQuery limits the low stock list.
type LowStockQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}
