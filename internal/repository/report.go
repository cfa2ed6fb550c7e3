package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharmuse/ideal-collor-os/internal/domain/report"
)

const (
	materialsUsageSQL = `SELECT p.name, p.type, p.unit, SUM(om.quantity) AS total_quantity
		FROM order_materials om
		JOIN orders o ON o.id = om.order_id
		JOIN products p ON p.id = om.product_id
		WHERE ($1::date IS NULL OR o.opening_date >= $1)
		  AND ($2::date IS NULL OR o.opening_date <= $2)
		GROUP BY p.name, p.type, p.unit
		ORDER BY total_quantity DESC, p.name`

	statusSummarySQL = `SELECT o.status, COUNT(*)
		FROM orders o
		WHERE ($1::date IS NULL OR o.opening_date >= $1)
		  AND ($2::date IS NULL OR o.opening_date <= $2)
		GROUP BY o.status
		ORDER BY o.status`
)

var _ report.Repository = (*ReportRepository)(nil)

// ReportRepository implements report.Repository with SQL-side aggregation.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository returns a ReportRepository that uses the given pool.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// MaterialsUsage sums consumed material quantities per product for orders
// opened in the period, most used first.
func (r *ReportRepository) MaterialsUsage(ctx context.Context, p report.Period) ([]report.MaterialUsage, error) {
	rows, err := r.pool.Query(ctx, materialsUsageSQL, p.From, p.To)
	if err != nil {
		return nil, fmt.Errorf("materials usage report: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.MaterialUsage, error) {
		var m report.MaterialUsage
		err := row.Scan(&m.ProductName, &m.ProductType, &m.Unit, &m.TotalQuantity)
		return m, err
	})
}

// StatusSummary counts orders per status for the period.
func (r *ReportRepository) StatusSummary(ctx context.Context, p report.Period) ([]report.StatusCount, error) {
	rows, err := r.pool.Query(ctx, statusSummarySQL, p.From, p.To)
	if err != nil {
		return nil, fmt.Errorf("status summary report: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.StatusCount, error) {
		var s report.StatusCount
		err := row.Scan(&s.Status, &s.Count)
		return s, err
	})
}
