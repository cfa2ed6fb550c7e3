// Package report defines the read-model aggregations over persisted orders.
// Aggregation happens in SQL; this package only names the result shapes.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Period bounds a report by order opening date. Nil bounds are open-ended.
type Period struct {
	From *time.Time
	To   *time.Time
}

// MaterialUsage is the total quantity of one product consumed across the
// material lines of all orders opened in the period.
type MaterialUsage struct {
	ProductName   string
	ProductType   string
	Unit          string
	TotalQuantity decimal.Decimal
}

// StatusCount is the number of orders per status in the period.
type StatusCount struct {
	Status string
	Count  int
}

// Repository defines the reporting queries.
type Repository interface {
	MaterialsUsage(ctx context.Context, p Period) ([]MaterialUsage, error)
	StatusSummary(ctx context.Context, p Period) ([]StatusCount, error)
}
