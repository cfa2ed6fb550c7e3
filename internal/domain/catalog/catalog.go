// Package catalog holds the product and service reference data used to
// prefill order line items.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrServiceNotFound = errors.New("service not found")
)

// Product is a material catalog entry (paint, texture, coating supplies).
type Product struct {
	ID             string
	Type           string
	Name           string
	ColorCode      string
	Unit           string
	AvgConsumption decimal.Decimal
	Cost           decimal.Decimal
	Price          decimal.Decimal
	StockQty       decimal.Decimal
	CreatedAt      time.Time
}

// Service is a labor catalog entry.
type Service struct {
	ID            string
	Name          string
	Description   string
	Unit          string
	LaborPrice    decimal.Decimal
	EstimatedTime string
	CreatedAt     time.Time
}

// ProductRepository defines persistence operations for products. Upsert
// keys on (name, color_code) and is used by seeding and bulk ingestion.
type ProductRepository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Upsert(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

// ServiceRepository defines persistence operations for services. Upsert
// keys on the unique service name.
type ServiceRepository interface {
	List(ctx context.Context) ([]Service, error)
	GetByID(ctx context.Context, id string) (*Service, error)
	Create(ctx context.Context, s *Service) error
	Update(ctx context.Context, s *Service) error
	Upsert(ctx context.Context, s *Service) error
	Delete(ctx context.Context, id string) error
}
