package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharmuse/ideal-collor-os/internal/domain/catalog"
)

const (
	productColumns = `id, type, name, color_code, unit, avg_consumption, cost_unit, price_unit, stock_qty, created_at`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY name`
	getProductSQL   = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	insertProductSQL = `INSERT INTO products (type, name, color_code, unit, avg_consumption, cost_unit, price_unit, stock_qty)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	updateProductSQL = `UPDATE products SET type = $2, name = $3, color_code = $4, unit = $5,
		avg_consumption = $6, cost_unit = $7, price_unit = $8, stock_qty = $9
		WHERE id = $1`

	upsertProductSQL = `INSERT INTO products (type, name, color_code, unit, avg_consumption, cost_unit, price_unit, stock_qty)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name, color_code) DO UPDATE SET
			type = EXCLUDED.type,
			unit = EXCLUDED.unit,
			avg_consumption = EXCLUDED.avg_consumption,
			cost_unit = EXCLUDED.cost_unit,
			price_unit = EXCLUDED.price_unit,
			stock_qty = EXCLUDED.stock_qty
		RETURNING id, created_at`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	serviceColumns = `id, name, description, unit, labor_price_unit, estimated_time, created_at`

	listServicesSQL = `SELECT ` + serviceColumns + ` FROM services ORDER BY name`
	getServiceSQL   = `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	insertServiceSQL = `INSERT INTO services (name, description, unit, labor_price_unit, estimated_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	updateServiceSQL = `UPDATE services SET name = $2, description = $3, unit = $4,
		labor_price_unit = $5, estimated_time = $6
		WHERE id = $1`

	upsertServiceSQL = `INSERT INTO services (name, description, unit, labor_price_unit, estimated_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			unit = EXCLUDED.unit,
			labor_price_unit = EXCLUDED.labor_price_unit,
			estimated_time = EXCLUDED.estimated_time
		RETURNING id, created_at`

	deleteServiceSQL = `DELETE FROM services WHERE id = $1`
)

var (
	_ catalog.ProductRepository = (*ProductRepository)(nil)
	_ catalog.ServiceRepository = (*ServiceRepository)(nil)
)

// ProductRepository implements catalog.ProductRepository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	err := r.pool.QueryRow(ctx, insertProductSQL,
		p.Type, p.Name, p.ColorCode, p.Unit, p.AvgConsumption, p.Cost, p.Price, p.StockQty,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.Name, err)
	}
	return nil
}

func (r *ProductRepository) Upsert(ctx context.Context, p *catalog.Product) error {
	err := r.pool.QueryRow(ctx, upsertProductSQL,
		p.Type, p.Name, p.ColorCode, p.Unit, p.AvgConsumption, p.Cost, p.Price, p.StockQty,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.Name, err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Type, p.Name, p.ColorCode, p.Unit, p.AvgConsumption, p.Cost, p.Price, p.StockQty,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Type, &p.Name, &p.ColorCode, &p.Unit,
		&p.AvgConsumption, &p.Cost, &p.Price, &p.StockQty, &p.CreatedAt)
	return p, err
}

// ServiceRepository implements catalog.ServiceRepository backed by PostgreSQL.
type ServiceRepository struct {
	pool *pgxpool.Pool
}

// NewServiceRepository returns a ServiceRepository that uses the given pool.
func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

func (r *ServiceRepository) List(ctx context.Context) ([]catalog.Service, error) {
	rows, err := r.pool.Query(ctx, listServicesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	return pgx.CollectRows(rows, scanService)
}

func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*catalog.Service, error) {
	rows, err := r.pool.Query(ctx, getServiceSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting service %q: %w", id, err)
	}
	s, err := pgx.CollectExactlyOneRow(rows, scanService)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrServiceNotFound
		}
		return nil, fmt.Errorf("getting service %q: %w", id, err)
	}
	return &s, nil
}

func (r *ServiceRepository) Create(ctx context.Context, s *catalog.Service) error {
	err := r.pool.QueryRow(ctx, insertServiceSQL,
		s.Name, s.Description, s.Unit, s.LaborPrice, s.EstimatedTime,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating service %q: %w", s.Name, err)
	}
	return nil
}

func (r *ServiceRepository) Upsert(ctx context.Context, s *catalog.Service) error {
	err := r.pool.QueryRow(ctx, upsertServiceSQL,
		s.Name, s.Description, s.Unit, s.LaborPrice, s.EstimatedTime,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting service %q: %w", s.Name, err)
	}
	return nil
}

func (r *ServiceRepository) Update(ctx context.Context, s *catalog.Service) error {
	tag, err := r.pool.Exec(ctx, updateServiceSQL,
		s.ID, s.Name, s.Description, s.Unit, s.LaborPrice, s.EstimatedTime,
	)
	if err != nil {
		return fmt.Errorf("updating service %q: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrServiceNotFound
	}
	return nil
}

func (r *ServiceRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteServiceSQL, id)
	if err != nil {
		return fmt.Errorf("deleting service %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrServiceNotFound
	}
	return nil
}

func scanService(row pgx.CollectableRow) (catalog.Service, error) {
	var s catalog.Service
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Unit,
		&s.LaborPrice, &s.EstimatedTime, &s.CreatedAt)
	return s, err
}
