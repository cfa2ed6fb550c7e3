package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharmuse/ideal-collor-os/internal/backup"
)

// dumpQueries holds one export query per whitelisted table. Every column is
// cast to text in SQL so rows come back as plain strings regardless of the
// underlying type, with NULLs collapsed to empty strings.
var dumpQueries = map[string]string{
	"clients": `SELECT id::text, name, document, phone, whatsapp, email,
			zip_code, street, number, complement, district, city, state,
			reference_point, created_at::text
		FROM clients ORDER BY created_at, id`,

	"sites": `SELECT id::text, client_id::text, zip_code, street, number,
			complement, district, city, state, reference_point,
			main_service_type, area_m2::text, technical_notes, created_at::text
		FROM sites ORDER BY created_at, id`,

	"products": `SELECT id::text, type, name, color_code, unit,
			avg_consumption::text, cost_unit::text, price_unit::text,
			stock_qty::text, created_at::text
		FROM products ORDER BY name, color_code`,

	"services": `SELECT id::text, name, description, unit,
			labor_price_unit::text, estimated_time, created_at::text
		FROM services ORDER BY name`,

	"orders": `SELECT o.order_number, c.name AS client_name, o.status,
			o.payment_type, o.opening_date::text,
			COALESCE(o.due_date::text, '') AS due_date,
			o.discount_percent::text, o.discount_value::text,
			o.total_services::text, o.total_materials::text,
			o.total_general::text, o.total_final::text,
			o.client_signed::text, o.seller_signed::text, o.created_at::text
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		ORDER BY o.created_at, o.id`,
}

var _ backup.Source = (*BackupRepository)(nil)

// BackupRepository streams whole-table dumps for the backup export.
type BackupRepository struct {
	pool *pgxpool.Pool
}

// NewBackupRepository returns a BackupRepository that uses the given pool.
func NewBackupRepository(pool *pgxpool.Pool) *BackupRepository {
	return &BackupRepository{pool: pool}
}

// Dump runs the whitelisted export query for table and feeds every row into
// the sink in scan order.
func (r *BackupRepository) Dump(ctx context.Context, table string, sink backup.Sink) error {
	query, ok := dumpQueries[table]
	if !ok {
		return backup.ErrUnknownTable
	}
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("dump %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}
	if err := sink.Begin(columns); err != nil {
		return err
	}

	values := make([]string, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("dump %s: %w", table, err)
		}
		if err := sink.Row(values); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("dump %s: %w", table, err)
	}
	return sink.End()
}
