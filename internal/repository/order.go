package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sharmuse/ideal-collor-os/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (order_number, client_id, site_id, status, payment_type,
		opening_date, due_date, technical_notes, commercial_notes,
		discount_percent, discount_value, total_services, total_materials, total_general, total_final)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at`

	updateOrderSQL = `UPDATE orders SET client_id = $2, site_id = $3, status = $4, payment_type = $5,
		opening_date = $6, due_date = $7, technical_notes = $8, commercial_notes = $9,
		discount_percent = $10, discount_value = $11, total_services = $12,
		total_materials = $13, total_general = $14, total_final = $15
		WHERE id = $1`

	insertServiceLineSQL = `INSERT INTO order_services (order_id, service_id, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5)`

	insertMaterialLineSQL = `INSERT INTO order_materials (order_id, product_id, quantity, unit, packaging, unit_price, total_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	deleteServiceLinesSQL  = `DELETE FROM order_services WHERE order_id = $1`
	deleteMaterialLinesSQL = `DELETE FROM order_materials WHERE order_id = $1`
	deleteOrderSQL         = `DELETE FROM orders WHERE id = $1`

	getOrderSQL = `SELECT id, order_number, client_id, COALESCE(site_id::text, ''), status, payment_type,
		opening_date, due_date, technical_notes, commercial_notes, discount_percent,
		discount_value, total_services, total_materials, total_general, total_final,
		client_signed, client_signed_at, client_signature_url, client_accept_text,
		seller_signed, seller_signed_at, seller_signature_url, created_at
		FROM orders WHERE id = $1`

	getServiceLinesSQL = `SELECT service_id, quantity, unit_price, line_total
		FROM order_services WHERE order_id = $1 ORDER BY id`

	getMaterialLinesSQL = `SELECT product_id, quantity, unit, packaging, unit_price, total_cost
		FROM order_materials WHERE order_id = $1 ORDER BY id`

	listOrdersSQL = `SELECT o.id, o.order_number, c.name, o.status, o.payment_type,
		o.opening_date, o.due_date, o.total_final
		FROM orders o JOIN clients c ON c.id = o.client_id
		ORDER BY o.created_at DESC`

	saveClientSignatureSQL = `UPDATE orders SET client_signed = TRUE, client_signed_at = $2,
		client_signature_url = $3, client_accept_text = $4
		WHERE id = $1 AND client_signed = FALSE`

	saveSellerSignatureSQL = `UPDATE orders SET seller_signed = TRUE, seller_signed_at = $2,
		seller_signature_url = $3
		WHERE id = $1 AND seller_signed = FALSE`

	getSignatureStateSQL = `SELECT client_signed, client_signed_at, seller_signed, seller_signed_at
		FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. The
// multi-row writes (order + child lines) run in a single transaction.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order row and its committed line rows atomically,
// backfilling the generated order ID and creation time.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertOrderSQL, orderArgs(o)...).Scan(&o.ID, &o.CreatedAt)
		if err != nil {
			return errors.Wrap(err, "insert order row")
		}
		return insertLines(ctx, tx, o)
	})
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.Number, err)
	}
	return nil
}

// Update rewrites the order row, deletes all existing child rows, and
// reinserts the current committed line sets, all in one transaction. The
// later of two concurrent edits wins wholesale.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateOrderSQL, append([]any{o.ID}, orderArgs(o)[1:]...)...)
		if err != nil {
			return errors.Wrap(err, "update order row")
		}
		if tag.RowsAffected() == 0 {
			return order.ErrNotFound
		}
		if _, err := tx.Exec(ctx, deleteServiceLinesSQL, o.ID); err != nil {
			return errors.Wrap(err, "delete service lines")
		}
		if _, err := tx.Exec(ctx, deleteMaterialLinesSQL, o.ID); err != nil {
			return errors.Wrap(err, "delete material lines")
		}
		return insertLines(ctx, tx, o)
	})
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return order.ErrNotFound
		}
		return fmt.Errorf("updating order %q: %w", o.ID, err)
	}
	return nil
}

// Delete removes the child rows first, then the order row, in one
// transaction.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteServiceLinesSQL, id); err != nil {
			return errors.Wrap(err, "delete service lines")
		}
		if _, err := tx.Exec(ctx, deleteMaterialLinesSQL, id); err != nil {
			return errors.Wrap(err, "delete material lines")
		}
		tag, err := tx.Exec(ctx, deleteOrderSQL, id)
		if err != nil {
			return errors.Wrap(err, "delete order row")
		}
		if tag.RowsAffected() == 0 {
			return order.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return order.ErrNotFound
		}
		return fmt.Errorf("deleting order %q: %w", id, err)
	}
	return nil
}

// GetByID hydrates the full order including both line sets.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	o, err := r.scanOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, getServiceLinesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("loading service lines for %q: %w", id, err)
	}
	o.ServiceLines, err = pgx.CollectRows(rows, scanServiceLine)
	if err != nil {
		return nil, fmt.Errorf("loading service lines for %q: %w", id, err)
	}

	rows, err = r.pool.Query(ctx, getMaterialLinesSQL, id)
	if err != nil {
		return nil, fmt.Errorf("loading material lines for %q: %w", id, err)
	}
	o.MaterialLines, err = pgx.CollectRows(rows, scanMaterialLine)
	if err != nil {
		return nil, fmt.Errorf("loading material lines for %q: %w", id, err)
	}

	return o, nil
}

// List returns order summaries with the client name joined in, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Summary, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Summary, error) {
		var s order.Summary
		err := row.Scan(&s.ID, &s.Number, &s.ClientName, &s.Status, &s.PaymentType,
			&s.OpeningDate, &s.DueDate, &s.TotalFinal)
		return s, err
	})
}

// SaveSignature records the immutable signed artifact for one role. The
// guarded UPDATE makes concurrent double-signing impossible: the row is only
// touched while the role is still unsigned.
func (r *OrderRepository) SaveSignature(ctx context.Context, id string, role order.SignerRole, a order.SignedArtifact) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	switch role {
	case order.RoleSeller:
		tag, err = r.pool.Exec(ctx, saveSellerSignatureSQL, id, a.SignedAt, a.SignatureURL)
	default:
		tag, err = r.pool.Exec(ctx, saveClientSignatureSQL, id, a.SignedAt, a.SignatureURL, a.AcceptText)
	}
	if err != nil {
		return fmt.Errorf("saving %s signature for %q: %w", role, id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// No row updated: either the order vanished or the role signed in the
	// meantime. Distinguish the two for the caller.
	var (
		clientSigned, sellerSigned     bool
		clientSignedAt, sellerSignedAt *time.Time
	)
	err = r.pool.QueryRow(ctx, getSignatureStateSQL, id).
		Scan(&clientSigned, &clientSignedAt, &sellerSigned, &sellerSignedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.ErrNotFound
		}
		return fmt.Errorf("checking signature state for %q: %w", id, err)
	}

	signedAt := time.Now()
	if role == order.RoleSeller && sellerSignedAt != nil {
		signedAt = *sellerSignedAt
	} else if role == order.RoleClient && clientSignedAt != nil {
		signedAt = *clientSignedAt
	}
	return &order.AlreadySignedError{Role: role, SignedAt: signedAt}
}

func (r *OrderRepository) scanOrder(ctx context.Context, id string) (*order.Order, error) {
	var (
		o               order.Order
		clientSignedAt  *time.Time
		sellerSignedAt  *time.Time
		discountPercent decimal.Decimal
	)
	err := r.pool.QueryRow(ctx, getOrderSQL, id).Scan(
		&o.ID, &o.Number, &o.ClientID, &o.SiteID, &o.Status, &o.PaymentType,
		&o.OpeningDate, &o.DueDate, &o.TechnicalNotes, &o.CommercialNotes, &discountPercent,
		&o.Totals.DiscountValue, &o.Totals.Services, &o.Totals.Materials,
		&o.Totals.General, &o.Totals.Final,
		&o.Signatures.Client.Signed, &clientSignedAt, &o.Signatures.Client.SignatureURL,
		&o.Signatures.Client.AcceptText,
		&o.Signatures.Seller.Signed, &sellerSignedAt, &o.Signatures.Seller.SignatureURL,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	o.DiscountPercent = discountPercent
	o.Totals.DiscountPercent = discountPercent
	o.Signatures.Client.SignedAt = clientSignedAt
	o.Signatures.Seller.SignedAt = sellerSignedAt
	return &o, nil
}

func orderArgs(o *order.Order) []any {
	return []any{
		o.Number, o.ClientID, nullableID(o.SiteID), o.Status, o.PaymentType,
		o.OpeningDate, o.DueDate, o.TechnicalNotes, o.CommercialNotes,
		o.Totals.DiscountPercent, o.Totals.DiscountValue, o.Totals.Services,
		o.Totals.Materials, o.Totals.General, o.Totals.Final,
	}
}

func insertLines(ctx context.Context, tx pgx.Tx, o *order.Order) error {
	for i := range o.ServiceLines {
		l := &o.ServiceLines[i]
		_, err := tx.Exec(ctx, insertServiceLineSQL,
			o.ID, l.ServiceID, l.Quantity.Round(2), l.UnitPrice.Round(2), l.LineTotal.Round(2))
		if err != nil {
			return errors.Wrap(err, "insert service line")
		}
	}
	for i := range o.MaterialLines {
		l := &o.MaterialLines[i]
		_, err := tx.Exec(ctx, insertMaterialLineSQL,
			o.ID, l.ProductID, l.Quantity.Round(2), l.Unit, l.Packaging,
			l.UnitPrice.Round(2), l.TotalCost.Round(2))
		if err != nil {
			return errors.Wrap(err, "insert material line")
		}
	}
	return nil
}

func scanServiceLine(row pgx.CollectableRow) (order.ServiceLine, error) {
	var l order.ServiceLine
	err := row.Scan(&l.ServiceID, &l.Quantity, &l.UnitPrice, &l.LineTotal)
	return l, err
}

func scanMaterialLine(row pgx.CollectableRow) (order.MaterialLine, error) {
	var l order.MaterialLine
	err := row.Scan(&l.ProductID, &l.Quantity, &l.Unit, &l.Packaging, &l.UnitPrice, &l.TotalCost)
	return l, err
}

// nullableID maps an empty string to SQL NULL for optional UUID columns.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
