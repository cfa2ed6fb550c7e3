package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharmuse/ideal-collor-os/internal/domain/client"
)

const (
	clientColumns = `id, name, document, phone, whatsapp, email, zip_code, street, number,
		complement, district, city, state, reference_point, created_at`

	listClientsSQL = `SELECT ` + clientColumns + ` FROM clients ORDER BY name`

	getClientSQL = `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	insertClientSQL = `INSERT INTO clients (name, document, phone, whatsapp, email, zip_code,
		street, number, complement, district, city, state, reference_point)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	updateClientSQL = `UPDATE clients SET name = $2, document = $3, phone = $4, whatsapp = $5,
		email = $6, zip_code = $7, street = $8, number = $9, complement = $10,
		district = $11, city = $12, state = $13, reference_point = $14
		WHERE id = $1`

	deleteClientSQL = `DELETE FROM clients WHERE id = $1`
)

var _ client.Repository = (*ClientRepository)(nil)

// ClientRepository implements client.Repository backed by PostgreSQL.
type ClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository returns a ClientRepository that uses the given pool.
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

func (r *ClientRepository) List(ctx context.Context) ([]client.Client, error) {
	rows, err := r.pool.Query(ctx, listClientsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	return pgx.CollectRows(rows, scanClient)
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*client.Client, error) {
	rows, err := r.pool.Query(ctx, getClientSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting client %q: %w", id, err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanClient)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, client.ErrNotFound
		}
		return nil, fmt.Errorf("getting client %q: %w", id, err)
	}
	return &c, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	err := r.pool.QueryRow(ctx, insertClientSQL,
		c.Name, c.Document, c.Phone, c.Whatsapp, c.Email, c.ZipCode,
		c.Street, c.Number, c.Complement, c.District, c.City, c.State, c.ReferencePoint,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating client %q: %w", c.Name, err)
	}
	return nil
}

func (r *ClientRepository) Update(ctx context.Context, c *client.Client) error {
	tag, err := r.pool.Exec(ctx, updateClientSQL,
		c.ID, c.Name, c.Document, c.Phone, c.Whatsapp, c.Email, c.ZipCode,
		c.Street, c.Number, c.Complement, c.District, c.City, c.State, c.ReferencePoint,
	)
	if err != nil {
		return fmt.Errorf("updating client %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return client.ErrNotFound
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteClientSQL, id)
	if err != nil {
		return fmt.Errorf("deleting client %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return client.ErrNotFound
	}
	return nil
}

func scanClient(row pgx.CollectableRow) (client.Client, error) {
	var c client.Client
	err := row.Scan(&c.ID, &c.Name, &c.Document, &c.Phone, &c.Whatsapp, &c.Email,
		&c.ZipCode, &c.Street, &c.Number, &c.Complement, &c.District,
		&c.City, &c.State, &c.ReferencePoint, &c.CreatedAt)
	return c, err
}
