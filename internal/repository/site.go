package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharmuse/ideal-collor-os/internal/domain/site"
)

const (
	siteColumns = `id, client_id, zip_code, street, number, complement, district, city, state,
		reference_point, main_service_type, area_m2, technical_notes, created_at`

	listSitesSQL = `SELECT ` + siteColumns + ` FROM sites ORDER BY created_at DESC`

	getSiteSQL = `SELECT ` + siteColumns + ` FROM sites WHERE id = $1`

	insertSiteSQL = `INSERT INTO sites (client_id, zip_code, street, number, complement, district,
		city, state, reference_point, main_service_type, area_m2, technical_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	updateSiteSQL = `UPDATE sites SET client_id = $2, zip_code = $3, street = $4, number = $5,
		complement = $6, district = $7, city = $8, state = $9, reference_point = $10,
		main_service_type = $11, area_m2 = $12, technical_notes = $13
		WHERE id = $1`

	deleteSiteSQL = `DELETE FROM sites WHERE id = $1`
)

var _ site.Repository = (*SiteRepository)(nil)

// SiteRepository implements site.Repository backed by PostgreSQL.
type SiteRepository struct {
	pool *pgxpool.Pool
}

// NewSiteRepository returns a SiteRepository that uses the given pool.
func NewSiteRepository(pool *pgxpool.Pool) *SiteRepository {
	return &SiteRepository{pool: pool}
}

func (r *SiteRepository) List(ctx context.Context) ([]site.Site, error) {
	rows, err := r.pool.Query(ctx, listSitesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	return pgx.CollectRows(rows, scanSite)
}

func (r *SiteRepository) GetByID(ctx context.Context, id string) (*site.Site, error) {
	rows, err := r.pool.Query(ctx, getSiteSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting site %q: %w", id, err)
	}
	s, err := pgx.CollectExactlyOneRow(rows, scanSite)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, site.ErrNotFound
		}
		return nil, fmt.Errorf("getting site %q: %w", id, err)
	}
	return &s, nil
}

func (r *SiteRepository) Create(ctx context.Context, s *site.Site) error {
	err := r.pool.QueryRow(ctx, insertSiteSQL,
		s.ClientID, s.ZipCode, s.Street, s.Number, s.Complement, s.District,
		s.City, s.State, s.ReferencePoint, s.MainServiceType, s.AreaM2, s.TechnicalNotes,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating site: %w", err)
	}
	return nil
}

func (r *SiteRepository) Update(ctx context.Context, s *site.Site) error {
	tag, err := r.pool.Exec(ctx, updateSiteSQL,
		s.ID, s.ClientID, s.ZipCode, s.Street, s.Number, s.Complement, s.District,
		s.City, s.State, s.ReferencePoint, s.MainServiceType, s.AreaM2, s.TechnicalNotes,
	)
	if err != nil {
		return fmt.Errorf("updating site %q: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return site.ErrNotFound
	}
	return nil
}

func (r *SiteRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteSiteSQL, id)
	if err != nil {
		return fmt.Errorf("deleting site %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return site.ErrNotFound
	}
	return nil
}

func scanSite(row pgx.CollectableRow) (site.Site, error) {
	var s site.Site
	err := row.Scan(&s.ID, &s.ClientID, &s.ZipCode, &s.Street, &s.Number, &s.Complement,
		&s.District, &s.City, &s.State, &s.ReferencePoint, &s.MainServiceType,
		&s.AreaM2, &s.TechnicalNotes, &s.CreatedAt)
	return s, err
}
