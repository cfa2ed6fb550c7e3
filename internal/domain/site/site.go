// Package site holds the job sites (construction works) registry.
package site

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("site not found")

// Site is a job site belonging to a client.
type Site struct {
	ID              string
	ClientID        string
	ZipCode         string
	Street          string
	Number          string
	Complement      string
	District        string
	City            string
	State           string
	ReferencePoint  string
	MainServiceType string
	AreaM2          decimal.Decimal
	TechnicalNotes  string
	CreatedAt       time.Time
}

// Repository defines persistence operations for sites.
type Repository interface {
	List(ctx context.Context) ([]Site, error)
	GetByID(ctx context.Context, id string) (*Site, error)
	Create(ctx context.Context, s *Site) error
	Update(ctx context.Context, s *Site) error
	Delete(ctx context.Context, id string) error
}
