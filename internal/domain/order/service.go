package order

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Input is the editable state of an order form: metadata plus the full
// current line sets, drafts included. Totals are never part of the input;
// they are always recomputed server-side.
type Input struct {
	ClientID        string
	SiteID          string
	Status          Status
	PaymentType     PaymentType
	OpeningDate     time.Time
	DueDate         *time.Time
	TechnicalNotes  string
	CommercialNotes string
	DiscountPercent decimal.Decimal
	ServiceLines    []ServiceLine
	MaterialLines   []MaterialLine
}

// Service encapsulates the order lifecycle: creation, replace-children
// updates, deletion, and the signature gate.
type Service struct {
	orders Repository
	blobs  BlobStore
	now    func() time.Time
	number func() string
}

// NewService creates an order Service backed by the given repository and
// signature blob store.
func NewService(orders Repository, blobs BlobStore) *Service {
	return &Service{
		orders: orders,
		blobs:  blobs,
		now:    time.Now,
		number: NewOrderNumber,
	}
}

// NewOrderNumber generates a human-referenceable order number. Uniqueness
// is not guaranteed in a strong sense; the row ID remains the real key.
func NewOrderNumber() string {
	return fmt.Sprintf("OS-%06d", 100000+rand.IntN(900000))
}

// Create validates the input, drops draft lines, recomputes the total tree,
// and persists the order with its committed lines atomically.
func (s *Service) Create(ctx context.Context, in Input) (*Order, error) {
	o, err := s.build(in)
	if err != nil {
		return nil, err
	}
	o.Number = s.number()

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// Update replaces the stored order with the given editable state. The
// existing child line sets are dropped and the current committed lines
// reinserted in one transaction: last writer wins at the granularity of the
// full line-item set. Orders with any signature are locked.
func (s *Service) Update(ctx context.Context, id string, in Input) (*Order, error) {
	existing, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Signatures.Locked() {
		return nil, ErrLocked
	}

	o, err := s.build(in)
	if err != nil {
		return nil, err
	}
	o.ID = existing.ID
	o.Number = existing.Number
	o.Signatures = existing.Signatures
	o.CreatedAt = existing.CreatedAt

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, errors.Wrap(err, "update order")
	}
	return o, nil
}

// Delete removes the order and its line rows, children first. Locked orders
// cannot be deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	existing, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Signatures.Locked() {
		return ErrLocked
	}
	return s.orders.Delete(ctx, id)
}

// LoadForEdit hydrates the full editable state of an order.
func (s *Service) LoadForEdit(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns order summaries, newest first.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	return s.orders.List(ctx)
}

// build normalizes an Input into a persistable Order: validation, draft
// exclusion, packaging normalization, and a full totals recompute.
func (s *Service) build(in Input) (*Order, error) {
	if in.ClientID == "" {
		return nil, &ValidationError{Field: "client_id", Reason: "client is required"}
	}
	if in.Status == "" {
		in.Status = StatusOpen
	}
	if !in.Status.Valid() {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", in.Status)}
	}
	if in.PaymentType == "" {
		in.PaymentType = PaymentInstallment
	}
	if !in.PaymentType.Valid() {
		return nil, &ValidationError{Field: "payment_type", Reason: fmt.Sprintf("unknown payment type %q", in.PaymentType)}
	}
	if in.OpeningDate.IsZero() {
		in.OpeningDate = s.now().Truncate(24 * time.Hour)
	}

	services := make([]ServiceLine, 0, len(in.ServiceLines))
	for _, l := range in.ServiceLines {
		if !l.Committed() {
			continue
		}
		l.Recompute()
		services = append(services, l)
	}

	materials := make([]MaterialLine, 0, len(in.MaterialLines))
	for _, l := range in.MaterialLines {
		if !l.Committed() {
			continue
		}
		l.Packaging = NormalizePackaging(l.Packaging)
		l.Recompute()
		materials = append(materials, l)
	}

	totals := ComputeTotals(services, materials, in.PaymentType, in.DiscountPercent)

	return &Order{
		ClientID:        in.ClientID,
		SiteID:          in.SiteID,
		Status:          in.Status,
		PaymentType:     in.PaymentType,
		OpeningDate:     in.OpeningDate,
		DueDate:         in.DueDate,
		TechnicalNotes:  in.TechnicalNotes,
		CommercialNotes: in.CommercialNotes,
		DiscountPercent: totals.DiscountPercent,
		Totals:          totals,
		ServiceLines:    services,
		MaterialLines:   materials,
	}, nil
}
