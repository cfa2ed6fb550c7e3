package order

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sharmuse/ideal-collor-os/internal/domain/catalog"
)

// Status enumerates the lifecycle states of a service order.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// PaymentType enumerates the supported payment arrangements. Discounts are
// only available for cash payment.
type PaymentType string

const (
	PaymentInstallment PaymentType = "installment"
	PaymentCash        PaymentType = "cash"
)

// Valid reports whether p is one of the known payment types.
func (p PaymentType) Valid() bool {
	return p == PaymentInstallment || p == PaymentCash
}

// Packaging values known to reporting. Any other non-empty string is kept
// as entered and grouped under "other".
const (
	PackagingBag    = "bag"
	PackagingBucket = "bucket"
	PackagingGallon = "gallon"
	PackagingCan    = "can"
	PackagingOther  = "other"
)

// NormalizePackaging maps free-text packaging input onto the closed set,
// falling back to "other" for anything unrecognized.
func NormalizePackaging(s string) string {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "":
		return ""
	case PackagingBag, PackagingBucket, PackagingGallon, PackagingCan, PackagingOther:
		return v
	default:
		return PackagingOther
	}
}

// ParseAmount converts a user-entered decimal string into a decimal value.
// Empty, malformed, and negative input all normalize to zero; a comma is
// accepted as the decimal separator. It never fails.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ServiceLine is one billable labor row inside an order.
type ServiceLine struct {
	ServiceID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Recompute derives the line total from quantity and unit price. The result
// is kept unrounded; rounding happens only at the persistence and display
// boundary.
func (l *ServiceLine) Recompute() {
	l.LineTotal = l.Quantity.Mul(l.UnitPrice)
}

// ApplyService prefills the line from the selected catalog service. The
// service's labor price always becomes the line's starting price, even when
// a price was already entered.
func (l *ServiceLine) ApplyService(s *catalog.Service) {
	l.ServiceID = s.ID
	l.UnitPrice = s.LaborPrice
	l.Recompute()
}

// Committed reports whether the line carries enough data to be billed.
// Uncommitted lines are drafts: they contribute nothing to totals and are
// never persisted.
func (l *ServiceLine) Committed() bool {
	return l.ServiceID != "" && l.Quantity.IsPositive()
}

// MaterialLine is one billable material row inside an order.
type MaterialLine struct {
	ProductID string
	Quantity  decimal.Decimal
	Unit      string
	Packaging string
	UnitPrice decimal.Decimal
	TotalCost decimal.Decimal
}

// Recompute derives the total cost from quantity and unit price, unrounded.
func (l *MaterialLine) Recompute() {
	l.TotalCost = l.Quantity.Mul(l.UnitPrice)
}

// ApplyProduct prefills the line from the selected catalog product. Unlike
// service lines, existing values win: price and unit are only filled in when
// currently empty, so a manual override survives reselecting the product.
func (l *MaterialLine) ApplyProduct(p *catalog.Product) {
	l.ProductID = p.ID
	if l.UnitPrice.IsZero() {
		l.UnitPrice = p.Price
	}
	if l.Unit == "" {
		l.Unit = p.Unit
	}
	l.Recompute()
}

// Committed reports whether the line carries enough data to be billed.
func (l *MaterialLine) Committed() bool {
	return l.ProductID != "" && l.Quantity.IsPositive()
}

// Totals is the four-tier total tree persisted with every order. All money
// values are rounded to 2 decimal places; DiscountPercent is the effective
// (eligibility-checked, clamped) percentage.
type Totals struct {
	Services        decimal.Decimal
	Materials       decimal.Decimal
	General         decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountValue   decimal.Decimal
	Final           decimal.Decimal
}

// ComputeTotals derives the full total tree from the current line items,
// payment type, and the raw user-requested discount percent. Draft lines are
// excluded. The effective discount is re-derived on every call from the
// payment type and raw percent; a stored intermediate is never trusted.
// Intermediate sums stay unrounded, only the returned values are rounded.
func ComputeTotals(services []ServiceLine, materials []MaterialLine, payment PaymentType, requestedPercent decimal.Decimal) Totals {
	totalServices := decimal.Zero
	for i := range services {
		if !services[i].Committed() {
			continue
		}
		services[i].Recompute()
		totalServices = totalServices.Add(services[i].LineTotal)
	}

	totalMaterials := decimal.Zero
	for i := range materials {
		if !materials[i].Committed() {
			continue
		}
		materials[i].Recompute()
		totalMaterials = totalMaterials.Add(materials[i].TotalCost)
	}

	general := totalServices.Add(totalMaterials)
	percent := AllowedDiscount(payment, requestedPercent)
	discountValue := general.Mul(percent).Div(hundred)
	final := general.Sub(discountValue)

	return Totals{
		Services:        totalServices.Round(2),
		Materials:       totalMaterials.Round(2),
		General:         general.Round(2),
		DiscountPercent: percent,
		DiscountValue:   discountValue.Round(2),
		Final:           final.Round(2),
	}
}

// SignerRole identifies one of the two independent signature slots.
type SignerRole string

const (
	RoleClient SignerRole = "client"
	RoleSeller SignerRole = "seller"
)

// Valid reports whether r is a known signer role.
func (r SignerRole) Valid() bool {
	return r == RoleClient || r == RoleSeller
}

// SignedArtifact is the immutable record produced by a successful signing
// action. Once Signed is true the artifact never changes.
type SignedArtifact struct {
	Signed       bool
	SignedAt     *time.Time
	SignatureURL string
	// AcceptText is the frozen snapshot of the terms shown at signing time,
	// including the signer's name and document. Client role only.
	AcceptText string
}

// Signatures holds the two independent signature slots of an order.
type Signatures struct {
	Client SignedArtifact
	Seller SignedArtifact
}

// Locked reports whether any party has signed. A locked order can no longer
// be edited or deleted, so a signed total can never be invalidated.
func (s Signatures) Locked() bool {
	return s.Client.Signed || s.Seller.Signed
}

// Artifact returns the artifact slot for the given role.
func (s Signatures) Artifact(role SignerRole) SignedArtifact {
	if role == RoleSeller {
		return s.Seller
	}
	return s.Client
}

// Order is a work order binding a client, an optional job site, billable
// service and material lines, and the computed total tree.
type Order struct {
	ID              string
	Number          string
	ClientID        string
	SiteID          string
	Status          Status
	PaymentType     PaymentType
	OpeningDate     time.Time
	DueDate         *time.Time
	TechnicalNotes  string
	CommercialNotes string
	// DiscountPercent is the effective percent after the cash-only
	// eligibility check and clamp, same as Totals.DiscountPercent. A stored
	// order never carries an illegal discount.
	DiscountPercent decimal.Decimal
	Totals          Totals
	ServiceLines    []ServiceLine
	MaterialLines   []MaterialLine
	Signatures      Signatures
	CreatedAt       time.Time
}

// Summary is the list-view projection of an order.
type Summary struct {
	ID          string
	Number      string
	ClientName  string
	Status      Status
	PaymentType PaymentType
	OpeningDate time.Time
	DueDate     *time.Time
	TotalFinal  decimal.Decimal
}

// Repository defines persistence operations for orders. Create and Update
// are atomic: the order row and its committed line rows are written in a
// single transaction, and Update replaces the full child line sets.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]Summary, error)
	SaveSignature(ctx context.Context, id string, role SignerRole, a SignedArtifact) error
}
