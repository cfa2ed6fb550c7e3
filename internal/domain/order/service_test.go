package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	byID      map[string]*Order
	created   *Order
	updated   *Order
	deletedID string
	saved     map[SignerRole]SignedArtifact
	err       error
}

func newOrderRepo(orders ...*Order) *mockOrderRepo {
	byID := make(map[string]*Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	return &mockOrderRepo{byID: byID, saved: make(map[SignerRole]SignedArtifact)}
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	if m.err != nil {
		return m.err
	}
	o.ID = "generated-id"
	m.created = o
	return nil
}

func (m *mockOrderRepo) Update(_ context.Context, o *Order) error {
	if m.err != nil {
		return m.err
	}
	m.updated = o
	return nil
}

func (m *mockOrderRepo) Delete(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deletedID = id
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]Summary, error) {
	return nil, nil
}

func (m *mockOrderRepo) SaveSignature(_ context.Context, _ string, role SignerRole, a SignedArtifact) error {
	if m.err != nil {
		return m.err
	}
	m.saved[role] = a
	return nil
}

type mockBlobStore struct {
	lastKey  string
	lastType string
	url      string
	err      error
}

func (m *mockBlobStore) Upload(_ context.Context, key string, _ []byte, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.lastKey = key
	m.lastType = contentType
	return m.url, nil
}

// --- Helpers ---

func newTestService(repo *mockOrderRepo, blobs *mockBlobStore) *Service {
	svc := NewService(repo, blobs)
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC) }
	svc.number = func() string { return "OS-000042" }
	return svc
}

func validInput() Input {
	return Input{
		ClientID:    "c1",
		PaymentType: PaymentCash,
		ServiceLines: []ServiceLine{
			{ServiceID: "s1", Quantity: dec("10"), UnitPrice: dec("14")},
		},
		MaterialLines: []MaterialLine{
			{ProductID: "p1", Quantity: dec("2"), UnitPrice: dec("29.90"), Packaging: " Can "},
		},
		DiscountPercent: dec("10"),
	}
}

// --- Tests ---

func TestCreate_MissingClient(t *testing.T) {
	svc := newTestService(newOrderRepo(), &mockBlobStore{})

	_, err := svc.Create(context.Background(), Input{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "client_id", verr.Field)
}

func TestCreate_UnknownStatus(t *testing.T) {
	svc := newTestService(newOrderRepo(), &mockBlobStore{})

	in := validInput()
	in.Status = "archived"
	_, err := svc.Create(context.Background(), in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestCreate_Defaults(t *testing.T) {
	repo := newOrderRepo()
	svc := newTestService(repo, &mockBlobStore{})

	in := validInput()
	in.PaymentType = ""
	in.DiscountPercent = decimal.Zero
	o, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, StatusOpen, o.Status)
	assert.Equal(t, PaymentInstallment, o.PaymentType)
	assert.False(t, o.OpeningDate.IsZero())
	assert.Equal(t, "OS-000042", o.Number)
	require.Same(t, o, repo.created)
}

func TestCreate_TotalsAndNormalization(t *testing.T) {
	repo := newOrderRepo()
	svc := newTestService(repo, &mockBlobStore{})

	in := validInput()
	in.ServiceLines = append(in.ServiceLines, ServiceLine{Quantity: dec("99")}) // draft
	o, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	// Drafts are gone from the persisted order, not just the totals.
	require.Len(t, o.ServiceLines, 1)
	require.Len(t, o.MaterialLines, 1)
	assert.Equal(t, PackagingCan, o.MaterialLines[0].Packaging)

	// 140 + 59.80 = 199.80, cash 10% clamps to 8%: 15.984 -> 15.98
	assert.True(t, o.Totals.General.Equal(dec("199.80")))
	assert.True(t, o.Totals.DiscountPercent.Equal(dec("8")))
	assert.True(t, o.Totals.DiscountValue.Equal(dec("15.98")), "got %s", o.Totals.DiscountValue)
	assert.True(t, o.Totals.Final.Equal(dec("183.82")), "got %s", o.Totals.Final)
	assert.True(t, o.DiscountPercent.Equal(dec("8")))
}

func TestUpdate_PreservesIdentityAndSignatures(t *testing.T) {
	created := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	existing := &Order{
		ID:        "o1",
		Number:    "OS-000001",
		ClientID:  "c1",
		CreatedAt: created,
	}
	repo := newOrderRepo(existing)
	svc := newTestService(repo, &mockBlobStore{})

	o, err := svc.Update(context.Background(), "o1", validInput())
	require.NoError(t, err)

	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, "OS-000001", o.Number)
	assert.Equal(t, created, o.CreatedAt)
	require.Same(t, o, repo.updated)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(newOrderRepo(), &mockBlobStore{})

	_, err := svc.Update(context.Background(), "missing", validInput())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_LockedAfterSignature(t *testing.T) {
	existing := &Order{
		ID:         "o1",
		Signatures: Signatures{Seller: SignedArtifact{Signed: true}},
	}
	repo := newOrderRepo(existing)
	svc := newTestService(repo, &mockBlobStore{})

	_, err := svc.Update(context.Background(), "o1", validInput())
	require.ErrorIs(t, err, ErrLocked)
	assert.Nil(t, repo.updated)
}

func TestDelete_LockedAfterSignature(t *testing.T) {
	existing := &Order{
		ID:         "o1",
		Signatures: Signatures{Client: SignedArtifact{Signed: true}},
	}
	repo := newOrderRepo(existing)
	svc := newTestService(repo, &mockBlobStore{})

	err := svc.Delete(context.Background(), "o1")
	require.ErrorIs(t, err, ErrLocked)
	assert.Empty(t, repo.deletedID)
}

func TestDelete(t *testing.T) {
	repo := newOrderRepo(&Order{ID: "o1"})
	svc := newTestService(repo, &mockBlobStore{})

	require.NoError(t, svc.Delete(context.Background(), "o1"))
	assert.Equal(t, "o1", repo.deletedID)
}

func TestCreate_RepoError(t *testing.T) {
	repo := newOrderRepo()
	repo.err = errors.New("connection reset")
	svc := newTestService(repo, &mockBlobStore{})

	_, err := svc.Create(context.Background(), validInput())
	require.Error(t, err)
}

func TestNewOrderNumber(t *testing.T) {
	for range 100 {
		n := NewOrderNumber()
		require.Len(t, n, 9)
		assert.Equal(t, "OS-", n[:3])
	}
}
