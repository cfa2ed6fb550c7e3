package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharmuse/ideal-collor-os/internal/domain/auth"
	"github.com/sharmuse/ideal-collor-os/internal/domain/order"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	byID map[string]*order.Order
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	o.ID = "o-new"
	return nil
}

func (m *mockOrderRepo) Update(_ context.Context, _ *order.Order) error { return nil }
func (m *mockOrderRepo) Delete(_ context.Context, _ string) error       { return nil }

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]order.Summary, error) { return nil, nil }

func (m *mockOrderRepo) SaveSignature(_ context.Context, _ string, _ order.SignerRole, _ order.SignedArtifact) error {
	return nil
}

type mockBlobStore struct{}

func (mockBlobStore) Upload(_ context.Context, _ string, _ []byte, _ string) (string, error) {
	return "https://cdn.test/sig.png", nil
}

// --- Helpers ---

func newTestRouter(t *testing.T, repo *mockOrderRepo) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokens([]byte("test-secret"), time.Hour)
	token, err := tokens.Issue(&auth.User{ID: "u1", Email: "admin@test"})
	require.NoError(t, err)

	h := New(Deps{
		Orders: order.NewService(repo, mockBlobStore{}),
		Tokens: tokens,
	})
	engine := gin.New()
	h.Routes(engine.Group("/api"))
	return engine, token
}

func doJSON(engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// --- Tests ---

func TestOrders_RequireAuth(t *testing.T) {
	engine, _ := newTestRouter(t, &mockOrderRepo{})

	w := doJSON(engine, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(engine, http.MethodGet, "/api/orders", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPreviewTotals(t *testing.T) {
	engine, token := newTestRouter(t, &mockOrderRepo{})

	body := map[string]any{
		"payment_type":     "cash",
		"discount_percent": "10",
		"service_lines": []map[string]any{
			{"service_id": "s1", "quantity": "10", "unit_price": "14"},
			{"quantity": "5", "unit_price": "100"}, // draft, no service
		},
		"material_lines": []map[string]any{
			{"product_id": "p1", "quantity": "2", "unit_price": "29,90"},
		},
	}
	w := doJSON(engine, http.MethodPost, "/api/orders/totals", token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "140", got["total_services"])
	assert.Equal(t, "59.8", got["total_materials"])
	assert.Equal(t, "199.8", got["total_general"])
	assert.Equal(t, "8", got["discount_percent"])
	assert.Equal(t, "15.98", got["discount_value"])
	assert.Equal(t, "183.82", got["total_final"])
}

func TestCreateOrder_Validation(t *testing.T) {
	engine, token := newTestRouter(t, &mockOrderRepo{})

	w := doJSON(engine, http.MethodPost, "/api/orders", token, map[string]any{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "client_id", got["field"])
}

func TestCreateOrder(t *testing.T) {
	engine, token := newTestRouter(t, &mockOrderRepo{})

	body := map[string]any{
		"client_id":    "c1",
		"payment_type": "installment",
		"opening_date": "2026-03-14",
	}
	w := doJSON(engine, http.MethodPost, "/api/orders", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "o-new", got["id"])
	assert.Equal(t, "open", got["status"])
	assert.Equal(t, "2026-03-14", got["opening_date"])
}

func TestGetOrder_NotFound(t *testing.T) {
	engine, token := newTestRouter(t, &mockOrderRepo{})

	w := doJSON(engine, http.MethodGet, "/api/orders/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateOrder_Locked(t *testing.T) {
	repo := &mockOrderRepo{byID: map[string]*order.Order{
		"o1": {
			ID:         "o1",
			Signatures: order.Signatures{Client: order.SignedArtifact{Signed: true}},
		},
	}}
	engine, token := newTestRouter(t, repo)

	w := doJSON(engine, http.MethodPut, "/api/orders/o1", token, map[string]any{"client_id": "c1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignOrder_AlreadySigned(t *testing.T) {
	signedAt := time.Now()
	repo := &mockOrderRepo{byID: map[string]*order.Order{
		"o1": {
			ID: "o1",
			Signatures: order.Signatures{
				Seller: order.SignedArtifact{Signed: true, SignedAt: &signedAt},
			},
		},
	}}
	engine, token := newTestRouter(t, repo)

	body := map[string]any{
		"role":           "seller",
		"signer_name":    "João Pereira",
		"terms_accepted": true,
		"signature":      "iVBORw0KGgo=",
	}
	w := doJSON(engine, http.MethodPost, "/api/orders/o1/sign", token, body)
	require.Equal(t, http.StatusConflict, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "seller", got["role"])
}

func TestSignOrder_DataURL(t *testing.T) {
	repo := &mockOrderRepo{byID: map[string]*order.Order{"o1": {ID: "o1"}}}
	engine, token := newTestRouter(t, repo)

	body := map[string]any{
		"role":            "client",
		"signer_name":     "Maria Silva",
		"signer_document": "123.456.789-00",
		"terms_accepted":  true,
		"signature":       "data:image/png;base64,iVBORw0KGgo=",
	}
	w := doJSON(engine, http.MethodPost, "/api/orders/o1/sign", token, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, true, got["signed"])
	assert.Equal(t, "https://cdn.test/sig.png", got["signature_url"])
}
