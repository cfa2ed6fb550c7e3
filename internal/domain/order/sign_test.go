package order

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSignRequest(role SignerRole) SignRequest {
	return SignRequest{
		Role:           role,
		SignerName:     "Maria Silva",
		SignerDocument: "123.456.789-00",
		TermsAccepted:  true,
		Image:          []byte{0x89, 0x50, 0x4e, 0x47},
	}
}

func TestSign_Validation(t *testing.T) {
	svc := newTestService(newOrderRepo(), &mockBlobStore{})

	tests := []struct {
		name   string
		mutate func(*SignRequest)
		field  string
	}{
		{"unknown role", func(r *SignRequest) { r.Role = "witness" }, "role"},
		{"missing name", func(r *SignRequest) { r.SignerName = "  " }, "signer_name"},
		{"missing image", func(r *SignRequest) { r.Image = nil }, "signature"},
		{"terms not accepted", func(r *SignRequest) { r.TermsAccepted = false }, "terms_accepted"},
		{"client without document", func(r *SignRequest) { r.SignerDocument = "" }, "signer_document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSignRequest(RoleClient)
			tt.mutate(&req)

			_, err := svc.Sign(context.Background(), "o1", req)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestSign_SellerNeedsNoDocument(t *testing.T) {
	repo := newOrderRepo(&Order{ID: "o1"})
	blobs := &mockBlobStore{url: "https://cdn.test/sig.png"}
	svc := newTestService(repo, blobs)

	req := validSignRequest(RoleSeller)
	req.SignerDocument = ""
	artifact, err := svc.Sign(context.Background(), "o1", req)
	require.NoError(t, err)

	assert.True(t, artifact.Signed)
	assert.Empty(t, artifact.AcceptText)
}

func TestSign_OrderNotFound(t *testing.T) {
	svc := newTestService(newOrderRepo(), &mockBlobStore{})

	_, err := svc.Sign(context.Background(), "missing", validSignRequest(RoleClient))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSign_Client(t *testing.T) {
	repo := newOrderRepo(&Order{ID: "o1"})
	blobs := &mockBlobStore{url: "https://cdn.test/sig.png"}
	svc := newTestService(repo, blobs)

	artifact, err := svc.Sign(context.Background(), "o1", validSignRequest(RoleClient))
	require.NoError(t, err)

	assert.True(t, artifact.Signed)
	require.NotNil(t, artifact.SignedAt)
	assert.Equal(t, "https://cdn.test/sig.png", artifact.SignatureURL)

	// The accept text freezes the terms with the signer's identity.
	assert.True(t, strings.Contains(artifact.AcceptText, TermsText))
	assert.True(t, strings.Contains(artifact.AcceptText, "Maria Silva"))
	assert.True(t, strings.Contains(artifact.AcceptText, "123.456.789-00"))

	assert.Equal(t, "image/png", blobs.lastType)
	assert.True(t, strings.HasPrefix(blobs.lastKey, "client-o1-"))
	assert.True(t, strings.HasSuffix(blobs.lastKey, ".png"))

	saved, ok := repo.saved[RoleClient]
	require.True(t, ok)
	assert.Equal(t, *artifact, saved)
}

func TestSign_AlreadySigned(t *testing.T) {
	signedAt := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	repo := newOrderRepo(&Order{
		ID: "o1",
		Signatures: Signatures{
			Client: SignedArtifact{Signed: true, SignedAt: &signedAt},
		},
	})
	blobs := &mockBlobStore{url: "https://cdn.test/sig.png"}
	svc := newTestService(repo, blobs)

	_, err := svc.Sign(context.Background(), "o1", validSignRequest(RoleClient))

	var serr *AlreadySignedError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, RoleClient, serr.Role)
	assert.Equal(t, signedAt, serr.SignedAt)
	// Nothing reached the blob store.
	assert.Empty(t, blobs.lastKey)
}

func TestSign_RolesAreIndependent(t *testing.T) {
	repo := newOrderRepo(&Order{
		ID:         "o1",
		Signatures: Signatures{Seller: SignedArtifact{Signed: true}},
	})
	svc := newTestService(repo, &mockBlobStore{url: "https://cdn.test/sig.png"})

	_, err := svc.Sign(context.Background(), "o1", validSignRequest(RoleClient))
	require.NoError(t, err)
}

func TestSign_UploadFailureLeavesOrderUntouched(t *testing.T) {
	repo := newOrderRepo(&Order{ID: "o1"})
	blobs := &mockBlobStore{err: errors.New("bucket unavailable")}
	svc := newTestService(repo, blobs)

	_, err := svc.Sign(context.Background(), "o1", validSignRequest(RoleClient))

	var uerr *UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Empty(t, repo.saved)
}
