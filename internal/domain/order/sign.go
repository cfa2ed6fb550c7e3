package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// BlobStore uploads signature images and returns a durable public URL.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// SignRequest is the input of a signing action for one role.
type SignRequest struct {
	Role           SignerRole
	SignerName     string
	SignerDocument string
	TermsAccepted  bool
	// Image is the captured signature raster (PNG bytes).
	Image []byte
}

// Sign executes the one-way UNSIGNED to SIGNED transition for one role of a
// persisted order. The image is uploaded first; the order row is only
// touched after a successful upload, so a failed upload never produces a
// signed order without a stored image. The two roles are fully independent.
func (s *Service) Sign(ctx context.Context, orderID string, req SignRequest) (*SignedArtifact, error) {
	if err := validateSignRequest(req); err != nil {
		return nil, err
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if current := o.Signatures.Artifact(req.Role); current.Signed {
		signedAt := s.now()
		if current.SignedAt != nil {
			signedAt = *current.SignedAt
		}
		return nil, &AlreadySignedError{Role: req.Role, SignedAt: signedAt}
	}

	now := s.now()
	key := fmt.Sprintf("%s-%s-%d.png", req.Role, o.ID, now.UnixMilli())
	url, err := s.blobs.Upload(ctx, key, req.Image, "image/png")
	if err != nil {
		return nil, &UploadError{Err: err}
	}

	artifact := SignedArtifact{
		Signed:       true,
		SignedAt:     &now,
		SignatureURL: url,
	}
	if req.Role == RoleClient {
		artifact.AcceptText = fmt.Sprintf("%s\n\nAssinante: %s - Documento: %s",
			TermsText, strings.TrimSpace(req.SignerName), strings.TrimSpace(req.SignerDocument))
	}

	if err := s.orders.SaveSignature(ctx, o.ID, req.Role, artifact); err != nil {
		return nil, errors.Wrap(err, "save signature")
	}
	return &artifact, nil
}

func validateSignRequest(req SignRequest) error {
	if !req.Role.Valid() {
		return &ValidationError{Field: "role", Reason: fmt.Sprintf("unknown signer role %q", req.Role)}
	}
	if strings.TrimSpace(req.SignerName) == "" {
		return &ValidationError{Field: "signer_name", Reason: "full name is required"}
	}
	if len(req.Image) == 0 {
		return &ValidationError{Field: "signature", Reason: "signature image is required"}
	}
	if !req.TermsAccepted {
		return &ValidationError{Field: "terms_accepted", Reason: "terms must be accepted"}
	}
	if req.Role == RoleClient && strings.TrimSpace(req.SignerDocument) == "" {
		return &ValidationError{Field: "signer_document", Reason: "document is required for the client signature"}
	}
	return nil
}
