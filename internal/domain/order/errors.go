package order

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for order lifecycle operations.
var (
	ErrNotFound = errors.New("order not found")
	ErrLocked   = errors.New("order is locked after signature")
)

// ValidationError indicates a required field is missing or malformed.
// The operation is rejected before any persistence call is issued.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AlreadySignedError indicates an attempt to sign a role that has already
// produced its immutable artifact.
type AlreadySignedError struct {
	Role     SignerRole
	SignedAt time.Time
}

func (e *AlreadySignedError) Error() string {
	return fmt.Sprintf("%s already signed at %s", e.Role, e.SignedAt.Format(time.RFC3339))
}

// UploadError wraps a blob store failure during signing. It is always
// raised before the order row is touched, so a failed upload never leaves
// an order marked signed without a stored image.
type UploadError struct {
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("signature upload: %s", e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
