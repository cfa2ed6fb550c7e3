// Package client holds the customer registry.
package client

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var ErrNotFound = errors.New("client not found")

// Client is a customer of the contractor. Address fields follow the
// Brazilian postal layout the business operates in.
type Client struct {
	ID             string
	Name           string
	Document       string
	Phone          string
	Whatsapp       string
	Email          string
	ZipCode        string
	Street         string
	Number         string
	Complement     string
	District       string
	City           string
	State          string
	ReferencePoint string
	CreatedAt      time.Time
}

// Repository defines persistence operations for clients.
type Repository interface {
	List(ctx context.Context) ([]Client, error)
	GetByID(ctx context.Context, id string) (*Client, error)
	Create(ctx context.Context, c *Client) error
	Update(ctx context.Context, c *Client) error
	Delete(ctx context.Context, id string) error
}
