// Package credentials keeps the visitor's backend token pair between requests.
//
// Each browser gets an opaque visitor id in a sealed cookie; the access and
// refresh tokens themselves never leave the server and live in a Store keyed
// by that id.
package credentials

import (
	"context"
	"errors"
)

// Fixed per-visitor keys of the token pair.
const (
	KeyAccess  = "access"
	KeyRefresh = "refresh"
)

var ErrNoCredential = errors.New("credentials: none stored")

type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (t Tokens) Empty() bool {
	return t.Access == ""
}

// Store persists token pairs by visitor id.
type Store interface {
	Load(ctx context.Context, visitorID string) (Tokens, error)
	Save(ctx context.Context, visitorID string, t Tokens) error
	Clear(ctx context.Context, visitorID string) error
}
