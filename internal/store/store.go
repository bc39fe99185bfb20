// Package store persists the signed-in session on the local device.
package store

import (
	"context"
	"errors"
)

// Fixed keys of the persisted pair.
const (
	KeyUser = "user"
	KeyRole = "role"
)

var (
	// ErrNoSession is returned by LoadSession when nothing is persisted.
	ErrNoSession = errors.New("no persisted session")
	// ErrTornSession is returned by LoadSession when only one of the pair is
	// present. Callers should clear the store.
	ErrTornSession = errors.New("persisted session is incomplete")
)

// SessionStore persists the session blob and its denormalized role marker.
// Implementations write and clear both keys atomically.
type SessionStore interface {
	SaveSession(ctx context.Context, blob []byte, role string) error
	LoadSession(ctx context.Context) (blob []byte, role string, err error)
	ClearSession(ctx context.Context) error
	Close() error
}
