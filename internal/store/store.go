// Package store defines the durable blob abstraction shared by the cache
// snapshot and the usage statistics.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when nothing has been written yet.
var ErrNotFound = errors.New("blob not found")

// Blob is a single opaque document that is read and replaced wholesale.
type Blob interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}
