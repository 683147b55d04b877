// Package storage is the durable key-value store that backs the guest cart
// and the login session on the client.
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
