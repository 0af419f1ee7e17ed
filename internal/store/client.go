package store

import (
	"context"
	"errors"
)

// Client defines the minimal contract required by the repository to interact
// with the underlying transaction store.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is a simplified representation of a query response.
type Result struct {
	Records []Record
}

// Record groups key-value pairs returned from the store engine.
type Record map[string]any

// Options configures a store client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the store URI is not provided.
var ErrMissingURI = errors.New("store URI is required")
