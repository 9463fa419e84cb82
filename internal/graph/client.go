package graph

import (
	"context"
	"errors"
	"net/url"
)

// Client runs cypher against a Bolt-compatible graph. Implementations must be
// safe for concurrent use; the ingestion pool shares one client.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is the eagerly collected output of one query.
type Result struct {
	Records []Record
}

// Record is one returned row keyed by column alias.
type Record map[string]any

// Options locates and authenticates against the graph.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// String describes the target for logs. Credentials embedded in the URI are
// masked and the password field is never printed.
func (o Options) String() string {
	target := o.URI
	if u, err := url.Parse(o.URI); err == nil {
		target = u.Redacted()
	}
	if o.Database != "" {
		target += " db=" + o.Database
	}
	return target
}

// ErrMissingURI is returned when no graph URI is configured.
var ErrMissingURI = errors.New("graph URI is required")
