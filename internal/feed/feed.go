// Package feed fetches the transaction records the service is built from.
// Records are fetched exactly once at startup and turned into an immutable
// store.Store; nothing is published if fetching or validation fails.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/vanshika/txlens/internal/config"
	"github.com/vanshika/txlens/internal/graph"
	"github.com/vanshika/txlens/internal/store"
)

// ErrUnsupportedSource is returned for a source URL with an unknown scheme.
var ErrUnsupportedSource = errors.New("unsupported feed source")

// Source yields the raw, unvalidated records of a feed.
type Source interface {
	Fetch(ctx context.Context) ([]store.RecordInput, error)
	// String describes the source for logs without leaking credentials.
	String() string
}

// Load fetches the records from src and builds the store from them.
func Load(ctx context.Context, src Source) (*store.Store, error) {
	inputs, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch records from %s: %w", src, err)
	}
	s, err := store.New(inputs)
	if err != nil {
		return nil, fmt.Errorf("records from %s: %w", src, err)
	}
	return s, nil
}

// NewSource picks a Source implementation from the scheme of cfg.Source.
// Graph sources reuse the credentials of graphCfg.
func NewSource(cfg config.FeedConfig, graphCfg config.GraphConfig) (Source, error) {
	raw := strings.TrimSpace(cfg.Source)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty source", ErrUnsupportedSource)
	}

	// A one-letter scheme is a Windows drive, as in C:\data\tx.json.
	u, err := url.Parse(raw)
	if err != nil || len(u.Scheme) <= 1 {
		return FileSource{Path: raw}, nil
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return HTTPSource{URL: raw, Client: &http.Client{Timeout: cfg.FetchTimeout}}, nil
	case "file":
		return FileSource{Path: u.Path}, nil
	case "postgres", "postgresql":
		return PostgresSource{DSN: raw}, nil
	case "neo4j", "neo4j+s", "neo4j+ssc", "bolt", "bolt+s", "bolt+ssc":
		return GraphSource{Options: graph.Options{
			URI:            raw,
			Database:       graphCfg.Database,
			Username:       graphCfg.Username,
			Password:       graphCfg.Password,
			MaxConnections: graphCfg.MaxConnections,
		}}, nil
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, u.Scheme)
	}
}

func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}
