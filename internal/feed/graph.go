package feed

import (
	"context"

	"github.com/vanshika/txlens/internal/graph"
	"github.com/vanshika/txlens/internal/repository"
	"github.com/vanshika/txlens/internal/store"
)

// GraphSource reads records previously ingested into a Neo4j-compatible graph.
type GraphSource struct {
	Options graph.Options
	// Dial overrides how the client is created; graph.NewNeo4jClient by default.
	Dial func(ctx context.Context, opts graph.Options) (graph.Client, error)
}

func (s GraphSource) Fetch(ctx context.Context) ([]store.RecordInput, error) {
	dial := s.Dial
	if dial == nil {
		dial = graph.NewNeo4jClient
	}
	client, err := dial(ctx, s.Options)
	if err != nil {
		return nil, err
	}
	defer client.Close(context.WithoutCancel(ctx))

	return repository.New(client).ListRecords(ctx)
}

func (s GraphSource) String() string {
	return s.Options.String()
}
