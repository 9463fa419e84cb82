package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/vanshika/txlens/internal/store"
)

// HTTPSource downloads a JSON array of records with a single GET.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Fetch(ctx context.Context) ([]store.RecordInput, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet)
	}
	return store.Decode(resp.Body)
}

func (s HTTPSource) String() string {
	return redact(s.URL)
}
