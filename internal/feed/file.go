package feed

import (
	"context"
	"fmt"
	"os"

	"github.com/vanshika/txlens/internal/store"
)

// FileSource reads a JSON array of records from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Fetch(context.Context) ([]store.RecordInput, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer file.Close()
	return store.Decode(file)
}

func (s FileSource) String() string {
	return "file:" + s.Path
}
