package graph

import (
	"context"
	"maps"
	"sync"
)

// ExecutedQuery is one statement seen by a MemoryClient.
type ExecutedQuery struct {
	Query  string
	Params map[string]any
}

// MemoryClient stands in for a graph server in tests. Writes are recorded,
// reads replay results queued with PushReadResult in FIFO order.
type MemoryClient struct {
	mu sync.Mutex

	writes  []ExecutedQuery
	reads   []ExecutedQuery
	pending []Result

	err          error
	connectivity error
	writeHook    func(ExecutedQuery) error
}

// NewMemoryClient returns an empty MemoryClient.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError fails every later query with err.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
	return m
}

// WithConnectivityError makes VerifyConnectivity return err.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	m.connectivity = err
	m.mu.Unlock()
	return m
}

// FailWritesWhere consults fn before recording each write; a non-nil return
// fails that write only.
func (m *MemoryClient) FailWritesWhere(fn func(ExecutedQuery) error) *MemoryClient {
	m.mu.Lock()
	m.writeHook = fn
	m.mu.Unlock()
	return m
}

// PushReadResult queues res for a later ExecuteRead.
func (m *MemoryClient) PushReadResult(res Result) {
	m.mu.Lock()
	m.pending = append(m.pending, res)
	m.mu.Unlock()
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	q := ExecutedQuery{Query: cypher, Params: maps.Clone(params)}
	if m.writeHook != nil {
		if err := m.writeHook(q); err != nil {
			return Result{}, err
		}
	}
	m.writes = append(m.writes, q)
	return Result{}, nil
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	m.reads = append(m.reads, ExecutedQuery{Query: cypher, Params: maps.Clone(params)})

	var res Result
	if len(m.pending) > 0 {
		res, m.pending = m.pending[0], m.pending[1:]
	}
	return res, nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error { return nil }

// WriteCalls returns the successful writes in execution order.
func (m *MemoryClient) WriteCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.writes...)
}

// ReadCalls returns the reads in execution order.
func (m *MemoryClient) ReadCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.reads...)
}
