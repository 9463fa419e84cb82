package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vanshika/txlens/internal/domain"
)

// TaskError accumulates the per-record failures of a bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d records failed: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// RecordWriter persists a single record. seq is the record's position in the
// source feed and lets readers restore insertion order.
type RecordWriter interface {
	UpsertRecord(ctx context.Context, tx domain.Transaction, seq int) error
}

// BulkIngestor pushes validated records to a RecordWriter using a worker pool.
type BulkIngestor struct {
	writer  RecordWriter
	workers int
}

// NewBulkIngestor creates a BulkIngestor with the provided concurrency.
func NewBulkIngestor(writer RecordWriter, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	return &BulkIngestor{
		writer:  writer,
		workers: workers,
	}
}

// IngestRecords writes every record concurrently and reports all failures at once.
func (bi *BulkIngestor) IngestRecords(ctx context.Context, records []domain.Transaction) error {
	return bi.run(ctx, len(records), func(idx int) error {
		tx := records[idx]
		if err := bi.writer.UpsertRecord(ctx, tx, idx); err != nil {
			return fmt.Errorf("record %d: %w", tx.TransactionID, err)
		}
		return nil
	})
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	for i := 0; i < bi.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				if err := workerFn(idx); err != nil {
					errCh <- err
				}
			}
		}()
	}

	dispatched := 0
Loop:
	for ; dispatched < total; dispatched++ {
		select {
		case indexCh <- dispatched:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if dispatched < total {
		return ctx.Err()
	}

	var taskErr TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
