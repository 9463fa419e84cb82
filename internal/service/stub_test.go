package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/txlens/internal/domain"
)

type stubStore struct {
	records []domain.Transaction
}

func (s *stubStore) FindByCustomerID(customerID int64) []domain.Transaction {
	var out []domain.Transaction
	for _, tx := range s.records {
		if tx.CustomerID == customerID {
			out = append(out, tx)
		}
	}
	return out
}

func (s *stubStore) FindByID(transactionID int64) (domain.Transaction, bool) {
	for _, tx := range s.records {
		if tx.TransactionID == transactionID {
			return tx, true
		}
	}
	return domain.Transaction{}, false
}

func (s *stubStore) FindByDeviceID(deviceID string) []domain.Transaction {
	var out []domain.Transaction
	for _, tx := range s.records {
		if tx.Metadata.DeviceID != nil && *tx.Metadata.DeviceID == deviceID {
			out = append(out, tx)
		}
	}
	return out
}

type stubWriter struct {
	mu    sync.Mutex
	seqs  map[int64]int
	errOn map[int64]error
	delay time.Duration
}

func (w *stubWriter) UpsertRecord(ctx context.Context, tx domain.Transaction, seq int) error {
	if w.delay > 0 {
		select {
		case <-time.After(w.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := w.errOn[tx.TransactionID]; err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seqs == nil {
		w.seqs = make(map[int64]int)
	}
	w.seqs[tx.TransactionID] = seq
	return nil
}

type recordOpt func(*domain.Transaction)

func relatedTo(id int64) recordOpt {
	return func(tx *domain.Transaction) { tx.Metadata.RelatedTransactionID = &id }
}

func onDevice(device string) recordOpt {
	return func(tx *domain.Transaction) { tx.Metadata.DeviceID = &device }
}

func withStatus(status domain.TransactionStatus) recordOpt {
	return func(tx *domain.Transaction) { tx.TransactionStatus = status }
}

func withType(txType domain.TransactionType) recordOpt {
	return func(tx *domain.Transaction) { tx.TransactionType = txType }
}

func withAmount(amount string) recordOpt {
	return func(tx *domain.Transaction) { tx.Amount = decimal.RequireFromString(amount) }
}

func withDateText(text string) recordOpt {
	return func(tx *domain.Transaction) { tx.DateText = text }
}

func withDescription(description string) recordOpt {
	return func(tx *domain.Transaction) { tx.Description = description }
}

var baseDate = time.Date(2022, 9, 1, 11, 46, 42, 0, time.UTC)

// record builds a SETTLED POS record dated day days after baseDate.
func record(id int64, code string, customerID int64, day int, opts ...recordOpt) domain.Transaction {
	tx := domain.Transaction{
		TransactionID:     id,
		AuthorizationCode: code,
		TransactionDate:   baseDate.AddDate(0, 0, day),
		CustomerID:        customerID,
		TransactionType:   domain.TransactionTypePOS,
		TransactionStatus: domain.TransactionStatusSettled,
		Description:       code,
		Amount:            decimal.NewFromInt(100),
	}
	for _, opt := range opts {
		opt(&tx)
	}
	return tx
}
