package store

import (
	"fmt"
	"io"

	"github.com/vanshika/txlens/internal/domain"
)

// Store is an immutable, indexed snapshot of transaction records. Once built it
// is never mutated, so any number of goroutines may read it without locking.
type Store struct {
	records    []domain.Transaction
	byID       map[int64]int
	byCustomer map[int64][]int
	byDevice   map[string][]int
}

// New validates the inputs and builds the snapshot with its lookup indexes.
// It returns a *ValidationError if any record is malformed; no partial store
// is ever returned.
func New(inputs []RecordInput) (*Store, error) {
	if err := validateInputs(inputs); err != nil {
		return nil, err
	}

	s := &Store{
		records:    make([]domain.Transaction, 0, len(inputs)),
		byID:       make(map[int64]int, len(inputs)),
		byCustomer: make(map[int64][]int),
		byDevice:   make(map[string][]int),
	}

	for i, in := range inputs {
		tx, err := in.toDomain()
		if err != nil {
			return nil, &ValidationError{Problems: []FieldError{{
				Index:  i,
				Field:  "transactionDate",
				Rule:   "datetime",
				Detail: err.Error(),
			}}}
		}
		pos := len(s.records)
		s.records = append(s.records, tx)
		s.byID[tx.TransactionID] = pos
		s.byCustomer[tx.CustomerID] = append(s.byCustomer[tx.CustomerID], pos)
		if tx.Metadata.DeviceID != nil {
			s.byDevice[*tx.Metadata.DeviceID] = append(s.byDevice[*tx.Metadata.DeviceID], pos)
		}
	}

	return s, nil
}

// FromJSON decodes and validates a JSON array of records in one step.
func FromJSON(r io.Reader) (*Store, error) {
	inputs, err := Decode(r)
	if err != nil {
		return nil, err
	}
	s, err := New(inputs)
	if err != nil {
		return nil, fmt.Errorf("build store: %w", err)
	}
	return s, nil
}

// FindByCustomerID returns the customer's records in insertion order.
func (s *Store) FindByCustomerID(customerID int64) []domain.Transaction {
	return s.collect(s.byCustomer[customerID])
}

// FindByID returns the record with the given id, if any.
func (s *Store) FindByID(transactionID int64) (domain.Transaction, bool) {
	pos, ok := s.byID[transactionID]
	if !ok {
		return domain.Transaction{}, false
	}
	return s.records[pos], true
}

// FindByDeviceID returns every record, across customers, made from the device.
func (s *Store) FindByDeviceID(deviceID string) []domain.Transaction {
	return s.collect(s.byDevice[deviceID])
}

// Len is the number of records held.
func (s *Store) Len() int {
	return len(s.records)
}

// Customers is the number of distinct customers owning at least one record.
func (s *Store) Customers() int {
	return len(s.byCustomer)
}

// Records returns a copy of every record in insertion order.
func (s *Store) Records() []domain.Transaction {
	return append([]domain.Transaction(nil), s.records...)
}

func (s *Store) collect(positions []int) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(positions))
	for _, pos := range positions {
		out = append(out, s.records[pos])
	}
	return out
}
