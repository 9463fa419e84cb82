package generator

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vanshika/txlens/internal/domain"
	"github.com/vanshika/txlens/internal/service"
	"github.com/vanshika/txlens/internal/store"
)

func generate(t *testing.T, cfg Config) Dataset {
	t.Helper()
	dataset, err := New(cfg).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return dataset
}

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumTransactions = 50

	var first, second bytes.Buffer
	if err := Encode(&first, generate(t, cfg)); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if err := Encode(&second, generate(t, cfg)); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Fatalf("same seed produced different datasets")
	}
}

func TestGeneratedDatasetLoadsCleanly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumCustomers = 10
	cfg.NumTransactions = 200
	cfg.P2PChance = 0.3
	cfg.ReturnChance = 0.5

	var buf bytes.Buffer
	if err := Encode(&buf, generate(t, cfg)); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	s, err := store.FromJSON(&buf)
	if err != nil {
		t.Fatalf("generated feed failed validation: %v", err)
	}

	txs := service.NewTransactionService(s)
	rels := service.NewRelationshipService(s)
	sawTransfer, sawReturn := false, false

	for customer := int64(1); customer <= int64(cfg.NumCustomers); customer++ {
		result := txs.AggregatedTransactions(customer)
		if len(result.Issues) != 0 {
			t.Fatalf("customer %d: generated malformed chains %+v", customer, result.Issues)
		}
		for _, agg := range result.Transactions {
			if agg.Status == domain.TransactionStatusReturned {
				sawReturn = true
			}
		}
		for _, edge := range rels.RelatedCustomers(customer) {
			if edge.RelatedCustomerID == customer {
				t.Fatalf("customer %d related to itself: %+v", customer, edge)
			}
			if edge.RelationType == domain.RelationTypeP2PSend {
				sawTransfer = true
			}
		}
	}

	if !sawTransfer || !sawReturn {
		t.Fatalf("expected transfers and returned chains, got transfer=%v return=%v", sawTransfer, sawReturn)
	}
}

func TestTransfersReferenceEachOther(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumCustomers = 2
	cfg.NumTransactions = 20
	cfg.P2PChance = 1

	dataset := generate(t, cfg)
	if len(dataset.Records) != 40 {
		t.Fatalf("expected two records per transfer, got %d", len(dataset.Records))
	}
	s, err := store.New(dataset.Records)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	for _, tx := range s.Records() {
		counterpart, ok := s.FindByID(*tx.Metadata.RelatedTransactionID)
		if !ok {
			t.Fatalf("record %d: dangling counterpart", tx.TransactionID)
		}
		if counterpart.CustomerID == tx.CustomerID {
			t.Fatalf("record %d: transfer to self", tx.TransactionID)
		}
		if !counterpart.Amount.Neg().Equal(tx.Amount) {
			t.Fatalf("record %d: amounts do not mirror", tx.TransactionID)
		}
	}
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(DefaultConfig()).Generate(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWriteDataset(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	cfg := DefaultConfig()
	cfg.NumTransactions = 5

	if err := WriteDataset(generate(t, cfg), dir); err != nil {
		t.Fatalf("WriteDataset() error = %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "transactions.json"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if bytes.Contains(raw, []byte(`"amount": "`)) {
		t.Fatalf("amounts must be JSON numbers:\n%s", raw)
	}
	if _, err := store.FromJSON(bytes.NewReader(raw)); err != nil {
		t.Fatalf("written feed failed validation: %v", err)
	}
}
