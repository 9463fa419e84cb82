package service

import (
	"slices"
	"testing"

	"github.com/vanshika/txlens/internal/domain"
)

func TestAggregatedTransactionsSortedByCreation(t *testing.T) {
	store := &stubStore{records: []domain.Transaction{
		record(1, "F10000", 1, 5, withStatus(domain.TransactionStatusPending)),
		record(2, "F10000", 1, 7, relatedTo(1)),
		record(3, "F10001", 1, 1),
		record(4, "F10002", 2, 0),
		record(5, "F10003", 1, 5),
	}}

	result := NewTransactionService(store).AggregatedTransactions(1)
	if len(result.Issues) != 0 {
		t.Fatalf("unexpected issues %+v", result.Issues)
	}

	var got []int64
	for _, agg := range result.Transactions {
		got = append(got, agg.TransactionID)
	}
	// 1 and 5 share a creation date; encounter order decides.
	if !slices.Equal(got, []int64{3, 1, 5}) {
		t.Fatalf("order = %v", got)
	}
	if len(result.Transactions[1].Timeline) != 2 {
		t.Fatalf("expected two-step timeline, got %+v", result.Transactions[1].Timeline)
	}
}

func TestAggregatedTransactionsUnknownCustomer(t *testing.T) {
	result := NewTransactionService(&stubStore{}).AggregatedTransactions(111)
	if result.Transactions == nil || len(result.Transactions) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", result.Transactions)
	}
	if result.Issues != nil {
		t.Fatalf("expected no issues, got %+v", result.Issues)
	}
}

func TestAggregatedTransactionsReportsMalformedChain(t *testing.T) {
	store := &stubStore{records: []domain.Transaction{
		record(1, "A", 1, 0, withStatus(domain.TransactionStatusPending)),
		record(2, "A", 1, 1, relatedTo(1)),
		record(3, "A", 1, 2, relatedTo(77), withStatus(domain.TransactionStatusReturned)),
	}}

	result := NewTransactionService(store).AggregatedTransactions(1)
	if len(result.Transactions) != 1 {
		t.Fatalf("expected one aggregate, got %d", len(result.Transactions))
	}
	agg := result.Transactions[0]
	if agg.Status != domain.TransactionStatusSettled || len(agg.Timeline) != 2 {
		t.Fatalf("detached record leaked into aggregate: %+v", agg)
	}
	if len(result.Issues) != 1 {
		t.Fatalf("expected one issue, got %+v", result.Issues)
	}
	issue := result.Issues[0]
	if issue.AuthorizationCode != "A" || issue.Reason != domain.ChainDefectBrokenLink || !slices.Equal(issue.DetachedTransactionIDs, []int64{3}) {
		t.Fatalf("unexpected issue %+v", issue)
	}
}

func TestAggregatedTransactionsIgnoresOtherCustomersInSameGroup(t *testing.T) {
	// Both sides of a P2P transfer may share an authorization code; each
	// customer only sees their own side.
	store := &stubStore{records: []domain.Transaction{
		record(15, "F10007", 3, 0, withType(domain.TransactionTypeP2PSend), relatedTo(16)),
		record(16, "F10007", 4, 0, withType(domain.TransactionTypeP2PReceive), relatedTo(15)),
	}}

	result := NewTransactionService(store).AggregatedTransactions(3)
	if len(result.Transactions) != 1 || result.Transactions[0].TransactionID != 15 {
		t.Fatalf("unexpected aggregates %+v", result.Transactions)
	}
	if len(result.Issues) != 0 {
		t.Fatalf("counterpart link reported as malformed: %+v", result.Issues)
	}
}
