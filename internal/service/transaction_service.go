package service

import (
	"slices"

	"github.com/vanshika/txlens/internal/domain"
)

// RecordStore is the read-only lookup contract required by the query services.
type RecordStore interface {
	FindByCustomerID(customerID int64) []domain.Transaction
	FindByID(transactionID int64) (domain.Transaction, bool)
	FindByDeviceID(deviceID string) []domain.Transaction
}

// CustomerTransactions is the reconstructed history of one customer.
type CustomerTransactions struct {
	Transactions []domain.AggregatedTransaction
	Issues       []domain.ChainIssue
}

// TransactionService rebuilds a customer's records into aggregated transactions.
type TransactionService struct {
	store RecordStore
}

// NewTransactionService constructs a TransactionService over the given store.
func NewTransactionService(store RecordStore) *TransactionService {
	return &TransactionService{store: store}
}

// AggregatedTransactions returns one aggregated transaction per authorization
// code, oldest first. Groups that do not form a clean chain are still
// aggregated from their contiguous part and reported in Issues.
func (s *TransactionService) AggregatedTransactions(customerID int64) CustomerTransactions {
	records := s.store.FindByCustomerID(customerID)
	result := CustomerTransactions{
		Transactions: make([]domain.AggregatedTransaction, 0),
	}

	for _, group := range groupByAuthorizationCode(records) {
		chain := BuildChain(group)
		result.Transactions = append(result.Transactions, Aggregate(chain))
		if !chain.Complete() {
			result.Issues = append(result.Issues, chainIssue(chain))
		}
	}

	slices.SortStableFunc(result.Transactions, func(a, b domain.AggregatedTransaction) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return result
}
