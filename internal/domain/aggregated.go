package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimelineEntry is one step of an aggregated transaction's history.
type TimelineEntry struct {
	CreatedAt     time.Time
	CreatedAtText string
	Status        TransactionStatus
	Amount        decimal.Decimal
}

// AggregatedTransaction folds every record sharing an authorization code into one view.
type AggregatedTransaction struct {
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CreatedAtText     string
	UpdatedAtText     string
	TransactionID     int64
	AuthorizationCode string
	Status            TransactionStatus
	Description       string
	TransactionType   TransactionType
	Metadata          Metadata
	Timeline          []TimelineEntry
}

// ChainDefect names the way a group failed to form a clean singly-linked chain.
type ChainDefect string

const (
	ChainDefectMissingInitial  ChainDefect = "missing_initial"
	ChainDefectMultipleInitial ChainDefect = "multiple_initial"
	ChainDefectBrokenLink      ChainDefect = "broken_link"
)

// Chain is the ordered sequence rebuilt from one authorization-code group.
// Defect is empty for a complete chain. Detached holds group members that
// could not be linked to Records and were left out of it.
type Chain struct {
	AuthorizationCode string
	Records           []Transaction
	Defect            ChainDefect
	Detached          []Transaction
}

// Complete reports whether every record of the group was linked.
func (c Chain) Complete() bool {
	return c.Defect == ""
}

// ChainIssue describes a malformed chain to API consumers.
type ChainIssue struct {
	AuthorizationCode      string
	Reason                 ChainDefect
	DetachedTransactionIDs []int64
}
