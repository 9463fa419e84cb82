package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction record.
type TransactionType string

const (
	TransactionTypeACHIncoming  TransactionType = "ACH_INCOMING"
	TransactionTypePOS          TransactionType = "POS"
	TransactionTypeWireOutgoing TransactionType = "WIRE_OUTGOING"
	TransactionTypeWireIncoming TransactionType = "WIRE_INCOMING"
	TransactionTypeP2PSend      TransactionType = "P2P_SEND"
	TransactionTypeP2PReceive   TransactionType = "P2P_RECEIVE"
	TransactionTypeFee          TransactionType = "FEE"
)

// IsP2P reports whether the type is one side of a peer-to-peer transfer.
func (t TransactionType) IsP2P() bool {
	return t == TransactionTypeP2PSend || t == TransactionTypeP2PReceive
}

// TransactionStatus is the lifecycle state carried by a single record.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "PENDING"
	TransactionStatusSettled    TransactionStatus = "SETTLED"
	TransactionStatusReturned   TransactionStatus = "RETURNED"
	TransactionStatusProcessing TransactionStatus = "PROCESSING"
)

// Metadata links a record to its predecessor (or P2P counterpart) and to the device used.
type Metadata struct {
	RelatedTransactionID *int64
	DeviceID             *string
}

// HasRelated reports whether the record carries a back-reference.
func (m Metadata) HasRelated() bool {
	return m.RelatedTransactionID != nil
}

// Transaction is a single validated lifecycle event of a logical transaction.
type Transaction struct {
	TransactionID     int64
	AuthorizationCode string
	TransactionDate   time.Time
	// DateText is TransactionDate exactly as the feed published it. Empty for
	// records built in code.
	DateText          string
	CustomerID        int64
	TransactionType   TransactionType
	TransactionStatus TransactionStatus
	Description       string
	Amount            decimal.Decimal
	Metadata          Metadata
}

// DateString renders the record's date the way it was received.
func (tx Transaction) DateString() string {
	if tx.DateText != "" {
		return tx.DateText
	}
	return tx.TransactionDate.Format(time.RFC3339Nano)
}
