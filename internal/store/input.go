package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/txlens/internal/domain"
)

// MetadataInput is the unvalidated metadata object of a feed record.
type MetadataInput struct {
	RelatedTransactionID *int64  `json:"relatedTransactionId,omitempty"`
	DeviceID             *string `json:"deviceId,omitempty"`
}

// RecordInput is a transaction record as delivered by a feed, before validation.
// Pointer fields distinguish a missing value from a zero value.
type RecordInput struct {
	TransactionID     *int64           `json:"transactionId" validate:"required"`
	AuthorizationCode *string          `json:"authorizationCode" validate:"required"`
	TransactionDate   *string          `json:"transactionDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	CustomerID        *int64           `json:"customerId" validate:"required"`
	TransactionType   *string          `json:"transactionType" validate:"required,oneof=ACH_INCOMING POS WIRE_OUTGOING WIRE_INCOMING P2P_SEND P2P_RECEIVE FEE"`
	TransactionStatus *string          `json:"transactionStatus" validate:"required,oneof=PENDING SETTLED RETURNED PROCESSING"`
	Description       *string          `json:"description" validate:"required"`
	Amount            *decimal.Decimal `json:"amount" validate:"required"`
	Metadata          *MetadataInput   `json:"metadata" validate:"required"`
}

// toDomain converts a validated input. It must only be called after validation succeeded.
func (in RecordInput) toDomain() (domain.Transaction, error) {
	date, err := time.Parse(time.RFC3339, *in.TransactionDate)
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		TransactionID:     *in.TransactionID,
		AuthorizationCode: *in.AuthorizationCode,
		TransactionDate:   date,
		DateText:          *in.TransactionDate,
		CustomerID:        *in.CustomerID,
		TransactionType:   domain.TransactionType(*in.TransactionType),
		TransactionStatus: domain.TransactionStatus(*in.TransactionStatus),
		Description:       *in.Description,
		Amount:            *in.Amount,
		Metadata: domain.Metadata{
			RelatedTransactionID: in.Metadata.RelatedTransactionID,
			DeviceID:             in.Metadata.DeviceID,
		},
	}, nil
}

// InputFromDomain builds a RecordInput mirroring an existing record.
func InputFromDomain(tx domain.Transaction) RecordInput {
	date := tx.DateString()
	txType := string(tx.TransactionType)
	status := string(tx.TransactionStatus)
	id := tx.TransactionID
	customerID := tx.CustomerID
	code := tx.AuthorizationCode
	description := tx.Description
	amount := tx.Amount
	return RecordInput{
		TransactionID:     &id,
		AuthorizationCode: &code,
		TransactionDate:   &date,
		CustomerID:        &customerID,
		TransactionType:   &txType,
		TransactionStatus: &status,
		Description:       &description,
		Amount:            &amount,
		Metadata: &MetadataInput{
			RelatedTransactionID: tx.Metadata.RelatedTransactionID,
			DeviceID:             tx.Metadata.DeviceID,
		},
	}
}
