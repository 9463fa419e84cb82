package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vanshika/txlens/internal/domain"
	"github.com/vanshika/txlens/internal/graph"
	"github.com/vanshika/txlens/internal/store"
)

// Repository persists transaction records as a graph of customers, records and devices.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// UpsertRecord stores a record node, its owner, its back-reference and its
// device. seq is persisted so that ListRecords can restore feed order.
func (r *Repository) UpsertRecord(ctx context.Context, tx domain.Transaction, seq int) error {
	params := map[string]any{
		"transactionId":        tx.TransactionID,
		"customerId":           tx.CustomerID,
		"props":                recordProperties(tx, seq),
		"relatedTransactionId": nil,
		"deviceId":             nil,
	}
	if ref := tx.Metadata.RelatedTransactionID; ref != nil {
		params["relatedTransactionId"] = *ref
	}
	if device := tx.Metadata.DeviceID; device != nil {
		params["deviceId"] = *device
	}

	if _, err := r.client.ExecuteWrite(ctx, upsertRecordCypher, params); err != nil {
		return fmt.Errorf("upsert record %d: %w", tx.TransactionID, err)
	}
	return nil
}

// ListRecords returns every ingested record in feed order. Values are returned
// unvalidated; the caller is expected to pass them through store.New.
func (r *Repository) ListRecords(ctx context.Context) ([]store.RecordInput, error) {
	res, err := r.client.ExecuteRead(ctx, listRecordsCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("list records query: %w", err)
	}

	inputs := make([]store.RecordInput, 0, len(res.Records))
	for _, record := range res.Records {
		in := store.RecordInput{
			TransactionID:     toInt64Ptr(record["transactionId"]),
			AuthorizationCode: toStringPtr(record["authorizationCode"]),
			TransactionDate:   toStringPtr(record["transactionDate"]),
			CustomerID:        toInt64Ptr(record["customerId"]),
			TransactionType:   toStringPtr(record["transactionType"]),
			TransactionStatus: toStringPtr(record["transactionStatus"]),
			Description:       toStringPtr(record["description"]),
			Amount:            toDecimalPtr(record["amount"]),
			Metadata: &store.MetadataInput{
				RelatedTransactionID: toInt64Ptr(record["relatedTransactionId"]),
				DeviceID:             toStringPtr(record["deviceId"]),
			},
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// Ping verifies the graph is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.VerifyConnectivity(ctx)
}

func recordProperties(tx domain.Transaction, seq int) map[string]any {
	return map[string]any{
		"authorizationCode": tx.AuthorizationCode,
		"transactionDate":   tx.DateString(),
		"customerId":        tx.CustomerID,
		"transactionType":   string(tx.TransactionType),
		"transactionStatus": string(tx.TransactionStatus),
		"description":       tx.Description,
		// Stored as text so that no precision is lost to float conversion.
		"amount": tx.Amount.String(),
		"seq":    int64(seq),
	}
}

func toStringPtr(val any) *string {
	var s string
	switch v := val.(type) {
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	case []byte:
		s = string(v)
	default:
		return nil
	}
	return &s
}

func toInt64Ptr(val any) *int64 {
	var n int64
	switch v := val.(type) {
	case int64:
		n = v
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case float64:
		if v != float64(int64(v)) {
			return nil
		}
		n = int64(v)
	default:
		return nil
	}
	return &n
}

func toDecimalPtr(val any) *decimal.Decimal {
	var d decimal.Decimal
	switch v := val.(type) {
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return nil
		}
		d = parsed
	case float64:
		d = decimal.NewFromFloat(v)
	case int64:
		d = decimal.NewFromInt(v)
	default:
		return nil
	}
	return &d
}

const upsertRecordCypher = `
MERGE (t:Transaction {transactionId: $transactionId})
SET t += $props
SET t.relatedTransactionId = $relatedTransactionId
SET t.deviceId = $deviceId
MERGE (c:Customer {customerId: $customerId})
MERGE (c)-[:OWNS]->(t)
WITH t
FOREACH (_ IN CASE WHEN $relatedTransactionId IS NULL THEN [] ELSE [1] END |
	MERGE (r:Transaction {transactionId: $relatedTransactionId})
	MERGE (t)-[:REFERENCES]->(r)
)
FOREACH (_ IN CASE WHEN $deviceId IS NULL THEN [] ELSE [1] END |
	MERGE (d:Device {deviceId: $deviceId})
	MERGE (t)-[:USED_DEVICE]->(d)
)
RETURN t.transactionId AS transactionId
`

// Nodes created only as the target of a REFERENCES edge have no seq and are skipped.
const listRecordsCypher = `
MATCH (t:Transaction)
WHERE t.seq IS NOT NULL
RETURN t.transactionId AS transactionId,
	t.authorizationCode AS authorizationCode,
	t.transactionDate AS transactionDate,
	t.customerId AS customerId,
	t.transactionType AS transactionType,
	t.transactionStatus AS transactionStatus,
	t.description AS description,
	t.amount AS amount,
	t.relatedTransactionId AS relatedTransactionId,
	t.deviceId AS deviceId
ORDER BY t.seq ASC
`
