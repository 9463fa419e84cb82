package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vanshika/txlens/internal/store"
)

// PostgresSource reads records from a transactions table. Rows are returned in
// seq order, which plays the role of feed insertion order.
type PostgresSource struct {
	DSN string
}

const selectRecordsSQL = `
SELECT transaction_id,
       authorization_code,
       transaction_date,
       customer_id,
       transaction_type,
       transaction_status,
       description,
       amount::text AS amount,
       related_transaction_id,
       device_id
  FROM transactions
 ORDER BY seq`

type pgRecord struct {
	TransactionID        *int64     `db:"transaction_id"`
	AuthorizationCode    *string    `db:"authorization_code"`
	TransactionDate      *time.Time `db:"transaction_date"`
	CustomerID           *int64     `db:"customer_id"`
	TransactionType      *string    `db:"transaction_type"`
	TransactionStatus    *string    `db:"transaction_status"`
	Description          *string    `db:"description"`
	Amount               *string    `db:"amount"`
	RelatedTransactionID *int64     `db:"related_transaction_id"`
	DeviceID             *string    `db:"device_id"`
}

func (s PostgresSource) Fetch(ctx context.Context) ([]store.RecordInput, error) {
	pool, err := pgxpool.New(ctx, s.DSN)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, selectRecordsSQL)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[pgRecord])
	if err != nil {
		return nil, fmt.Errorf("scan transactions: %w", err)
	}

	inputs := make([]store.RecordInput, 0, len(records))
	for _, rec := range records {
		inputs = append(inputs, rec.toInput())
	}
	return inputs, nil
}

func (s PostgresSource) String() string {
	return redact(s.DSN)
}

func (r pgRecord) toInput() store.RecordInput {
	in := store.RecordInput{
		TransactionID:     r.TransactionID,
		AuthorizationCode: r.AuthorizationCode,
		CustomerID:        r.CustomerID,
		TransactionType:   r.TransactionType,
		TransactionStatus: r.TransactionStatus,
		Description:       r.Description,
		Amount:            parseAmount(r.Amount),
		Metadata: &store.MetadataInput{
			RelatedTransactionID: r.RelatedTransactionID,
			DeviceID:             r.DeviceID,
		},
	}
	if r.TransactionDate != nil {
		date := r.TransactionDate.Format(time.RFC3339Nano)
		in.TransactionDate = &date
	}
	return in
}

func parseAmount(raw *string) *decimal.Decimal {
	if raw == nil {
		return nil
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil
	}
	return &d
}
