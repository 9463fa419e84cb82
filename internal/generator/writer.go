package generator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vanshika/txlens/internal/store"
)

// feedRecord is the wire shape of the public feed, with amounts as JSON numbers.
type feedRecord struct {
	TransactionID     int64               `json:"transactionId"`
	AuthorizationCode string              `json:"authorizationCode"`
	TransactionDate   string              `json:"transactionDate"`
	CustomerID        int64               `json:"customerId"`
	TransactionType   string              `json:"transactionType"`
	TransactionStatus string              `json:"transactionStatus"`
	Description       string              `json:"description"`
	Amount            json.Number         `json:"amount"`
	Metadata          store.MetadataInput `json:"metadata"`
}

// WriteDataset serializes the dataset into transactions.json under dir.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, "transactions.json")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := Encode(file, dataset); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}

// Encode writes the dataset as an indented JSON array of feed records.
func Encode(w io.Writer, dataset Dataset) error {
	out := make([]feedRecord, 0, len(dataset.Records))
	for _, in := range dataset.Records {
		rec := feedRecord{
			TransactionID:     deref(in.TransactionID),
			AuthorizationCode: deref(in.AuthorizationCode),
			TransactionDate:   deref(in.TransactionDate),
			CustomerID:        deref(in.CustomerID),
			TransactionType:   deref(in.TransactionType),
			TransactionStatus: deref(in.TransactionStatus),
			Description:       deref(in.Description),
			Amount:            "0",
		}
		if in.Amount != nil {
			rec.Amount = json.Number(in.Amount.String())
		}
		if in.Metadata != nil {
			rec.Metadata = *in.Metadata
		}
		out = append(out, rec)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
