package service

import (
	"github.com/vanshika/txlens/internal/domain"
)

// RelationshipService infers which other customers a customer is connected to.
type RelationshipService struct {
	store RecordStore
}

// NewRelationshipService constructs a RelationshipService over the given store.
func NewRelationshipService(store RecordStore) *RelationshipService {
	return &RelationshipService{store: store}
}

// RelatedCustomers returns the customer's edges: P2P edges first, in the order
// of the customer's own records, then DEVICE edges grouped by device in the
// order devices were first seen. Edges are not deduplicated; a counterpart that
// is missing from the store yields no edge.
func (s *RelationshipService) RelatedCustomers(customerID int64) []domain.RelatedCustomer {
	records := s.store.FindByCustomerID(customerID)
	related := make([]domain.RelatedCustomer, 0)

	var devices []string
	seenDevices := make(map[string]struct{})

	for _, tx := range records {
		if device := tx.Metadata.DeviceID; device != nil {
			if _, ok := seenDevices[*device]; !ok {
				seenDevices[*device] = struct{}{}
				devices = append(devices, *device)
			}
		}

		if !tx.TransactionType.IsP2P() || !tx.Metadata.HasRelated() {
			continue
		}
		counterpart, ok := s.store.FindByID(*tx.Metadata.RelatedTransactionID)
		if !ok {
			continue
		}
		related = append(related, domain.RelatedCustomer{
			RelationType:      domain.RelationType(tx.TransactionType),
			RelatedCustomerID: counterpart.CustomerID,
		})
	}

	for _, device := range devices {
		for _, tx := range s.store.FindByDeviceID(device) {
			if tx.CustomerID == customerID {
				continue
			}
			related = append(related, domain.RelatedCustomer{
				RelationType:      domain.RelationTypeDevice,
				RelatedCustomerID: tx.CustomerID,
			})
		}
	}

	return related
}
