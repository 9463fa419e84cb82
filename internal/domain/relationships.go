package domain

// RelationType describes how two customers are connected.
type RelationType string

const (
	RelationTypeP2PSend    RelationType = "P2P_SEND"
	RelationTypeP2PReceive RelationType = "P2P_RECEIVE"
	RelationTypeDevice     RelationType = "DEVICE"
)

// RelatedCustomer is a single inferred edge from the queried customer to another.
type RelatedCustomer struct {
	RelationType      RelationType
	RelatedCustomerID int64
}
