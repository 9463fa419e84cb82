package service

import (
	"github.com/vanshika/txlens/internal/domain"
)

// groupByAuthorizationCode partitions records by authorization code. Groups are
// returned in first-encounter order and keep the encounter order of their members.
func groupByAuthorizationCode(records []domain.Transaction) [][]domain.Transaction {
	index := make(map[string]int)
	var groups [][]domain.Transaction
	for _, tx := range records {
		pos, ok := index[tx.AuthorizationCode]
		if !ok {
			pos = len(groups)
			index[tx.AuthorizationCode] = pos
			groups = append(groups, nil)
		}
		groups[pos] = append(groups[pos], tx)
	}
	return groups
}

// BuildChain orders one authorization-code group by following back-references
// from the initial record. The initial record is the one without a
// relatedTransactionId, or a P2P record whose reference names its counterpart
// outside the group; if there is none the first record is used, if there are
// several the first of them is used. The walk stops at the first missing link
// and every record not reached is returned as detached rather than forced into
// the chain.
func BuildChain(group []domain.Transaction) domain.Chain {
	if len(group) == 0 {
		return domain.Chain{}
	}

	members := make(map[int64]struct{}, len(group))
	for _, tx := range group {
		members[tx.TransactionID] = struct{}{}
	}

	initial, candidates := -1, 0
	for i, tx := range group {
		if !startsChain(tx, members) {
			continue
		}
		if initial < 0 {
			initial = i
		}
		candidates++
	}

	chain := domain.Chain{AuthorizationCode: group[0].AuthorizationCode}
	switch {
	case candidates == 0:
		initial = 0
		chain.Defect = domain.ChainDefectMissingInitial
	case candidates > 1:
		chain.Defect = domain.ChainDefectMultipleInitial
	}

	remaining := make([]domain.Transaction, 0, len(group)-1)
	remaining = append(remaining, group[:initial]...)
	remaining = append(remaining, group[initial+1:]...)

	chain.Records = make([]domain.Transaction, 0, len(group))
	chain.Records = append(chain.Records, group[initial])

	for len(remaining) > 0 {
		tail := chain.Records[len(chain.Records)-1].TransactionID
		next := nextInChain(remaining, tail)
		if next < 0 {
			if chain.Defect == "" {
				chain.Defect = domain.ChainDefectBrokenLink
			}
			break
		}
		chain.Records = append(chain.Records, remaining[next])
		remaining = append(remaining[:next], remaining[next+1:]...)
	}

	if len(remaining) > 0 {
		chain.Detached = remaining
	}
	return chain
}

func startsChain(tx domain.Transaction, members map[int64]struct{}) bool {
	ref := tx.Metadata.RelatedTransactionID
	if ref == nil {
		return true
	}
	if !tx.TransactionType.IsP2P() {
		return false
	}
	_, inGroup := members[*ref]
	return !inGroup
}

func nextInChain(pool []domain.Transaction, tailID int64) int {
	for i, tx := range pool {
		if ref := tx.Metadata.RelatedTransactionID; ref != nil && *ref == tailID {
			return i
		}
	}
	return -1
}

// Aggregate folds a chain into the view exposed to callers: identity and type
// come from the first record, the current state from the last one.
func Aggregate(chain domain.Chain) domain.AggregatedTransaction {
	if len(chain.Records) == 0 {
		return domain.AggregatedTransaction{AuthorizationCode: chain.AuthorizationCode}
	}

	first := chain.Records[0]
	last := chain.Records[len(chain.Records)-1]

	timeline := make([]domain.TimelineEntry, 0, len(chain.Records))
	for _, tx := range chain.Records {
		timeline = append(timeline, domain.TimelineEntry{
			CreatedAt:     tx.TransactionDate,
			CreatedAtText: tx.DateString(),
			Status:        tx.TransactionStatus,
			Amount:        tx.Amount,
		})
	}

	return domain.AggregatedTransaction{
		CreatedAt:         first.TransactionDate,
		UpdatedAt:         last.TransactionDate,
		CreatedAtText:     first.DateString(),
		UpdatedAtText:     last.DateString(),
		TransactionID:     first.TransactionID,
		AuthorizationCode: first.AuthorizationCode,
		Status:            last.TransactionStatus,
		Description:       last.Description,
		TransactionType:   first.TransactionType,
		Metadata:          first.Metadata,
		Timeline:          timeline,
	}
}

func chainIssue(chain domain.Chain) domain.ChainIssue {
	ids := make([]int64, 0, len(chain.Detached))
	for _, tx := range chain.Detached {
		ids = append(ids, tx.TransactionID)
	}
	return domain.ChainIssue{
		AuthorizationCode:      chain.AuthorizationCode,
		Reason:                 chain.Defect,
		DetachedTransactionIDs: ids,
	}
}
