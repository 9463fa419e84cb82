package service

import (
	"slices"
	"testing"

	"github.com/vanshika/txlens/internal/domain"
)

func ids(records []domain.Transaction) []int64 {
	out := make([]int64, 0, len(records))
	for _, tx := range records {
		out = append(out, tx.TransactionID)
	}
	return out
}

func TestBuildChainComplete(t *testing.T) {
	// Out of order on purpose: the walk must follow references, not positions.
	group := []domain.Transaction{
		record(3, "A", 1, 2, relatedTo(2), withStatus(domain.TransactionStatusReturned)),
		record(1, "A", 1, 0, withStatus(domain.TransactionStatusPending)),
		record(2, "A", 1, 1, relatedTo(1)),
	}

	chain := BuildChain(group)
	if !chain.Complete() {
		t.Fatalf("expected complete chain, got defect %q", chain.Defect)
	}
	if got := ids(chain.Records); !slices.Equal(got, []int64{1, 2, 3}) {
		t.Fatalf("chain order = %v", got)
	}
	if len(chain.Detached) != 0 {
		t.Fatalf("unexpected detached records %v", ids(chain.Detached))
	}
}

func TestBuildChainSingleRecord(t *testing.T) {
	chain := BuildChain([]domain.Transaction{record(1, "A", 1, 0)})
	if !chain.Complete() || len(chain.Records) != 1 {
		t.Fatalf("unexpected chain %+v", chain)
	}
}

func TestBuildChainMalformed(t *testing.T) {
	tests := []struct {
		name     string
		group    []domain.Transaction
		defect   domain.ChainDefect
		chained  []int64
		detached []int64
	}{
		{
			name: "missing initial",
			group: []domain.Transaction{
				record(5, "A", 1, 0, relatedTo(40)),
				record(6, "A", 1, 1, relatedTo(5)),
			},
			defect:  domain.ChainDefectMissingInitial,
			chained: []int64{5, 6},
		},
		{
			name: "multiple initial",
			group: []domain.Transaction{
				record(1, "A", 1, 0),
				record(2, "A", 1, 1, relatedTo(1)),
				record(3, "A", 1, 2),
			},
			defect:   domain.ChainDefectMultipleInitial,
			chained:  []int64{1, 2},
			detached: []int64{3},
		},
		{
			name: "broken link",
			group: []domain.Transaction{
				record(1, "A", 1, 0),
				record(2, "A", 1, 1, relatedTo(1)),
				record(4, "A", 1, 3, relatedTo(99)),
				record(5, "A", 1, 4, relatedTo(4)),
			},
			defect:   domain.ChainDefectBrokenLink,
			chained:  []int64{1, 2},
			detached: []int64{4, 5},
		},
		{
			name: "cycle without initial",
			group: []domain.Transaction{
				record(7, "A", 1, 0, relatedTo(8)),
				record(8, "A", 1, 1, relatedTo(7)),
			},
			defect:  domain.ChainDefectMissingInitial,
			chained: []int64{7, 8},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chain := BuildChain(tc.group)
			if chain.Defect != tc.defect {
				t.Fatalf("defect = %q, want %q", chain.Defect, tc.defect)
			}
			if got := ids(chain.Records); !slices.Equal(got, tc.chained) {
				t.Fatalf("chained = %v, want %v", got, tc.chained)
			}
			if got := ids(chain.Detached); !slices.Equal(got, tc.detached) {
				t.Fatalf("detached = %v, want %v", got, tc.detached)
			}

			// Every record ends up exactly once in either the chain or the detached set.
			all := append(ids(chain.Records), ids(chain.Detached)...)
			slices.Sort(all)
			want := ids(tc.group)
			slices.Sort(want)
			if !slices.Equal(all, want) {
				t.Fatalf("records lost or duplicated: %v vs %v", all, want)
			}
		})
	}
}

func TestAggregateKeepsPublishedDates(t *testing.T) {
	agg := Aggregate(BuildChain([]domain.Transaction{
		record(1, "F10001", 1, 0, withDateText("2022-09-01T11:46:42+00:00")),
		record(2, "F10001", 1, 1, relatedTo(1)),
	}))

	if agg.CreatedAtText != "2022-09-01T11:46:42+00:00" {
		t.Fatalf("createdAt = %q", agg.CreatedAtText)
	}
	if agg.UpdatedAtText != "2022-09-02T11:46:42Z" {
		t.Fatalf("updatedAt = %q", agg.UpdatedAtText)
	}
	if agg.Timeline[0].CreatedAtText != agg.CreatedAtText || agg.Timeline[1].CreatedAtText != agg.UpdatedAtText {
		t.Fatalf("timeline dates = %+v", agg.Timeline)
	}
}

func TestAggregate(t *testing.T) {
	chain := BuildChain([]domain.Transaction{
		record(1, "F10000", 1, 0,
			withStatus(domain.TransactionStatusPending),
			withType(domain.TransactionTypeACHIncoming),
			withDescription("Deposit pending"),
			onDevice("D1"),
			withAmount("5000")),
		record(2, "F10000", 1, 2,
			relatedTo(1),
			withType(domain.TransactionTypeACHIncoming),
			withDescription("Deposit from Citibank"),
			withAmount("5000.00")),
	})

	agg := Aggregate(chain)
	if agg.TransactionID != 1 || agg.AuthorizationCode != "F10000" {
		t.Fatalf("identity from wrong record: %+v", agg)
	}
	if !agg.CreatedAt.Equal(baseDate) || !agg.UpdatedAt.Equal(baseDate.AddDate(0, 0, 2)) {
		t.Fatalf("dates = %v / %v", agg.CreatedAt, agg.UpdatedAt)
	}
	if agg.Status != domain.TransactionStatusSettled || agg.Description != "Deposit from Citibank" {
		t.Fatalf("terminal state not used: %+v", agg)
	}
	if agg.TransactionType != domain.TransactionTypeACHIncoming || agg.Metadata.DeviceID == nil || *agg.Metadata.DeviceID != "D1" {
		t.Fatalf("initial type/metadata not used: %+v", agg)
	}
	if len(agg.Timeline) != 2 || agg.Timeline[0].Status != domain.TransactionStatusPending || agg.Timeline[1].Amount.String() != "5000" {
		t.Fatalf("unexpected timeline %+v", agg.Timeline)
	}
}

func TestGroupByAuthorizationCodeKeepsEncounterOrder(t *testing.T) {
	groups := groupByAuthorizationCode([]domain.Transaction{
		record(1, "B", 1, 0),
		record(2, "A", 1, 0),
		record(3, "B", 1, 1, relatedTo(1)),
	})
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if got := ids(groups[0]); !slices.Equal(got, []int64{1, 3}) {
		t.Fatalf("group B = %v", got)
	}
	if got := ids(groups[1]); !slices.Equal(got, []int64{2}) {
		t.Fatalf("group A = %v", got)
	}
}

func TestBuildChainP2PCounterpartStartsChain(t *testing.T) {
	// The P2P reference points at the other customer's record, which is not
	// part of this group.
	chain := BuildChain([]domain.Transaction{
		record(17, "F10008", 4, 0, withType(domain.TransactionTypeP2PSend), relatedTo(18), withStatus(domain.TransactionStatusPending)),
		record(19, "F10008", 4, 1, withType(domain.TransactionTypeP2PSend), relatedTo(17)),
	})
	if !chain.Complete() {
		t.Fatalf("defect = %q", chain.Defect)
	}
	if got := ids(chain.Records); !slices.Equal(got, []int64{17, 19}) {
		t.Fatalf("chain order = %v", got)
	}
}
