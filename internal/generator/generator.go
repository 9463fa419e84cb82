package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/txlens/internal/domain"
	"github.com/vanshika/txlens/internal/store"
)

// Dataset contains the generated feed records in feed order.
type Dataset struct {
	Records []store.RecordInput
}

// Generator produces synthetic feed records: multi-step chains per
// authorization code, P2P transfers between customers and devices shared
// between customers.
type Generator struct {
	cfg     Config
	rand    *rand.Rand
	devices []string

	nextID   int64
	nextCode int
	clock    time.Time
	records  []store.RecordInput
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumCustomers <= 0 {
		cfg.NumCustomers = defaults.NumCustomers
	}
	if cfg.NumTransactions <= 0 {
		cfg.NumTransactions = defaults.NumTransactions
	}
	if cfg.P2PChance < 0 {
		cfg.P2PChance = 0
	}
	if cfg.ReturnChance < 0 {
		cfg.ReturnChance = 0
	}
	if cfg.DeviceShareChance < 0 {
		cfg.DeviceShareChance = 0
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Start.IsZero() {
		cfg.Start = defaults.Start
	}

	return &Generator{
		cfg:      cfg,
		rand:     rand.New(rand.NewSource(cfg.Seed)),
		nextID:   1,
		nextCode: 10000,
		clock:    cfg.Start,
	}
}

var chainTypes = []domain.TransactionType{
	domain.TransactionTypeACHIncoming,
	domain.TransactionTypePOS,
	domain.TransactionTypeWireOutgoing,
	domain.TransactionTypeWireIncoming,
	domain.TransactionTypeFee,
}

// Generate synthesises NumTransactions logical transactions. A P2P transfer
// counts as one and yields a record for each side. It respects context
// cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	for i := 0; i < g.cfg.NumTransactions; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		customer := g.randomCustomer()
		if g.cfg.NumCustomers > 1 && g.rand.Float64() < g.cfg.P2PChance {
			g.addTransfer(customer)
			continue
		}
		g.addChain(customer, chainTypes[g.rand.Intn(len(chainTypes))])
	}

	return Dataset{Records: g.records}, nil
}

// addChain emits PENDING then SETTLED, optionally followed by RETURNED, each
// record pointing back at its predecessor.
func (g *Generator) addChain(customer int64, txType domain.TransactionType) {
	code := g.newCode()
	amount := g.randomAmount(txType)
	description := g.randomDescription(txType)

	var device *string
	if txType == domain.TransactionTypePOS {
		d := g.maybeSharedDevice()
		device = &d
	}

	statuses := []domain.TransactionStatus{domain.TransactionStatusPending, domain.TransactionStatusSettled}
	if g.rand.Float64() < g.cfg.ReturnChance {
		statuses = append(statuses, domain.TransactionStatusReturned)
	}

	var previous *int64
	for _, status := range statuses {
		id := g.add(customer, code, txType, status, description, amount, previous, device)
		previous = &id
		g.clock = g.clock.Add(time.Duration(1+g.rand.Intn(48)) * time.Hour)
	}
}

// addTransfer emits a settled P2P_SEND for sender and the matching
// P2P_RECEIVE for another customer, each referencing the other.
func (g *Generator) addTransfer(sender int64) {
	receiver := g.randomCustomer()
	for receiver == sender {
		receiver = g.randomCustomer()
	}

	code := g.newCode()
	amount := decimal.New(int64(100+g.rand.Intn(50000)), -2)
	device := g.maybeSharedDevice()

	sendID := g.nextID
	receiveID := g.nextID + 1
	g.add(sender, code, domain.TransactionTypeP2PSend, domain.TransactionStatusSettled,
		fmt.Sprintf("Transfer to customer %d", receiver), amount.Neg(), &receiveID, &device)
	g.add(receiver, code, domain.TransactionTypeP2PReceive, domain.TransactionStatusSettled,
		fmt.Sprintf("Transfer from customer %d", sender), amount, &sendID, nil)
	g.clock = g.clock.Add(time.Duration(1+g.rand.Intn(24)) * time.Hour)
}

func (g *Generator) add(customer int64, code string, txType domain.TransactionType, status domain.TransactionStatus,
	description string, amount decimal.Decimal, related *int64, device *string) int64 {
	tx := domain.Transaction{
		TransactionID:     g.nextID,
		AuthorizationCode: code,
		TransactionDate:   g.clock,
		CustomerID:        customer,
		TransactionType:   txType,
		TransactionStatus: status,
		Description:       description,
		Amount:            amount,
	}
	if related != nil {
		ref := *related
		tx.Metadata.RelatedTransactionID = &ref
	}
	if device != nil {
		d := *device
		tx.Metadata.DeviceID = &d
	}

	g.records = append(g.records, store.InputFromDomain(tx))
	g.nextID++
	return tx.TransactionID
}

func (g *Generator) newCode() string {
	code := fmt.Sprintf("F%05d", g.nextCode)
	g.nextCode++
	return code
}

func (g *Generator) randomCustomer() int64 {
	return int64(1 + g.rand.Intn(g.cfg.NumCustomers))
}

func (g *Generator) maybeSharedDevice() string {
	if len(g.devices) > 0 && g.rand.Float64() < g.cfg.DeviceShareChance {
		return g.devices[g.rand.Intn(len(g.devices))]
	}
	device := fmt.Sprintf("F%06d", g.rand.Intn(1000000))
	g.devices = append(g.devices, device)
	return device
}

func (g *Generator) randomAmount(txType domain.TransactionType) decimal.Decimal {
	var cents int64
	switch txType {
	case domain.TransactionTypeFee:
		cents = int64(100 + g.rand.Intn(2900))
	case domain.TransactionTypePOS:
		cents = int64(100 + g.rand.Intn(30000))
	default:
		cents = int64(10000 + g.rand.Intn(990000))
	}
	amount := decimal.New(cents, -2)
	switch txType {
	case domain.TransactionTypeACHIncoming, domain.TransactionTypeWireIncoming:
		return amount
	default:
		return amount.Neg()
	}
}

var descriptions = map[domain.TransactionType][]string{
	domain.TransactionTypeACHIncoming:  {"Deposit from Citibank", "Payroll deposit", "Deposit from Chase"},
	domain.TransactionTypePOS:          {"Amazon", "Whole Foods", "Shell", "Uber", "Starbucks"},
	domain.TransactionTypeWireOutgoing: {"Wire to landlord", "Wire to broker"},
	domain.TransactionTypeWireIncoming: {"Wire from employer", "Wire from escrow"},
	domain.TransactionTypeFee:          {"Monthly maintenance fee", "Wire fee", "Overdraft fee"},
}

func (g *Generator) randomDescription(txType domain.TransactionType) string {
	options := descriptions[txType]
	return options[g.rand.Intn(len(options))]
}
