package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vanshika/txlens/internal/domain"
	"github.com/vanshika/txlens/internal/service"
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger        *slog.Logger
	transactions  *service.TransactionService
	relationships *service.RelationshipService
	metrics       *Metrics
}

// NewAPIHandlers constructs an APIHandlers instance. metrics may be nil.
func NewAPIHandlers(logger *slog.Logger, txs *service.TransactionService, rels *service.RelationshipService, metrics *Metrics) *APIHandlers {
	return &APIHandlers{
		logger:        logger,
		transactions:  txs,
		relationships: rels,
		metrics:       metrics,
	}
}

type customerURI struct {
	CustomerID int64 `uri:"customerId" binding:"required,min=1"`
}

func (h *APIHandlers) customerTransactions(c *gin.Context) {
	customerID, ok := bindCustomerID(c)
	if !ok {
		return
	}

	result := h.transactions.AggregatedTransactions(customerID)
	for _, issue := range result.Issues {
		h.logger.Warn("malformed transaction chain",
			"customerId", customerID,
			"authorizationCode", issue.AuthorizationCode,
			"reason", string(issue.Reason),
			"detached", issue.DetachedTransactionIDs,
			"request_id", c.GetString("requestId"),
		)
		if h.metrics != nil {
			h.metrics.MalformedChains.WithLabelValues(string(issue.Reason)).Inc()
		}
	}

	c.JSON(http.StatusOK, newTransactionsResponse(result))
}

func (h *APIHandlers) relatedCustomers(c *gin.Context) {
	customerID, ok := bindCustomerID(c)
	if !ok {
		return
	}

	edges := h.relationships.RelatedCustomers(customerID)
	response := relatedCustomersResponse{RelatedCustomers: make([]relatedCustomerDTO, 0, len(edges))}
	for _, edge := range edges {
		response.RelatedCustomers = append(response.RelatedCustomers, relatedCustomerDTO{
			RelationType:      string(edge.RelationType),
			RelatedCustomerID: edge.RelatedCustomerID,
		})
	}

	c.JSON(http.StatusOK, response)
}

func bindCustomerID(c *gin.Context) (int64, bool) {
	var params customerURI
	if err := c.ShouldBindUri(&params); err != nil {
		writeError(c, http.StatusBadRequest, "customerId must be a positive integer")
		return 0, false
	}
	return params.CustomerID, true
}

type metadataDTO struct {
	RelatedTransactionID *int64  `json:"relatedTransactionId,omitempty"`
	DeviceID             *string `json:"deviceId,omitempty"`
}

type timelineEntryDTO struct {
	CreatedAt string      `json:"createdAt"`
	Status    string      `json:"status"`
	Amount    json.Number `json:"amount"`
}

type aggregatedTransactionDTO struct {
	CreatedAt         string             `json:"createdAt"`
	UpdatedAt         string             `json:"updatedAt"`
	TransactionID     int64              `json:"transactionId"`
	AuthorizationCode string             `json:"authorizationCode"`
	Status            string             `json:"status"`
	Description       string             `json:"description"`
	TransactionType   string             `json:"transactionType"`
	Metadata          metadataDTO        `json:"metadata"`
	Timeline          []timelineEntryDTO `json:"timeline"`
}

type chainIssueDTO struct {
	AuthorizationCode      string  `json:"authorizationCode"`
	Reason                 string  `json:"reason"`
	DetachedTransactionIDs []int64 `json:"detachedTransactionIds"`
}

type transactionsResponse struct {
	Transactions    []aggregatedTransactionDTO `json:"transactions"`
	MalformedChains []chainIssueDTO            `json:"malformedChains,omitempty"`
}

type relatedCustomerDTO struct {
	RelationType      string `json:"relationType"`
	RelatedCustomerID int64  `json:"relatedCustomerId"`
}

type relatedCustomersResponse struct {
	RelatedCustomers []relatedCustomerDTO `json:"relatedCustomers"`
}

func newTransactionsResponse(result service.CustomerTransactions) transactionsResponse {
	response := transactionsResponse{
		Transactions: make([]aggregatedTransactionDTO, 0, len(result.Transactions)),
	}
	for _, agg := range result.Transactions {
		response.Transactions = append(response.Transactions, newAggregatedTransactionDTO(agg))
	}
	for _, issue := range result.Issues {
		response.MalformedChains = append(response.MalformedChains, chainIssueDTO{
			AuthorizationCode:      issue.AuthorizationCode,
			Reason:                 string(issue.Reason),
			DetachedTransactionIDs: issue.DetachedTransactionIDs,
		})
	}
	return response
}

func newAggregatedTransactionDTO(agg domain.AggregatedTransaction) aggregatedTransactionDTO {
	dto := aggregatedTransactionDTO{
		CreatedAt:         agg.CreatedAtText,
		UpdatedAt:         agg.UpdatedAtText,
		TransactionID:     agg.TransactionID,
		AuthorizationCode: agg.AuthorizationCode,
		Status:            string(agg.Status),
		Description:       agg.Description,
		TransactionType:   string(agg.TransactionType),
		Metadata: metadataDTO{
			RelatedTransactionID: agg.Metadata.RelatedTransactionID,
			DeviceID:             agg.Metadata.DeviceID,
		},
		Timeline: make([]timelineEntryDTO, 0, len(agg.Timeline)),
	}
	for _, entry := range agg.Timeline {
		dto.Timeline = append(dto.Timeline, timelineEntryDTO{
			CreatedAt: entry.CreatedAtText,
			Status:    string(entry.Status),
			Amount:    json.Number(entry.Amount.String()),
		})
	}
	return dto
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
