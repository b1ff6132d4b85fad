package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"github.com/Crayann/swiftbase-backend/internal/domain"       // Importing domain models
	"github.com/Crayann/swiftbase-backend/internal/orchestrator" // Transfer pipeline
	"github.com/Crayann/swiftbase-backend/internal/pricing"      // Route comparison engine
	"github.com/Crayann/swiftbase-backend/internal/rates"        // Mid-market quotes
	"github.com/Crayann/swiftbase-backend/internal/store"        // Persistence layer
	"github.com/Crayann/swiftbase-backend/internal/utils"        // Cache helpers

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/google/uuid"        // Transaction ids
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Money arithmetic
	"github.com/sirupsen/logrus"    // Logging library
)

// Request struct for route comparison
type CompareRoutesRequest struct {
	Amount       float64 `json:"amount"`       // Amount to send
	FromCurrency string  `json:"fromCurrency"` // Currency the sender pays in
	ToCurrency   string  `json:"toCurrency"`   // Currency the recipient is paid in
}

// Request struct for transfer creation. Required-field checks live in the
// orchestrator so the distinct failure modes fire in their contractual order.
type CreateTransactionRequest struct {
	RecipientID     string  `json:"recipientId"`     // Recipient owned by the sender
	PaymentMethodID string  `json:"paymentMethodId"` // Funding method owned by the sender
	Amount          float64 `json:"amount"`          // Amount to send
	FromCurrency    string  `json:"fromCurrency"`    // Currency the sender pays in
	ToCurrency      string  `json:"toCurrency"`      // Currency the recipient is paid in
	RouteType       string  `json:"routeType"`       // Chosen route
	Notes           string  `json:"notes"`           // Optional annotation
}

// CompareRoutesHandler prices every configured route for an amount and pair
func CompareRoutesHandler(provider *rates.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CompareRoutesRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if req.FromCurrency == "" || req.ToCurrency == "" || req.Amount == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount, fromCurrency and toCurrency are required", "code": string(domain.CodeMissingFields)})
			return
		}
		// Fetch the mid-market rate; the provider falls back to the static
		// table on upstream outage so this only fails for bad pairs
		quote, err := provider.GetRate(c.Request.Context(), req.FromCurrency, req.ToCurrency)
		if err != nil {
			respondError(c, err)
			return
		}
		routes, err := pricing.CompareRoutes(decimal.NewFromFloat(req.Amount), req.FromCurrency, req.ToCurrency, quote.Rate)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"routes":        routes,          // Priced routes, best payout first
			"midMarketRate": quote.Rate,      // Unmarked-up reference rate
			"rateSource":    quote.Source,    // Feed the rate came from
			"mock":          quote.Mock,      // True when served from the fallback table
			"timestamp":     quote.Timestamp, // When the rate was obtained
		})
	}
}

// CreateTransactionHandler validates and persists a transfer, dispatches the
// pipeline, and returns the transaction id without waiting for any stage
func CreateTransactionHandler(orc *orchestrator.Orchestrator, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateTransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		tx, estimated, err := orc.Create(c.Request.Context(), userID.(uint), orchestrator.CreateRequest{
			RecipientID:     req.RecipientID,
			PaymentMethodID: req.PaymentMethodID,
			Amount:          decimal.NewFromFloat(req.Amount),
			FromCurrency:    req.FromCurrency,
			ToCurrency:      req.ToCurrency,
			RouteType:       req.RouteType,
			Notes:           req.Notes,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateTransactionCaches(c, rdb, userID.(uint)) // Listings and stats are stale now
		c.JSON(http.StatusCreated, gin.H{
			"transactionId":       tx.ID,          // Assigned id for status polling
			"status":              tx.Status,      // Always processing at this point
			"estimatedCompletion": estimated,      // Route-dependent completion estimate
			"fee":                 tx.Fee,         // Fee fixed at creation
			"exchangeRate":        tx.ExchangeRate, // Effective rate fixed at creation
		})
	}
}

// TransactionStatusHandler returns the full projection of one transfer
func TransactionStatusHandler(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, err := uuid.Parse(c.Param("id")) // Parse transaction id from path
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		tx, err := st.GetTransaction(c.Request.Context(), id, userID.(uint))
		if err != nil {
			// Unknown and unowned ids are indistinguishable to the caller
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		resp := gin.H{"transaction": tx}
		// Summaries are best effort; a recipient deleted after the transfer
		// does not break status polling
		if recipient, err := st.GetRecipient(c.Request.Context(), tx.RecipientID, userID.(uint)); err == nil {
			resp["recipient"] = gin.H{
				"id":         recipient.ID,
				"fullName":   recipient.FullName,
				"country":    recipient.Country,
				"payoutType": recipient.PayoutType,
			}
		}
		if method, err := st.GetPaymentMethod(c.Request.Context(), tx.PaymentMethodID, userID.(uint)); err == nil {
			resp["paymentMethod"] = gin.H{
				"id":       method.ID,
				"type":     method.Type,
				"label":    method.Label,
				"lastFour": method.LastFour,
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// TransactionHistoryHandler returns a paginated listing of the sender's transfers
func TransactionHistoryHandler(st store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		limit := 20 // Default page size
		offset := 0 // Default offset
		// Parse limit from query
		if l := c.Query("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
				limit = v
			}
		}
		// Parse offset from query
		if o := c.Query("offset"); o != "" {
			if v, err := strconv.Atoi(o); err == nil && v >= 0 {
				offset = v
			}
		}
		status := domain.TransactionStatus(c.Query("status")) // Optional status filter

		// Redis cache key covering the full query shape
		cacheKey := "txhistory:user:" + strconv.Itoa(int(userID.(uint))) +
			":limit:" + strconv.Itoa(limit) + ":offset:" + strconv.Itoa(offset) + ":status:" + string(status)
		ctx := context.Background() // Context for Redis operations
		var cachedResp historyResponse
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cachedResp)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cachedResp.Transactions,
				"total":        cachedResp.Total,
				"limit":        cachedResp.Limit,
				"offset":       cachedResp.Offset,
				"hasMore":      cachedResp.HasMore,
				"cached":       true,
			})
			return
		}

		page, err := st.ListTransactions(c.Request.Context(), userID.(uint), store.Filter{Status: status, Limit: limit, Offset: offset})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		resp := historyResponse{
			Transactions: page.Items,
			Total:        page.Total,
			Limit:        limit,
			Offset:       offset,
			HasMore:      int64(offset+len(page.Items)) < page.Total,
		}
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, gin.H{
			"transactions": resp.Transactions,
			"total":        resp.Total,
			"limit":        resp.Limit,
			"offset":       resp.Offset,
			"hasMore":      resp.HasMore,
			"cached":       false,
		})
	}
}

// historyResponse is the cacheable shape of a history page
type historyResponse struct {
	Transactions []domain.Transaction `json:"transactions"` // One page of transfers
	Total        int64                `json:"total"`        // Total rows matching the filter
	Limit        int                  `json:"limit"`        // Page size
	Offset       int                  `json:"offset"`       // Rows skipped
	HasMore      bool                 `json:"hasMore"`      // Whether another page exists
}

// TransactionStatsHandler aggregates the sender's transfer activity
func TransactionStatsHandler(st store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		cacheKey := "txstats:user:" + strconv.Itoa(int(userID.(uint))) // Cache key for stats
		ctx := context.Background()                                   // Context for Redis operations
		var cachedStats store.Stats
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cachedStats)
		if err == nil && found {
			c.JSON(http.StatusOK, statsBody(cachedStats, true))
			return
		}
		stats, err := st.Stats(c.Request.Context(), userID.(uint))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, stats, 60*time.Second) // Cache the stats for 60 seconds
		c.JSON(http.StatusOK, statsBody(stats, false))
	}
}

// statsBody shapes the stats response
func statsBody(stats store.Stats, cached bool) gin.H {
	counts := gin.H{}
	for _, s := range []domain.TransactionStatus{domain.StatusPending, domain.StatusProcessing, domain.StatusCompleted, domain.StatusFailed} {
		counts[string(s)] = stats.Counts[s]
	}
	return gin.H{
		"counts":           counts,                 // Transactions per status
		"totalSent":        stats.TotalSent,        // Sum of amounts sent
		"totalFees":        stats.TotalFees,        // Sum of fees paid
		"averageSent":      stats.AverageSent,      // Mean amount sent
		"estimatedSavings": stats.EstimatedSavings, // Fees avoided vs the traditional baseline
		"cached":           cached,                 // Whether served from cache
	}
}

// CancelTransactionHandler cancels a transfer still in the pending state
func CancelTransactionHandler(orc *orchestrator.Orchestrator, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, err := uuid.Parse(c.Param("id")) // Parse transaction id from path
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
			return
		}
		if err := orc.Cancel(c.Request.Context(), userID.(uint), id); err != nil {
			respondError(c, err)
			return
		}
		invalidateTransactionCaches(c, rdb, userID.(uint)) // Listings and stats are stale now
		c.JSON(http.StatusOK, gin.H{"message": "Transaction cancelled"})
	}
}

// respondError maps the domain error taxonomy onto HTTP responses
func respondError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var notFoundErr *domain.NotFoundError
	var transitionErr *domain.StateTransitionError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "code": string(validationErr.Code)})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Message, "code": string(notFoundErr.Code)})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         "Transaction cannot be cancelled",
			"code":          "InvalidStateTransition",
			"currentStatus": transitionErr.Current,
		})
	default:
		logrus.WithField("error", err.Error()).Error("Unhandled request error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// invalidateTransactionCaches drops the stats key and the first pages of the
// default-size history listing (simple version, mirrors page-loop invalidation)
func invalidateTransactionCaches(c *gin.Context, rdb *redis.Client, userID uint) {
	if rdb == nil {
		return
	}
	ctx := context.Background()                      // Context for Redis operations
	user := strconv.Itoa(int(userID))                // Cache key fragment
	_ = utils.DeleteCache(ctx, rdb, "txstats:user:"+user) // Invalidate stats
	for offset := 0; offset < 100; offset += 20 {
		// Invalidate the first pages of the unfiltered default listing
		key := "txhistory:user:" + user + ":limit:20:offset:" + strconv.Itoa(offset) + ":status:"
		_ = utils.DeleteCache(ctx, rdb, key)
	}
}
