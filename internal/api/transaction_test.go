package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Crayann/swiftbase-backend/internal/domain"
	"github.com/Crayann/swiftbase-backend/internal/gateway"
	"github.com/Crayann/swiftbase-backend/internal/orchestrator"
	"github.com/Crayann/swiftbase-backend/internal/rates"
	"github.com/Crayann/swiftbase-backend/internal/store"
)

// testApp bundles a wired router with the fixtures behind it
type testApp struct {
	router    *gin.Engine
	store     *store.MemoryStore
	orc       *orchestrator.Orchestrator
	recipient *domain.Recipient
	method    *domain.PaymentMethod
}

// newTestApp builds the authenticated routes over the in-memory store with a
// stub auth middleware standing in for JWT
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	provider := rates.NewProvider(rates.NewSimulatedSource(), 0, nil)
	payments := gateway.NewSimulatedGateway(0)
	settler := gateway.NewSimulatedLedger(provider, 0)
	orc := orchestrator.New(st, provider, payments, settler, 5*time.Second)

	ctx := context.Background()
	user := &domain.User{Email: "maria@example.com", Password: "x", FullName: "Maria Lopez"}
	require.NoError(t, st.CreateUser(ctx, user))
	recipient := &domain.Recipient{ID: uuid.New(), UserID: user.ID, FullName: "Ana Lopez", Country: "MX", Currency: "MXN", PayoutType: domain.PayoutBank}
	require.NoError(t, st.CreateRecipient(ctx, recipient))
	method := &domain.PaymentMethod{ID: uuid.New(), UserID: user.ID, Type: "card", Label: "Personal Visa", LastFour: "4242"}
	require.NoError(t, st.CreatePaymentMethod(ctx, method))

	r := gin.New()
	authed := r.Group("/api")
	authed.Use(func(c *gin.Context) {
		c.Set("userID", user.ID) // Stub for the JWT middleware
		c.Next()
	})
	authed.POST("/transactions/compare-routes", CompareRoutesHandler(provider))
	authed.POST("/transactions", CreateTransactionHandler(orc, nil))
	authed.GET("/transactions", TransactionHistoryHandler(st, nil))
	authed.GET("/transactions/stats", TransactionStatsHandler(st, nil))
	authed.GET("/transactions/:id/status", TransactionStatusHandler(st))
	authed.POST("/transactions/:id/cancel", CancelTransactionHandler(orc, nil))

	return &testApp{router: r, store: st, orc: orc, recipient: recipient, method: method}
}

func (a *testApp) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func TestCompareRoutesEndpoint(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodPost, "/api/transactions/compare-routes", gin.H{
		"amount": 100, "fromCurrency": "USD", "toCurrency": "MXN",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Routes []struct {
			RouteType      string          `json:"routeType"`
			AmountReceived decimal.Decimal `json:"amountReceived"`
			Recommended    bool            `json:"recommended"`
		} `json:"routes"`
		MidMarketRate decimal.Decimal `json:"midMarketRate"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Routes, 3)
	assert.True(t, body.MidMarketRate.Equal(decimal.RequireFromString("17.50")))
	recommended := 0
	for i, r := range body.Routes {
		if r.Recommended {
			recommended++
		}
		if i > 0 {
			assert.True(t, body.Routes[i-1].AmountReceived.GreaterThanOrEqual(r.AmountReceived))
		}
	}
	assert.Equal(t, 1, recommended)
}

func TestCompareRoutesEndpointRejectsSmallAmount(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodPost, "/api/transactions/compare-routes", gin.H{
		"amount": 5, "fromCurrency": "USD", "toCurrency": "MXN",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), string(domain.CodeInvalidAmount))
}

func TestCreateTransactionEndpoint(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodPost, "/api/transactions", gin.H{
		"recipientId":     app.recipient.ID.String(),
		"paymentMethodId": app.method.ID.String(),
		"amount":          100,
		"fromCurrency":    "USD",
		"toCurrency":      "MXN",
		"routeType":       domain.RouteXRPLDirect,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		TransactionID       string    `json:"transactionId"`
		Status              string    `json:"status"`
		EstimatedCompletion time.Time `json:"estimatedCompletion"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(domain.StatusProcessing), body.Status)
	assert.False(t, body.EstimatedCompletion.IsZero())

	// The creator polls for the outcome; after the pipeline drains the
	// status endpoint reports the terminal projection
	app.orc.Wait()
	statusRec := app.do(t, http.MethodGet, "/api/transactions/"+body.TransactionID+"/status", nil)
	require.Equal(t, http.StatusOK, statusRec.Code)
	var statusBody struct {
		Transaction struct {
			Status        string  `json:"status"`
			SettlementRef *string `json:"settlementRef"`
		} `json:"transaction"`
		Recipient struct {
			FullName string `json:"fullName"`
		} `json:"recipient"`
	}
	require.NoError(t, json.Unmarshal(statusRec.Body.Bytes(), &statusBody))
	assert.Equal(t, string(domain.StatusCompleted), statusBody.Transaction.Status)
	require.NotNil(t, statusBody.Transaction.SettlementRef)
	assert.Equal(t, "Ana Lopez", statusBody.Recipient.FullName)
}

func TestCreateTransactionEndpointValidationCodes(t *testing.T) {
	app := newTestApp(t)

	// Amount outside the limits
	rec := app.do(t, http.MethodPost, "/api/transactions", gin.H{
		"recipientId":     app.recipient.ID.String(),
		"paymentMethodId": app.method.ID.String(),
		"amount":          10000.01,
		"fromCurrency":    "USD",
		"toCurrency":      "MXN",
		"routeType":       domain.RouteXRPLDirect,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), string(domain.CodeAmountOutOfRange))

	// Unowned recipient resolves to 404
	rec = app.do(t, http.MethodPost, "/api/transactions", gin.H{
		"recipientId":     uuid.NewString(),
		"paymentMethodId": app.method.ID.String(),
		"amount":          100,
		"fromCurrency":    "USD",
		"toCurrency":      "MXN",
		"routeType":       domain.RouteXRPLDirect,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), string(domain.CodeRecipientNotFound))
}

func TestTransactionStatusEndpointUnknownID(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/api/transactions/"+uuid.NewString()+"/status", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransactionHistoryEndpointPagination(t *testing.T) {
	app := newTestApp(t)
	for i := 0; i < 3; i++ {
		rec := app.do(t, http.MethodPost, "/api/transactions", gin.H{
			"recipientId":     app.recipient.ID.String(),
			"paymentMethodId": app.method.ID.String(),
			"amount":          50,
			"fromCurrency":    "USD",
			"toCurrency":      "MXN",
			"routeType":       domain.RouteXRPLDirect,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	app.orc.Wait()

	rec := app.do(t, http.MethodGet, "/api/transactions?limit=2&offset=0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Transactions []json.RawMessage `json:"transactions"`
		Total        int64             `json:"total"`
		Limit        int               `json:"limit"`
		Offset       int               `json:"offset"`
		HasMore      bool              `json:"hasMore"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.Total)
	assert.Len(t, body.Transactions, 2)
	assert.True(t, body.HasMore)

	rec = app.do(t, http.MethodGet, "/api/transactions?limit=2&offset=2", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Transactions, 1)
	assert.False(t, body.HasMore)
}

func TestTransactionStatsEndpoint(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodPost, "/api/transactions", gin.H{
		"recipientId":     app.recipient.ID.String(),
		"paymentMethodId": app.method.ID.String(),
		"amount":          100,
		"fromCurrency":    "USD",
		"toCurrency":      "MXN",
		"routeType":       domain.RouteXRPLDirect,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	app.orc.Wait()

	statsRec := app.do(t, http.MethodGet, "/api/transactions/stats", nil)
	require.Equal(t, http.StatusOK, statsRec.Code)
	var body struct {
		Counts           map[string]int64 `json:"counts"`
		EstimatedSavings decimal.Decimal  `json:"estimatedSavings"`
	}
	require.NoError(t, json.Unmarshal(statsRec.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Counts["completed"])
	assert.True(t, body.EstimatedSavings.IsPositive())
}

func TestCancelEndpointRefusesProcessing(t *testing.T) {
	app := newTestApp(t)
	tx := &domain.Transaction{
		ID:               uuid.New(),
		UserID:           1,
		RecipientID:      app.recipient.ID,
		PaymentMethodID:  app.method.ID,
		AmountSent:       decimal.RequireFromString("100"),
		CurrencySent:     "USD",
		CurrencyReceived: "MXN",
		RouteType:        domain.RouteXRPLDirect,
		Status:           domain.StatusProcessing,
	}
	require.NoError(t, app.store.CreateTransaction(context.Background(), tx))

	rec := app.do(t, http.MethodPost, "/api/transactions/"+tx.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "InvalidStateTransition")
	assert.Contains(t, rec.Body.String(), string(domain.StatusProcessing))
}

func TestCancelEndpointCancelsPending(t *testing.T) {
	app := newTestApp(t)
	tx := &domain.Transaction{
		ID:               uuid.New(),
		UserID:           1,
		RecipientID:      app.recipient.ID,
		PaymentMethodID:  app.method.ID,
		AmountSent:       decimal.RequireFromString("100"),
		CurrencySent:     "USD",
		CurrencyReceived: "MXN",
		RouteType:        domain.RouteXRPLDirect,
		Status:           domain.StatusPending,
	}
	require.NoError(t, app.store.CreateTransaction(context.Background(), tx))

	rec := app.do(t, http.MethodPost, "/api/transactions/"+tx.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := app.store.GetTransaction(context.Background(), tx.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
}
