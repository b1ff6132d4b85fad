package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Crayann/swiftbase-backend/internal/domain"
	"github.com/Crayann/swiftbase-backend/internal/gateway"
	"github.com/Crayann/swiftbase-backend/internal/pricing"
	"github.com/Crayann/swiftbase-backend/internal/rates"
	"github.com/Crayann/swiftbase-backend/internal/store"
)

// Transfer amount limits, inclusive on both ends
var (
	MinTransfer = decimal.NewFromInt(10)
	MaxTransfer = decimal.NewFromInt(10000)
)

// DefaultStageTimeout bounds each adapter call in the pipeline
const DefaultStageTimeout = 10 * time.Second

// CreateRequest is a validated-on-entry transfer creation request
type CreateRequest struct {
	RecipientID     string          // Recipient owned by the sender
	PaymentMethodID string          // Funding method owned by the sender
	Amount          decimal.Decimal // Amount to debit in FromCurrency
	FromCurrency    string          // Currency the sender pays in
	ToCurrency      string          // Currency the recipient is paid in
	RouteType       string          // Route the transfer should be priced on
	Notes           string          // Optional user annotation
}

// Orchestrator creates transaction records synchronously and drives each one
// through the capture -> settlement -> payout pipeline in a detached
// goroutine. Pipeline outcomes are only observable through the store; the
// creating request never waits for them.
type Orchestrator struct {
	store        store.Store               // Durable transaction record
	rates        *rates.Provider           // Mid-market quotes for creation-time pricing
	payments     gateway.PaymentGateway    // Capture and payout legs
	settler      gateway.SettlementAdapter // Cross-currency settlement leg
	stageTimeout time.Duration             // Deadline applied to each pipeline stage
	wg           sync.WaitGroup            // Tracks in-flight pipelines for draining
}

// New wires an Orchestrator. A zero stageTimeout selects DefaultStageTimeout.
func New(st store.Store, provider *rates.Provider, payments gateway.PaymentGateway, settler gateway.SettlementAdapter, stageTimeout time.Duration) *Orchestrator {
	if stageTimeout <= 0 {
		stageTimeout = DefaultStageTimeout
	}
	return &Orchestrator{
		store:        st,
		rates:        provider,
		payments:     payments,
		settler:      settler,
		stageTimeout: stageTimeout,
	}
}

// Create validates the request, persists a processing record and dispatches
// the pipeline. It returns the record and an estimated completion time
// without waiting for any pipeline stage.
func (o *Orchestrator) Create(ctx context.Context, senderID uint, req CreateRequest) (*domain.Transaction, time.Time, error) {
	// Validation order is part of the contract: missing fields, then amount
	// range, then recipient ownership, then payment method ownership.
	if req.RecipientID == "" || req.PaymentMethodID == "" || req.Amount.IsZero() ||
		req.FromCurrency == "" || req.ToCurrency == "" || req.RouteType == "" {
		return nil, time.Time{}, domain.NewValidationError(domain.CodeMissingFields, "recipientId, paymentMethodId, amount, fromCurrency, toCurrency and routeType are required")
	}
	if req.Amount.LessThan(MinTransfer) || req.Amount.GreaterThan(MaxTransfer) {
		return nil, time.Time{}, domain.NewValidationError(domain.CodeAmountOutOfRange, "amount must be between "+MinTransfer.String()+" and "+MaxTransfer.String())
	}
	if !pricing.KnownRoute(req.RouteType) {
		return nil, time.Time{}, domain.NewValidationError(domain.CodeInvalidRoute, "unknown route type "+req.RouteType)
	}

	recipient, err := o.resolveRecipient(ctx, senderID, req.RecipientID)
	if err != nil {
		return nil, time.Time{}, err
	}
	method, err := o.resolvePaymentMethod(ctx, senderID, req.PaymentMethodID)
	if err != nil {
		return nil, time.Time{}, err
	}

	// Fee and exchange rate are fixed now and never recomputed
	quote, err := o.rates.GetRate(ctx, req.FromCurrency, req.ToCurrency)
	if err != nil {
		return nil, time.Time{}, err
	}
	priced, err := pricing.QuoteRoute(req.Amount, req.RouteType, quote.Rate)
	if err != nil {
		return nil, time.Time{}, err
	}

	now := time.Now()
	tx := &domain.Transaction{
		ID:               uuid.New(),
		UserID:           senderID,
		RecipientID:      recipient.ID,
		PaymentMethodID:  method.ID,
		AmountSent:       req.Amount.Round(2),
		CurrencySent:     strings.ToUpper(req.FromCurrency),
		CurrencyReceived: strings.ToUpper(req.ToCurrency),
		ExchangeRate:     priced.EffectiveRate,
		Fee:              priced.Fee,
		RouteType:        req.RouteType,
		Status:           domain.StatusProcessing,
		CreatedAt:        now,
	}
	if req.Notes != "" {
		notes := req.Notes
		tx.Notes = &notes
	}
	if err := o.store.CreateTransaction(ctx, tx); err != nil {
		return nil, time.Time{}, err
	}

	logrus.WithFields(logrus.Fields{
		"transaction_id": tx.ID,
		"user_id":        senderID,
		"amount":         tx.AmountSent.String(),
		"pair":           tx.CurrencySent + ":" + tx.CurrencyReceived,
		"route":          tx.RouteType,
		"fee":            tx.Fee.String(),
	}).Info("Transfer created, dispatching pipeline")

	// Fire and forget: the caller gets the id back immediately and polls the
	// status endpoint for the outcome
	o.wg.Add(1)
	go o.runPipeline(*tx, *recipient, *method)

	return tx, now.Add(pricing.DeliveryEstimate(req.RouteType)), nil
}

// Cancel compare-and-swaps a pending transaction to failed. Transactions in
// any other state are refused with a StateTransitionError carrying the
// status they are actually in; a running pipeline is never interrupted.
func (o *Orchestrator) Cancel(ctx context.Context, senderID uint, id uuid.UUID) error {
	status, err := o.store.CancelIfPending(ctx, id, senderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.NewNotFoundError(domain.CodeTransactionNotFound, "transaction not found")
		}
		if errors.Is(err, store.ErrNotCancellable) {
			return &domain.StateTransitionError{Current: status}
		}
		return err
	}
	logrus.WithFields(logrus.Fields{
		"transaction_id": id,
		"user_id":        senderID,
	}).Info("Transfer cancelled")
	return nil
}

// Wait blocks until every dispatched pipeline has finished. Used for
// graceful shutdown; not part of the request contract.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// runPipeline drives one transaction through capture, settlement and payout,
// strictly in sequence, and persists exactly one terminal state. It runs
// detached from the creating request and must not panic past the store.
func (o *Orchestrator) runPipeline(tx domain.Transaction, recipient domain.Recipient, method domain.PaymentMethod) {
	defer o.wg.Done()
	log := logrus.WithField("transaction_id", tx.ID)

	// Stage 1: capture the full amount from the sender's payment method
	captureRef, err := o.stage(func(ctx context.Context) (string, error) {
		return o.payments.Capture(ctx, method.ID.String(), tx.AmountSent, tx.CurrencySent)
	})
	if err != nil {
		o.fail(tx.ID, log, "payment capture failed: "+err.Error())
		return
	}

	// Stage 2: settle the net amount cross-currency. The leg prices with its
	// own rate, so the realized amount can differ from the quoted rate.
	net := tx.AmountSent.Sub(tx.Fee)
	var settlement gateway.Settlement
	_, err = o.stage(func(ctx context.Context) (string, error) {
		var stageErr error
		settlement, stageErr = o.settler.Settle(ctx, net, tx.CurrencySent, tx.CurrencyReceived)
		return settlement.Reference, stageErr
	})
	if err != nil {
		o.fail(tx.ID, log, "settlement failed: "+err.Error())
		return
	}

	// Stage 3: pay out to the recipient's configured payout method
	payoutRef, err := o.stage(func(ctx context.Context) (string, error) {
		return o.payments.Payout(ctx, recipient.ID.String(), recipient.PayoutType, settlement.AmountReceived, tx.CurrencyReceived)
	})
	if err != nil {
		o.fail(tx.ID, log, "payout failed: "+err.Error())
		return
	}

	// Terminal success: one atomic update sets everything the completed
	// invariant requires
	completedAt := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), o.stageTimeout)
	defer cancel()
	if err := o.store.MarkCompleted(ctx, tx.ID, settlement.AmountReceived, settlement.Reference, completedAt); err != nil {
		log.WithField("error", err.Error()).Error("Failed to persist transfer completion")
		return
	}
	log.WithFields(logrus.Fields{
		"capture_ref":     captureRef,
		"settlement_ref":  settlement.Reference,
		"payout_ref":      payoutRef,
		"amount_received": settlement.AmountReceived.String(),
		"realized_rate":   settlement.Rate.String(),
	}).Info("Transfer completed")
}

// stage runs one adapter call under the per-stage deadline
func (o *Orchestrator) stage(fn func(ctx context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), o.stageTimeout)
	defer cancel()
	return fn(ctx)
}

// fail records the terminal failure state with a diagnostic note. The
// completion timestamp stays null: failures are not completions.
func (o *Orchestrator) fail(id uuid.UUID, log *logrus.Entry, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), o.stageTimeout)
	defer cancel()
	if err := o.store.MarkFailed(ctx, id, reason); err != nil {
		log.WithField("error", err.Error()).Error("Failed to persist transfer failure")
		return
	}
	log.WithField("reason", reason).Warn("Transfer failed")
}

// resolveRecipient parses and ownership-checks the recipient reference. A
// malformed id and an unowned id are indistinguishable to the caller.
func (o *Orchestrator) resolveRecipient(ctx context.Context, senderID uint, id string) (*domain.Recipient, error) {
	rid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.NewNotFoundError(domain.CodeRecipientNotFound, "recipient not found")
	}
	recipient, err := o.store.GetRecipient(ctx, rid, senderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.NewNotFoundError(domain.CodeRecipientNotFound, "recipient not found")
		}
		return nil, err
	}
	return recipient, nil
}

// resolvePaymentMethod parses and ownership-checks the payment method reference
func (o *Orchestrator) resolvePaymentMethod(ctx context.Context, senderID uint, id string) (*domain.PaymentMethod, error) {
	mid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.NewNotFoundError(domain.CodePaymentMethodNotFound, "payment method not found")
	}
	method, err := o.store.GetPaymentMethod(ctx, mid, senderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domain.NewNotFoundError(domain.CodePaymentMethodNotFound, "payment method not found")
		}
		return nil, err
	}
	return method, nil
}
