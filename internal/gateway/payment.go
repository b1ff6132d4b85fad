package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PaymentGateway debits senders and credits recipients. Implementations are
// expected to block for the duration of the external call and honour the
// context deadline.
type PaymentGateway interface {
	// Capture debits the amount from the sender's payment method and returns
	// a gateway capture reference.
	Capture(ctx context.Context, methodRef string, amount decimal.Decimal, currency string) (string, error)
	// Payout disburses the amount to the recipient through the given payout
	// method type (bank or cash_pickup) and returns a payout reference.
	Payout(ctx context.Context, recipientRef, payoutType string, amount decimal.Decimal, currency string) (string, error)
}

// SimulatedGateway is an in-memory PaymentGateway with a bounded artificial
// delay and failure injection knobs for tests.
type SimulatedGateway struct {
	delay      time.Duration // Artificial latency per call
	mu         sync.Mutex    // Guards the fields below
	captureErr error         // Forced error for Capture, nil for success
	payoutErr  error         // Forced error for Payout, nil for success
	captures   []string      // Capture references issued, for inspection in tests
	payouts    []string      // Payout references issued, for inspection in tests
}

// NewSimulatedGateway builds a gateway with the given per-call delay
func NewSimulatedGateway(delay time.Duration) *SimulatedGateway {
	return &SimulatedGateway{delay: delay}
}

// FailCaptureWith forces subsequent Capture calls to return err
func (g *SimulatedGateway) FailCaptureWith(err error) *SimulatedGateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.captureErr = err
	return g
}

// FailPayoutWith forces subsequent Payout calls to return err
func (g *SimulatedGateway) FailPayoutWith(err error) *SimulatedGateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payoutErr = err
	return g
}

// Capture simulates debiting the sender's payment method
func (g *SimulatedGateway) Capture(ctx context.Context, methodRef string, amount decimal.Decimal, currency string) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.captureErr != nil {
		return "", g.captureErr
	}
	ref := "cap_" + uuid.NewString()
	g.captures = append(g.captures, ref)
	logrus.WithFields(logrus.Fields{
		"method":   methodRef,
		"amount":   amount.String(),
		"currency": currency,
		"ref":      ref,
	}).Debug("Simulated payment capture")
	return ref, nil
}

// Payout simulates disbursing funds to the recipient
func (g *SimulatedGateway) Payout(ctx context.Context, recipientRef, payoutType string, amount decimal.Decimal, currency string) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.payoutErr != nil {
		return "", g.payoutErr
	}
	// Cash pickups get a short collection code, bank payouts a transfer ref
	prefix := "po_"
	if payoutType == "cash_pickup" {
		prefix = "pickup_"
	}
	ref := prefix + uuid.NewString()
	g.payouts = append(g.payouts, ref)
	logrus.WithFields(logrus.Fields{
		"recipient": recipientRef,
		"type":      payoutType,
		"amount":    amount.String(),
		"currency":  currency,
		"ref":       ref,
	}).Debug("Simulated payout")
	return ref, nil
}

// Captures returns a snapshot of capture references issued so far
func (g *SimulatedGateway) Captures() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.captures...)
}

// Payouts returns a snapshot of payout references issued so far
func (g *SimulatedGateway) Payouts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.payouts...)
}

// wait sleeps for the configured delay or until the context is cancelled
func (g *SimulatedGateway) wait(ctx context.Context) error {
	if g.delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(g.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
