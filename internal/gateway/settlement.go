package gateway

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Crayann/swiftbase-backend/internal/rates"
)

// Settlement is the outcome of one cross-currency settlement leg
type Settlement struct {
	Reference      string          // Verifiable ledger reference
	AmountReceived decimal.Decimal // Realized payout amount in the target currency
	Rate           decimal.Decimal // Rate the leg actually settled at
}

// SettlementAdapter moves value cross-currency and produces a verifiable
// reference. The leg prices with its own rate, which may differ slightly from
// the rate quoted when the transfer was created.
type SettlementAdapter interface {
	Settle(ctx context.Context, amount decimal.Decimal, fromCurrency, toCurrency string) (Settlement, error)
}

// SimulatedLedger settles over a pretend XRP Ledger leg: it prices against
// the live provider rate minus its own settlement spread and issues 64-hex
// references shaped like ledger transaction hashes.
type SimulatedLedger struct {
	rates  *rates.Provider // Rate source for the leg's own pricing
	spread decimal.Decimal // Settlement leg's proportional markdown
	delay  time.Duration   // Artificial latency per call
	mu     sync.Mutex      // Guards err
	err    error           // Forced error for tests, nil for success
}

// NewSimulatedLedger builds a settlement leg over the given rate provider
func NewSimulatedLedger(provider *rates.Provider, delay time.Duration) *SimulatedLedger {
	return &SimulatedLedger{
		rates:  provider,
		spread: decimal.RequireFromString("0.001"),
		delay:  delay,
	}
}

// FailWith forces subsequent Settle calls to return err
func (l *SimulatedLedger) FailWith(err error) *SimulatedLedger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
	return l
}

// Settle converts the amount at the leg's own rate and returns the reference
func (l *SimulatedLedger) Settle(ctx context.Context, amount decimal.Decimal, fromCurrency, toCurrency string) (Settlement, error) {
	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
			return Settlement{}, ctx.Err()
		}
	}
	l.mu.Lock()
	forced := l.err
	l.mu.Unlock()
	if forced != nil {
		return Settlement{}, forced
	}

	quote, err := l.rates.GetRate(ctx, fromCurrency, toCurrency)
	if err != nil {
		return Settlement{}, err
	}
	// The leg settles at its own rate, not the rate stored on the transaction
	rate := quote.Rate.Mul(decimal.NewFromInt(1).Sub(l.spread)).Round(6)
	received := amount.Mul(rate).Round(2)
	ref := newLedgerRef()
	logrus.WithFields(logrus.Fields{
		"pair":     fromCurrency + ":" + toCurrency,
		"amount":   amount.String(),
		"received": received.String(),
		"rate":     rate.String(),
		"ref":      ref,
	}).Debug("Simulated ledger settlement")
	return Settlement{Reference: ref, AmountReceived: received, Rate: rate}, nil
}

// newLedgerRef issues a 64-hex reference shaped like an XRPL tx hash
func newLedgerRef() string {
	raw := make([]byte, 32)
	_, _ = rand.Read(raw)
	return strings.ToUpper(hex.EncodeToString(raw))
}
