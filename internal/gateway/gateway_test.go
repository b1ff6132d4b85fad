package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Crayann/swiftbase-backend/internal/rates"
)

func TestSimulatedGatewayReferences(t *testing.T) {
	g := NewSimulatedGateway(0)
	ctx := context.Background()

	capRef, err := g.Capture(ctx, "pm_1", decimal.RequireFromString("100"), "USD")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(capRef, "cap_"))

	bankRef, err := g.Payout(ctx, "rcp_1", "bank", decimal.RequireFromString("1730"), "MXN")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(bankRef, "po_"))

	pickupRef, err := g.Payout(ctx, "rcp_2", "cash_pickup", decimal.RequireFromString("1730"), "MXN")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(pickupRef, "pickup_"))

	assert.Equal(t, []string{capRef}, g.Captures())
	assert.Equal(t, []string{bankRef, pickupRef}, g.Payouts())
}

func TestSimulatedGatewayFailureInjection(t *testing.T) {
	forced := errors.New("card declined")
	g := NewSimulatedGateway(0).FailCaptureWith(forced)

	_, err := g.Capture(context.Background(), "pm_1", decimal.RequireFromString("100"), "USD")
	assert.ErrorIs(t, err, forced)
	assert.Empty(t, g.Captures())
}

func TestSimulatedGatewayHonoursContextDeadline(t *testing.T) {
	g := NewSimulatedGateway(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.Capture(ctx, "pm_1", decimal.RequireFromString("100"), "USD")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSimulatedLedgerSettle(t *testing.T) {
	provider := rates.NewProvider(rates.NewSimulatedSource(), 0, nil)
	ledger := NewSimulatedLedger(provider, 0)

	// 99 USD over the 17.50 table rate minus the 0.1% settlement spread
	s, err := ledger.Settle(context.Background(), decimal.RequireFromString("99"), "USD", "MXN")
	require.NoError(t, err)
	assert.True(t, s.Rate.Equal(decimal.RequireFromString("17.4825")), "rate was %s", s.Rate)
	assert.True(t, s.AmountReceived.Equal(decimal.RequireFromString("1730.77")), "received %s", s.AmountReceived)
	assert.Len(t, s.Reference, 64)
	assert.Equal(t, strings.ToUpper(s.Reference), s.Reference)
}

func TestSimulatedLedgerFailure(t *testing.T) {
	provider := rates.NewProvider(rates.NewSimulatedSource(), 0, nil)
	forced := errors.New("ledger unavailable")
	ledger := NewSimulatedLedger(provider, 0).FailWith(forced)

	_, err := ledger.Settle(context.Background(), decimal.RequireFromString("99"), "USD", "MXN")
	assert.ErrorIs(t, err, forced)
}
