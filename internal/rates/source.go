package rates

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// referenceRates is the static fallback table, keyed by ordered pair. It is
// also the price book for the simulated feed used in development.
var referenceRates = map[string]decimal.Decimal{
	"USD:MXN": decimal.RequireFromString("17.50"),
	"USD:INR": decimal.RequireFromString("83.20"),
	"USD:PHP": decimal.RequireFromString("56.40"),
	"USD:NGN": decimal.RequireFromString("1480.00"),
	"USD:EUR": decimal.RequireFromString("0.92"),
	"USD:GBP": decimal.RequireFromString("0.79"),
	"EUR:USD": decimal.RequireFromString("1.0870"),
	"EUR:MXN": decimal.RequireFromString("19.02"),
	"GBP:USD": decimal.RequireFromString("1.2660"),
	"GBP:INR": decimal.RequireFromString("105.30"),
	"MXN:USD": decimal.RequireFromString("0.057143"),
}

// ErrUnknownPair is returned by the simulated feed for pairs outside its book
var ErrUnknownPair = errors.New("unknown currency pair")

// SimulatedSource is a stand-in price feed serving the reference table. A
// real deployment replaces it with a client for an external pricing API.
type SimulatedSource struct{}

// NewSimulatedSource builds the simulated feed
func NewSimulatedSource() *SimulatedSource {
	return &SimulatedSource{}
}

// FetchRate serves the reference rate for the ordered pair
func (s *SimulatedSource) FetchRate(_ context.Context, from, to string) (decimal.Decimal, error) {
	rate, ok := referenceRates[from+":"+to]
	if !ok {
		return decimal.Zero, ErrUnknownPair
	}
	return rate, nil
}

// Name identifies the simulated feed on quotes
func (s *SimulatedSource) Name() string {
	return "simulated"
}
