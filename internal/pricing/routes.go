package pricing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Crayann/swiftbase-backend/internal/domain"
)

// RouteQuote is a priced route for a single comparison request. Quotes are
// ephemeral; they are computed per request and never persisted.
type RouteQuote struct {
	Provider       string          `json:"provider"`        // Display name of the provider behind the route
	RouteType      string          `json:"routeType"`       // Route identifier, see domain route constants
	Fee            decimal.Decimal `json:"fee"`             // Total fee charged to the sender
	EffectiveRate  decimal.Decimal `json:"effectiveRate"`   // Mid-market rate after the route's spread
	AmountReceived decimal.Decimal `json:"amountReceived"`  // Estimated payout to the recipient
	Delivery       string          `json:"delivery"`        // Human readable delivery estimate
	Savings        decimal.Decimal `json:"savings"`         // Payout advantage over the traditional baseline
	SavingsPercent decimal.Decimal `json:"savingsPercent"`  // Savings as a percentage of the baseline payout
	Recommended    bool            `json:"recommended"`     // Exactly one route per comparison carries this flag
}

// profile is a configured fee and spread model for one route
type profile struct {
	provider    string          // Display name
	routeType   string          // Route identifier
	feeRate     decimal.Decimal // Proportional fee on the amount sent
	flatFee     decimal.Decimal // Fixed fee added on top
	spread      decimal.Decimal // Proportional markdown on the mid-market rate
	delivery    string          // Delivery estimate shown to the user
	eta         time.Duration   // Delivery estimate used for completion times
	recommended bool            // Flagged on the comparison output
}

// Configured route profiles. bank_transfer is the traditional baseline that
// savings are measured against.
var profiles = []profile{
	{
		provider:    "SwiftBase",
		routeType:   domain.RouteXRPLDirect,
		feeRate:     decimal.RequireFromString("0.01"),
		flatFee:     decimal.Zero,
		spread:      decimal.RequireFromString("0.003"),
		delivery:    "~5 minutes",
		eta:         5 * time.Minute,
		recommended: true,
	},
	{
		provider:  "RemitRival",
		routeType: domain.RouteCompetitor,
		feeRate:   decimal.RequireFromString("0.015"),
		flatFee:   decimal.RequireFromString("1.99"),
		spread:    decimal.RequireFromString("0.005"),
		delivery:  "1-2 business days",
		eta:       36 * time.Hour,
	},
	{
		provider:  "Legacy Bank Wire",
		routeType: domain.RouteBankTransfer,
		feeRate:   decimal.RequireFromString("0.03"),
		flatFee:   decimal.RequireFromString("4.99"),
		spread:    decimal.RequireFromString("0.02"),
		delivery:  "3-5 business days",
		eta:       96 * time.Hour,
	},
}

// MinAmount is the smallest amount any route will price
var MinAmount = decimal.NewFromInt(10)

var hundred = decimal.NewFromInt(100)

// CompareRoutes prices every configured route for the given amount and
// mid-market rate and returns them best-for-recipient first. It is a pure
// function: identical inputs always produce identical output.
func CompareRoutes(amount decimal.Decimal, fromCurrency, toCurrency string, midMarketRate decimal.Decimal) ([]RouteQuote, error) {
	if amount.LessThan(MinAmount) {
		return nil, domain.NewValidationError(domain.CodeInvalidAmount, "amount must be at least "+MinAmount.String())
	}
	if !validCurrency(fromCurrency) || !validCurrency(toCurrency) {
		return nil, domain.NewValidationError(domain.CodeInvalidCurrency, "currency codes must be 3 letters")
	}

	// Price the traditional baseline first so every route's savings can be
	// measured against it
	baseline := price(baselineProfile(), amount, midMarketRate)

	quotes := make([]RouteQuote, 0, len(profiles))
	for _, p := range profiles {
		q := price(p, amount, midMarketRate)
		q.Savings = q.AmountReceived.Sub(baseline.AmountReceived).Round(2)
		if baseline.AmountReceived.IsPositive() {
			q.SavingsPercent = q.Savings.Div(baseline.AmountReceived).Mul(hundred).Round(2)
		}
		quotes = append(quotes, q)
	}

	// Best payout first; the recommended flag is independent of sort order
	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].AmountReceived.GreaterThan(quotes[j].AmountReceived)
	})
	return quotes, nil
}

// QuoteRoute prices a single named route; used when a transfer is created on
// an already chosen route.
func QuoteRoute(amount decimal.Decimal, routeType string, midMarketRate decimal.Decimal) (RouteQuote, error) {
	p, ok := profileFor(routeType)
	if !ok {
		return RouteQuote{}, domain.NewValidationError(domain.CodeInvalidRoute, "unknown route type "+routeType)
	}
	if amount.LessThan(MinAmount) {
		return RouteQuote{}, domain.NewValidationError(domain.CodeInvalidAmount, "amount must be at least "+MinAmount.String())
	}
	return price(p, amount, midMarketRate), nil
}

// DeliveryEstimate returns the expected completion delay for a route; unknown
// routes fall back to the baseline estimate.
func DeliveryEstimate(routeType string) time.Duration {
	if p, ok := profileFor(routeType); ok {
		return p.eta
	}
	return baselineProfile().eta
}

// BaselineFee returns the fee the traditional baseline route would have
// charged on the amount; used to estimate realized savings.
func BaselineFee(amount decimal.Decimal) decimal.Decimal {
	p := baselineProfile()
	return amount.Mul(p.feeRate).Add(p.flatFee).Round(2)
}

// KnownRoute reports whether the route type has a configured profile
func KnownRoute(routeType string) bool {
	_, ok := profileFor(routeType)
	return ok
}

// price applies a profile's fee and spread model to the amount
func price(p profile, amount, midMarketRate decimal.Decimal) RouteQuote {
	fee := amount.Mul(p.feeRate).Add(p.flatFee).Round(2)
	effectiveRate := midMarketRate.Mul(decimal.NewFromInt(1).Sub(p.spread)).Round(6)
	received := amount.Sub(fee).Mul(effectiveRate).Round(2)
	return RouteQuote{
		Provider:       p.provider,
		RouteType:      p.routeType,
		Fee:            fee,
		EffectiveRate:  effectiveRate,
		AmountReceived: received,
		Delivery:       p.delivery,
		Savings:        decimal.Zero,
		SavingsPercent: decimal.Zero,
		Recommended:    p.recommended,
	}
}

func profileFor(routeType string) (profile, bool) {
	for _, p := range profiles {
		if p.routeType == routeType {
			return p, true
		}
	}
	return profile{}, false
}

func baselineProfile() profile {
	p, _ := profileFor(domain.RouteBankTransfer)
	return p
}

// validCurrency checks for a 3-letter alphabetic code, case insensitive
func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}
