package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Crayann/swiftbase-backend/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompareRoutesWorkedScenario(t *testing.T) {
	routes, err := CompareRoutes(dec("100"), "USD", "MXN", dec("17.5"))
	require.NoError(t, err)
	require.Len(t, routes, 3)

	var direct RouteQuote
	for _, r := range routes {
		if r.RouteType == domain.RouteXRPLDirect {
			direct = r
		}
	}
	require.NotEmpty(t, direct.RouteType)
	assert.True(t, direct.Fee.Equal(dec("1")), "fee = %s", direct.Fee)
	assert.True(t, direct.EffectiveRate.Equal(dec("17.4475")), "effective rate = %s", direct.EffectiveRate)
	// (100 - 1.00) * 17.4475 = 1727.3025, rounded to cents
	assert.True(t, direct.AmountReceived.Equal(dec("1727.30")), "received = %s", direct.AmountReceived)
}

func TestCompareRoutesSortedByReceivedDescending(t *testing.T) {
	amounts := []string{"10", "50", "100", "2500", "10000"}
	for _, a := range amounts {
		routes, err := CompareRoutes(dec(a), "USD", "MXN", dec("17.5"))
		require.NoError(t, err)
		for i := 1; i < len(routes); i++ {
			assert.True(t, routes[i-1].AmountReceived.GreaterThanOrEqual(routes[i].AmountReceived),
				"amount %s: routes out of order at %d", a, i)
		}
	}
}

func TestCompareRoutesExactlyOneRecommended(t *testing.T) {
	routes, err := CompareRoutes(dec("250"), "USD", "INR", dec("83.2"))
	require.NoError(t, err)
	recommended := 0
	for _, r := range routes {
		if r.Recommended {
			recommended++
			assert.Equal(t, domain.RouteXRPLDirect, r.RouteType)
		}
	}
	assert.Equal(t, 1, recommended)
}

func TestCompareRoutesTraditionalSavingsIsZero(t *testing.T) {
	routes, err := CompareRoutes(dec("500"), "USD", "PHP", dec("56.4"))
	require.NoError(t, err)
	for _, r := range routes {
		if r.RouteType == domain.RouteBankTransfer {
			assert.True(t, r.Savings.IsZero(), "traditional savings = %s", r.Savings)
			assert.True(t, r.SavingsPercent.IsZero())
			return
		}
	}
	t.Fatal("traditional route missing from comparison")
}

func TestCompareRoutesSavingsMeasuredAgainstTraditional(t *testing.T) {
	routes, err := CompareRoutes(dec("100"), "USD", "MXN", dec("17.5"))
	require.NoError(t, err)
	var direct, traditional RouteQuote
	for _, r := range routes {
		switch r.RouteType {
		case domain.RouteXRPLDirect:
			direct = r
		case domain.RouteBankTransfer:
			traditional = r
		}
	}
	expected := direct.AmountReceived.Sub(traditional.AmountReceived).Round(2)
	assert.True(t, direct.Savings.Equal(expected), "savings = %s, want %s", direct.Savings, expected)
	assert.True(t, direct.Savings.IsPositive())
}

func TestCompareRoutesInvalidAmount(t *testing.T) {
	for _, a := range []string{"9.99", "5", "0", "-3"} {
		_, err := CompareRoutes(dec(a), "USD", "MXN", dec("17.5"))
		require.Error(t, err, "amount %s", a)
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, domain.CodeInvalidAmount, validationErr.Code)
	}
}

func TestCompareRoutesInvalidCurrency(t *testing.T) {
	cases := [][2]string{{"US", "MXN"}, {"USDX", "MXN"}, {"USD", "M2N"}, {"USD", ""}}
	for _, c := range cases {
		_, err := CompareRoutes(dec("100"), c[0], c[1], dec("17.5"))
		require.Error(t, err, "pair %v", c)
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, domain.CodeInvalidCurrency, validationErr.Code)
	}
}

func TestCompareRoutesIsDeterministic(t *testing.T) {
	first, err := CompareRoutes(dec("321.45"), "USD", "MXN", dec("17.5"))
	require.NoError(t, err)
	second, err := CompareRoutes(dec("321.45"), "USD", "MXN", dec("17.5"))
	require.NoError(t, err)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, first[i].AmountReceived.Equal(second[i].AmountReceived))
		assert.True(t, first[i].Fee.Equal(second[i].Fee))
	}
}

func TestQuoteRouteUnknownRoute(t *testing.T) {
	_, err := QuoteRoute(dec("100"), "carrier_pigeon", dec("17.5"))
	require.Error(t, err)
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, domain.CodeInvalidRoute, validationErr.Code)
}

func TestBaselineFeeMatchesTraditionalProfile(t *testing.T) {
	// 100 * 0.03 + 4.99
	assert.True(t, BaselineFee(dec("100")).Equal(dec("7.99")))
}
