package rates

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Crayann/swiftbase-backend/internal/domain"
)

// Source is an upstream mid-market price feed
type Source interface {
	FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error) // Fetch the mid-market rate for an ordered pair
	Name() string                                                            // Feed name recorded on quotes
}

// Quote is a mid-market rate for a single ordered currency pair
type Quote struct {
	From      string          `json:"from"`      // Base currency
	To        string          `json:"to"`        // Quote currency
	Rate      decimal.Decimal `json:"rate"`      // Mid-market rate, 6 fractional digits
	Timestamp time.Time       `json:"timestamp"` // When the rate was obtained
	Source    string          `json:"source"`    // Feed the rate came from
	Mock      bool            `json:"mock"`      // True when served from the static fallback table
}

// Pair is an ordered currency pair for batch lookups
type Pair struct {
	From string `json:"from"` // Base currency
	To   string `json:"to"`   // Quote currency
}

// cached pairs a quote with the instant it was stored
type cached struct {
	quote   Quote
	storedAt time.Time
}

// Provider serves mid-market quotes with a bounded-freshness cache in front
// of the upstream feed. The cache is keyed by the ordered pair only; USD:MXN
// and MXN:USD never share an entry. On upstream failure the provider answers
// from a static reference table instead of failing the caller.
type Provider struct {
	source Source                // Upstream feed
	ttl    time.Duration         // Freshness window for cached quotes
	now    func() time.Time      // Injected clock
	mu     sync.Mutex            // Guards cache; never held across a FetchRate call
	cache  map[string]cached     // Keyed by ordered pair "FROM:TO"
}

// DefaultTTL is the freshness window applied when none is configured
const DefaultTTL = 60 * time.Second

// NewProvider builds a Provider over the given feed. A zero ttl selects
// DefaultTTL; a nil clock selects time.Now.
func NewProvider(source Source, ttl time.Duration, now func() time.Time) *Provider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Provider{
		source: source,
		ttl:    ttl,
		now:    now,
		cache:  make(map[string]cached),
	}
}

// GetRate returns a mid-market quote for the ordered pair, reusing a cached
// quote while it is fresh and falling back to the reference table when the
// upstream feed errors.
func (p *Provider) GetRate(ctx context.Context, from, to string) (Quote, error) {
	from, to = normalize(from), normalize(to)
	if !validCode(from) || !validCode(to) {
		return Quote{}, domain.NewValidationError(domain.CodeInvalidCurrency, "currency codes must be 3 letters")
	}
	key := from + ":" + to

	// Fresh cache hit: reuse without touching upstream
	p.mu.Lock()
	if c, ok := p.cache[key]; ok && p.now().Sub(c.storedAt) < p.ttl {
		p.mu.Unlock()
		return c.quote, nil
	}
	p.mu.Unlock()

	rate, err := p.source.FetchRate(ctx, from, to)
	if err != nil {
		// Upstream outage: answer from the static table rather than blocking
		// downstream pricing on a third-party failure
		ref, ok := referenceRates[key]
		if !ok {
			return Quote{}, domain.NewValidationError(domain.CodeInvalidCurrency, "unsupported currency pair "+key)
		}
		logrus.WithFields(logrus.Fields{
			"pair":  key,
			"error": err.Error(),
		}).Warn("Rate feed unavailable, serving fallback rate")
		q := Quote{From: from, To: to, Rate: ref, Timestamp: p.now(), Source: "fallback", Mock: true}
		p.store(key, q)
		return q, nil
	}

	q := Quote{From: from, To: to, Rate: rate.Round(6), Timestamp: p.now(), Source: p.source.Name()}
	p.store(key, q)
	return q, nil
}

// GetBatchRates resolves several pairs and returns quotes in the same order,
// one-to-one with the input.
func (p *Provider) GetBatchRates(ctx context.Context, pairs []Pair) ([]Quote, error) {
	quotes := make([]Quote, 0, len(pairs))
	for _, pair := range pairs {
		q, err := p.GetRate(ctx, pair.From, pair.To)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// store records a quote under its pair key
func (p *Provider) store(key string, q Quote) {
	p.mu.Lock()
	p.cache[key] = cached{quote: q, storedAt: p.now()}
	p.mu.Unlock()
}

// normalize upper-cases and trims a currency code
func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// validCode checks for a 3-letter alphabetic currency code
func validCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
