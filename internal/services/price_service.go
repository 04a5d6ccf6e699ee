package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"trading-contests/internal/metrics"

	"github.com/shopspring/decimal"
)

// Quote is one observation of an instrument's market price. Longs open at
// the ask and close at the bid; shorts the other way around.
type Quote struct {
	Symbol    string
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	Timestamp time.Time
}

// PriceFeed supplies market quotes. Implementations must return an error
// when no fresh quote exists; settlement never invents a price.
type PriceFeed interface {
	GetPrice(ctx context.Context, symbol string) (Quote, error)
}

// PriceService fetches quotes over HTTP with a short read cache so that a
// risk sweep over many positions does not hammer the provider.
type PriceService struct {
	quotesMux sync.RWMutex
	quotes    map[string]Quote

	baseURL  string
	cacheTTL time.Duration
	client   *http.Client
}

func NewPriceService(baseURL string, cacheTTL time.Duration) *PriceService {
	return &PriceService{
		quotes:   make(map[string]Quote),
		baseURL:  baseURL,
		cacheTTL: cacheTTL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// GetPrice returns the latest quote for a symbol (e.g. "EUR/USD").
// A cached quote younger than the TTL is served without a network call.
func (ps *PriceService) GetPrice(ctx context.Context, symbol string) (Quote, error) {
	ps.quotesMux.RLock()
	quote, ok := ps.quotes[symbol]
	ps.quotesMux.RUnlock()

	if ok && time.Since(quote.Timestamp) < ps.cacheTTL {
		return quote, nil
	}

	quote, err := ps.fetchQuote(ctx, symbol)
	if err != nil {
		metrics.PriceFeedErrorsTotal.Inc()
		log.Printf("[PriceService] Quote fetch failed for %s: %v", symbol, err)
		return Quote{}, NewExternalDependencyError("price feed", err)
	}

	ps.quotesMux.Lock()
	ps.quotes[symbol] = quote
	ps.quotesMux.Unlock()

	return quote, nil
}

// fetchQuote calls GET {baseURL}/quote?symbol=EUR/USD
// Response: {"symbol":"EUR/USD","bid":"1.08495","ask":"1.08505"}
func (ps *PriceService) fetchQuote(ctx context.Context, symbol string) (Quote, error) {
	endpoint := fmt.Sprintf("%s/quote?symbol=%s", ps.baseURL, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("building quote request: %w", err)
	}

	resp, err := ps.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Quote{}, fmt.Errorf("quote endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Symbol string `json:"symbol"`
		Bid    string `json:"bid"`
		Ask    string `json:"ask"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Quote{}, fmt.Errorf("quote parse error: %w", err)
	}

	bid, err := decimal.NewFromString(payload.Bid)
	if err != nil {
		return Quote{}, fmt.Errorf("invalid bid %q for %s", payload.Bid, symbol)
	}
	ask, err := decimal.NewFromString(payload.Ask)
	if err != nil {
		return Quote{}, fmt.Errorf("invalid ask %q for %s", payload.Ask, symbol)
	}
	if bid.IsZero() || ask.IsZero() {
		return Quote{}, fmt.Errorf("zero quote for %s", symbol)
	}

	return Quote{Symbol: symbol, Bid: bid, Ask: ask, Timestamp: time.Now()}, nil
}

// StaticPriceFeed serves fixed quotes. Used in tests and local development.
type StaticPriceFeed struct {
	mu     sync.RWMutex
	quotes map[string]Quote
	errs   map[string]error
}

func NewStaticPriceFeed() *StaticPriceFeed {
	return &StaticPriceFeed{
		quotes: make(map[string]Quote),
		errs:   make(map[string]error),
	}
}

// SetQuote installs a quote with the given bid and ask.
func (f *StaticPriceFeed) SetQuote(symbol string, bid, ask decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.errs, symbol)
	f.quotes[symbol] = Quote{Symbol: symbol, Bid: bid, Ask: ask, Timestamp: time.Now()}
}

// SetError makes GetPrice fail for the symbol until a quote is set again.
func (f *StaticPriceFeed) SetError(symbol string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[symbol] = err
}

func (f *StaticPriceFeed) GetPrice(_ context.Context, symbol string) (Quote, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if err, ok := f.errs[symbol]; ok {
		return Quote{}, NewExternalDependencyError("price feed", err)
	}
	quote, ok := f.quotes[symbol]
	if !ok {
		return Quote{}, NewExternalDependencyError("price feed", fmt.Errorf("no quote for %s", symbol))
	}
	return quote, nil
}
