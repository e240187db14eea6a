package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/screener/internal/cache"
	"github.com/newthinker/screener/internal/collector"
	"github.com/newthinker/screener/internal/core"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	baseURL = "https://api.coingecko.com/api/v3"

	// DefaultBackoff is how long to wait after an HTTP 429 before the single retry
	DefaultBackoff = 60 * time.Second
	DefaultTimeout = 15 * time.Second
)

// marketCoin is one element of the /coins/markets response.
// Pointer fields stay nil when the API sends null or omits them.
type marketCoin struct {
	ID             string   `json:"id"`
	Symbol         string   `json:"symbol"`
	Name           string   `json:"name"`
	CurrentPrice   *float64 `json:"current_price"`
	MarketCap      *float64 `json:"market_cap"`
	TotalVolume    *float64 `json:"total_volume"`
	ATH            *float64 `json:"ath"`
	Change24h      *float64 `json:"price_change_percentage_24h"`
	Change7dInCcy  *float64 `json:"price_change_percentage_7d_in_currency"`
	Change30dInCcy *float64 `json:"price_change_percentage_30d_in_currency"`
	Change24hInCcy *float64 `json:"price_change_percentage_24h_in_currency"`
}

func (m marketCoin) toRecord() core.MarketRecord {
	change24h := m.Change24h
	if change24h == nil {
		change24h = m.Change24hInCcy
	}
	return core.MarketRecord{
		ID:        m.ID,
		Symbol:    m.Symbol,
		Name:      m.Name,
		Price:     m.CurrentPrice,
		Change24h: change24h,
		Change7d:  m.Change7dInCcy,
		Change30d: m.Change30dInCcy,
		Volume24h: m.TotalVolume,
		MarketCap: m.MarketCap,
		ATH:       m.ATH,
	}
}

// CoinGecko implements collector.Source over the /coins/markets endpoint
type CoinGecko struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	currency string
	backoff  time.Duration
	breaker  *gobreaker.CircuitBreaker
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// Option configures the CoinGecko source
type Option func(*CoinGecko)

// WithBaseURL sets the API base URL (for testing or the pro endpoint)
func WithBaseURL(u string) Option {
	return func(c *CoinGecko) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithCurrency sets the vs_currency quoted in prices and volumes
func WithCurrency(currency string) Option {
	return func(c *CoinGecko) {
		c.currency = strings.ToLower(currency)
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *CoinGecko) {
		if client != nil {
			c.client = client
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *CoinGecko) {
		c.client.Timeout = timeout
	}
}

// WithBackoff sets the wait after a 429 response
func WithBackoff(d time.Duration) Option {
	return func(c *CoinGecko) {
		c.backoff = d
	}
}

// WithBreaker replaces the default circuit breaker
func WithBreaker(cfg collector.BreakerConfig) Option {
	return func(c *CoinGecko) {
		c.breaker = collector.NewBreaker("coingecko", cfg)
	}
}

// WithCache caches raw pages for ttl
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *CoinGecko) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *CoinGecko) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a new CoinGecko source. apiKey may be empty for the public tier.
func New(apiKey string, opts ...Option) *CoinGecko {
	c := &CoinGecko{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL:  baseURL,
		apiKey:   apiKey,
		currency: "usd",
		backoff:  DefaultBackoff,
		breaker:  collector.NewBreaker("coingecko", collector.BreakerConfig{}),
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *CoinGecko) Name() string {
	return "coingecko"
}

func (c *CoinGecko) marketsURL(page, perPage int) string {
	q := url.Values{}
	q.Set("vs_currency", c.currency)
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("page", strconv.Itoa(page))
	q.Set("sparkline", "false")
	q.Set("price_change_percentage", "24h,7d,30d")
	return c.baseURL + "/coins/markets?" + q.Encode()
}

func (c *CoinGecko) cacheKey(page, perPage int) string {
	return fmt.Sprintf("coingecko:markets:%s:%d:%d", c.currency, perPage, page)
}

// FetchPage fetches one page of coins ordered by market cap
func (c *CoinGecko) FetchPage(ctx context.Context, page, perPage int) ([]core.MarketRecord, error) {
	key := c.cacheKey(page, perPage)

	if c.cache != nil {
		body, found, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		} else if found {
			c.logger.Debug("markets page served from cache", zap.Int("page", page))
			return decodeMarkets(body)
		}
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.fetchWithRetry(ctx, c.marketsURL(page, perPage))
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, core.WrapError(core.ErrCircuitOpen, err)
		}
		return nil, err
	}
	body := result.([]byte)

	records, err := decodeMarkets(body)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && len(records) > 0 {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return records, nil
}

// fetchWithRetry performs the request, and on HTTP 429 waits the fixed backoff
// and tries exactly once more.
func (c *CoinGecko) fetchWithRetry(ctx context.Context, u string) ([]byte, error) {
	body, status, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	if status == http.StatusTooManyRequests {
		c.logger.Warn("rate limited by coingecko, backing off",
			zap.Duration("backoff", c.backoff),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.backoff):
		}

		body, status, err = c.get(ctx, u)
		if err != nil {
			return nil, err
		}
		if status == http.StatusTooManyRequests {
			return nil, core.WrapError(core.ErrRateLimited,
				fmt.Errorf("still rate limited after %s backoff", c.backoff))
		}
	}

	if status != http.StatusOK {
		return nil, core.WrapError(core.ErrCollectorFailed,
			fmt.Errorf("unexpected status: %d", status))
	}
	return body, nil
}

func (c *CoinGecko) get(ctx context.Context, u string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("fetching markets: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("reading response: %w", err))
	}
	return body, resp.StatusCode, nil
}

// decodeMarkets parses a whole page. A malformed payload fails the page rather
// than producing partially populated records.
func decodeMarkets(body []byte) ([]core.MarketRecord, error) {
	var coins []marketCoin
	if err := json.Unmarshal(body, &coins); err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("decoding response: %w", err))
	}

	records := make([]core.MarketRecord, 0, len(coins))
	for _, coin := range coins {
		records = append(records, coin.toRecord())
	}
	return records, nil
}
