package binance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"signal-backend/internal/domain"
	"signal-backend/internal/infrastructure/cache"
)

// ErrNoPrice is returned when neither Binance nor the cache can supply a price.
var ErrNoPrice = errors.New("no price available")

// PriceFeed serves coin prices from the 24h ticker through a TTL cache. When Binance fails,
// the last cached record is returned regardless of age.
type PriceFeed struct {
	client *Client
	cache  *cache.TTL[domain.Coin]
	logger zerolog.Logger
}

var _ domain.PriceSource = (*PriceFeed)(nil)

func NewPriceFeed(client *Client, ttl time.Duration, clock cache.Clock, logger zerolog.Logger) *PriceFeed {
	return &PriceFeed{
		client: client,
		cache:  cache.NewTTL[domain.Coin](ttl, clock),
		logger: logger.With().Str("component", "price_feed").Logger(),
	}
}

func (f *PriceFeed) GetCoin(ctx context.Context, symbol string) (domain.Coin, error) {
	symbol = strings.ToUpper(symbol)
	if coin, ok := f.cache.Get(symbol); ok {
		return coin, nil
	}

	ticker, err := f.client.GetTicker24h(ctx, symbol)
	if err == nil {
		var coin domain.Coin
		coin, err = coinFromTicker(ticker)
		if err == nil {
			f.cache.Set(symbol, coin)
			return coin, nil
		}
	}

	if stale, ok := f.cache.GetStale(symbol); ok {
		f.logger.Warn().Err(err).Str("symbol", symbol).Msg("serving stale price")
		return stale, nil
	}
	return domain.Coin{}, fmt.Errorf("%w for %s: %v", ErrNoPrice, symbol, err)
}

// SweepStale drops cached prices older than maxAge every interval until ctx ends. Entries
// younger than maxAge stay available as the stale fallback of GetCoin.
func (f *PriceFeed) SweepStale(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := f.cache.Sweep(maxAge); removed > 0 {
				f.logger.Debug().Int("removed", removed).Int("remaining", f.cache.Len()).Msg("swept price cache")
			}
		}
	}
}

// Prime stores every ticker from one bulk request so a job run does not issue a request
// per coin.
func (f *PriceFeed) Prime(ctx context.Context) (int, error) {
	tickers, err := f.client.GetFutures24hrTicker(ctx)
	if err != nil {
		return 0, err
	}
	stored := 0
	for _, t := range tickers {
		coin, err := coinFromTicker(t)
		if err != nil {
			continue
		}
		f.cache.Set(coin.Symbol, coin)
		stored++
	}
	return stored, nil
}

func coinFromTicker(t Ticker24h) (domain.Coin, error) {
	price, err := strconv.ParseFloat(t.LastPrice, 64)
	if err != nil || price <= 0 {
		return domain.Coin{}, fmt.Errorf("invalid last price %q for %s", t.LastPrice, t.Symbol)
	}
	// Optional fields stay zero when unparsable.
	high, _ := strconv.ParseFloat(t.HighPrice, 64)
	low, _ := strconv.ParseFloat(t.LowPrice, 64)
	volume, _ := strconv.ParseFloat(t.QuoteVolume, 64)
	change, _ := strconv.ParseFloat(t.PriceChangePercent, 64)

	return domain.Coin{
		ID:                 strings.ToLower(t.Symbol),
		Symbol:             t.Symbol,
		CurrentPrice:       price,
		High24h:            high,
		Low24h:             low,
		QuoteVolume:        volume,
		PriceChangePercent: change,
	}, nil
}

// TopSymbolsByVolume returns the n most traded active symbols.
func (c *Client) TopSymbolsByVolume(ctx context.Context, n int) ([]string, error) {
	active, err := c.GetActiveTradingSymbols(ctx)
	if err != nil {
		return nil, err
	}
	activeSet := make(map[string]bool, len(active))
	for _, s := range active {
		activeSet[s] = true
	}

	tickers, err := c.GetFutures24hrTicker(ctx)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		symbol string
		volume float64
	}
	var candidates []ranked
	for _, t := range tickers {
		if !activeSet[t.Symbol] {
			continue
		}
		v, err := strconv.ParseFloat(t.QuoteVolume, 64)
		if err != nil {
			continue
		}
		candidates = append(candidates, ranked{t.Symbol, v})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].volume > candidates[j].volume })

	if n > 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	symbols := make([]string, len(candidates))
	for i, c := range candidates {
		symbols[i] = c.symbol
	}
	return symbols, nil
}
