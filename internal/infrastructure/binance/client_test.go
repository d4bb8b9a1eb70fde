package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestGetKlines_ParsesCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fapi/v1/klines" || r.URL.Query().Get("interval") != "4h" {
			t.Errorf("unexpected request %s", r.URL)
		}
		w.Write([]byte(`[[1700000000000,"100.5","110","95","105.25","1234.5",1700014399999,"0",10,"0","0","0"]]`))
	}))
	defer srv.Close()

	candles, err := NewClient(srv.URL).GetKlines(context.Background(), "BTCUSDT", "4h", 1)
	if err != nil {
		t.Fatalf("GetKlines: %v", err)
	}
	if len(candles) != 1 {
		t.Fatalf("got %d candles", len(candles))
	}
	c := candles[0]
	if c.Open != 100.5 || c.High != 110 || c.Low != 95 || c.Close != 105.25 || c.Volume != 1234.5 {
		t.Errorf("candle = %+v", c)
	}
	if !c.OpenTime.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("open time = %v", c.OpenTime)
	}
}

func TestGet_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetTicker24h(context.Background(), "NOPE")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != -1121 || apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("api error = %+v", apiErr)
	}
}

func TestPriceFeed_CachesAndFallsBackToStale(t *testing.T) {
	var calls atomic.Int32
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"symbol":"BTCUSDT","lastPrice":"65000.5","highPrice":"66000","lowPrice":"64000","quoteVolume":"1000000","priceChangePercent":"1.5"}`))
	}))
	defer srv.Close()

	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	feed := NewPriceFeed(NewClient(srv.URL), 30*time.Second, clock, zerolog.Nop())
	ctx := context.Background()

	coin, err := feed.GetCoin(ctx, "btcusdt")
	if err != nil {
		t.Fatalf("GetCoin: %v", err)
	}
	if coin.CurrentPrice != 65000.5 || coin.Symbol != "BTCUSDT" || coin.ID != "btcusdt" {
		t.Errorf("coin = %+v", coin)
	}

	if _, err := feed.GetCoin(ctx, "BTCUSDT"); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected cached read, got %d calls", calls.Load())
	}

	clock.now = clock.now.Add(time.Minute)
	fail.Store(true)
	coin, err = feed.GetCoin(ctx, "BTCUSDT")
	if err != nil {
		t.Fatalf("expected stale fallback, got %v", err)
	}
	if coin.CurrentPrice != 65000.5 {
		t.Errorf("stale price = %v", coin.CurrentPrice)
	}

	if _, err := feed.GetCoin(ctx, "ETHUSDT"); err == nil {
		t.Error("expected error for uncached symbol")
	}
}

func TestPriceFeed_SweepStale(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"BTCUSDT","lastPrice":"65000.5","quoteVolume":"1000000"}`))
	}))
	defer srv.Close()

	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	feed := NewPriceFeed(NewClient(srv.URL), 30*time.Second, clock, zerolog.Nop())
	if _, err := feed.GetCoin(context.Background(), "BTCUSDT"); err != nil {
		t.Fatal(err)
	}
	clock.now = clock.now.Add(2 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		feed.SweepStale(ctx, 5*time.Millisecond, time.Hour)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for feed.cache.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("stale price was never swept")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
}

func TestTopSymbolsByVolume(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fapi/v1/exchangeInfo":
			w.Write([]byte(`{"symbols":[
				{"symbol":"BTCUSDT","status":"TRADING","contractType":"PERPETUAL","quoteAsset":"USDT"},
				{"symbol":"ETHUSDT","status":"TRADING","contractType":"PERPETUAL","quoteAsset":"USDT"},
				{"symbol":"OLDUSDT","status":"SETTLING","contractType":"PERPETUAL","quoteAsset":"USDT"},
				{"symbol":"SOLUSDT","status":"TRADING","contractType":"PERPETUAL","quoteAsset":"USDT"}]}`))
		case "/fapi/v1/ticker/24hr":
			w.Write([]byte(`[
				{"symbol":"BTCUSDT","lastPrice":"1","quoteVolume":"300"},
				{"symbol":"ETHUSDT","lastPrice":"1","quoteVolume":"200"},
				{"symbol":"OLDUSDT","lastPrice":"1","quoteVolume":"900"},
				{"symbol":"SOLUSDT","lastPrice":"1","quoteVolume":"250"}]`))
		}
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL).TopSymbolsByVolume(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "BTCUSDT" || got[1] != "SOLUSDT" {
		t.Errorf("top symbols = %v", got)
	}
}
