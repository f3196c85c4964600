package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"FinLiquidity/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, simplePricePath, r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":43250.5}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, 0, 0, nil, nil)
	p, err := c.Price(context.Background(), "Bitcoin", "USD")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", p.Coin)
	assert.Equal(t, 43250.5, p.Value)
	assert.False(t, p.At.IsZero())
}

func TestPriceMissingCoinIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, 0, 0, nil, nil)
	_, err := c.Price(context.Background(), "dogecoin", "usd")
	assert.ErrorIs(t, err, models.ErrMalformedData)
}

func TestPriceUpstreamErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, 0, 0, nil, nil)
	_, err := c.Price(context.Background(), "bitcoin", "usd")
	assert.ErrorIs(t, err, models.ErrSourceUnavailable)
}

func TestPriceRateLimited(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`{"bitcoin":{"usd":1}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, 0.01, 1, nil, nil)
	_, err := c.Price(context.Background(), "bitcoin", "usd")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Price(ctx, "bitcoin", "usd")
	assert.ErrorIs(t, err, models.ErrSourceUnavailable)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
