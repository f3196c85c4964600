package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "finliquidity/1.0", r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/json":
			assert.Equal(t, "WALCL", r.URL.Query().Get("id"))
			_, _ = w.Write([]byte(`{"bitcoin":{"usd":65000}}`))
		case "/big":
			_, _ = w.Write(make([]byte, 64))
		default:
			http.Error(w, "gone fishing", http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	c := NewClient(WithTimeout(time.Second), WithMaxBodySize(32))
	ctx := context.Background()

	var out map[string]map[string]float64
	require.NoError(t, c.SendAndParse(ctx, &RequestOptions{
		URL:         srv.URL + "/json",
		QueryParams: map[string][]string{"id": {"WALCL"}},
	}, &out))
	assert.Equal(t, 65000.0, out["bitcoin"]["usd"])

	var raw []byte
	err := c.SendAndParse(ctx, &RequestOptions{URL: srv.URL + "/big"}, &raw)
	assert.ErrorIs(t, err, ErrBodyTooLarge)

	err = c.SendAndParse(ctx, &RequestOptions{URL: srv.URL + "/down"}, &raw)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Contains(t, se.Error(), "gone fishing")
}
