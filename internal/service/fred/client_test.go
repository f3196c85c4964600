package fred

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"FinLiquidity/internal/domain/models"
	"FinLiquidity/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, graphPath, r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("id"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchObservationDateLayout(t *testing.T) {
	srv := serve(t, http.StatusOK, "observation_date,WALCL\n2024-01-03,7700000\n2024-01-10,7680000.5\n")
	c := New(srv.URL, time.Second, ColumnRules{}, nil, nil)

	ts, err := c.Fetch(context.Background(), "WALCL")
	require.NoError(t, err)
	require.Equal(t, 2, ts.Len())
	assert.Equal(t, "WALCL", ts.ID)
	assert.Equal(t, util.MustDate("2024-01-10"), ts.Points[1].Date)
	assert.Equal(t, 7680000.5, ts.Points[1].Value)
}

func TestFetchDropsNonNumericRows(t *testing.T) {
	body := "DATE,RRPONTSYD\n2024-01-01,.\n2024-01-02,500\nnot-a-date,1\n2024-01-03,\n2024-01-04,450\n"
	srv := serve(t, http.StatusOK, body)
	c := New(srv.URL, time.Second, ColumnRules{}, nil, nil)

	ts, err := c.Fetch(context.Background(), "RRPONTSYD")
	require.NoError(t, err)
	require.Equal(t, 2, ts.Len())
	assert.Equal(t, 500.0, ts.Points[0].Value)
	assert.Equal(t, 450.0, ts.Points[1].Value)
}

func TestParseCSVDropsCommaFormattedValues(t *testing.T) {
	res, err := ParseCSV([]byte("DATE,X\n2024-01-01,\"1,5\"\n2024-01-02,2\n2024-01-03,\"1,234.5\"\n"), "X", ColumnRules{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Series.Len())
	assert.Equal(t, 2, res.Dropped)
	assert.Equal(t, 2.0, res.Series.Points[0].Value)
}

func TestFetchUsesFallbackValueColumn(t *testing.T) {
	srv := serve(t, http.StatusOK, "DATE,VALUE\n2024-01-01,1\n")
	c := New(srv.URL, time.Second, ColumnRules{}, nil, nil)

	ts, err := c.Fetch(context.Background(), "WTREGEN")
	require.NoError(t, err)
	assert.Equal(t, 1, ts.Len())
}

func TestFetchSeriesColumnOverride(t *testing.T) {
	srv := serve(t, http.StatusOK, "DATE,WTREGEN,close\n2024-01-01,1,99\n")
	c := New(srv.URL, time.Second, ColumnRules{SeriesColumns: map[string]string{"WTREGEN": "close"}}, nil, nil)

	ts, err := c.Fetch(context.Background(), "WTREGEN")
	require.NoError(t, err)
	assert.Equal(t, 99.0, ts.Points[0].Value)
}

func TestFetchMalformed(t *testing.T) {
	cases := map[string]string{
		"no date column":  "when,WALCL\n2024-01-01,1\n",
		"no value column": "DATE,OTHER\n2024-01-01,1\n",
		"no valid rows":   "DATE,WALCL\n2024-01-01,.\n",
		"html":            "<html><body>Series not found</body></html>",
		"empty":           "",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, body)
			c := New(srv.URL, time.Second, ColumnRules{}, nil, nil)
			_, err := c.Fetch(context.Background(), "WALCL")
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrMalformedData)
			assert.NotErrorIs(t, err, models.ErrSourceUnavailable)
		})
	}
}

func TestFetchUnavailable(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := serve(t, http.StatusServiceUnavailable, "down")
		c := New(srv.URL, time.Second, ColumnRules{}, nil, nil)
		_, err := c.Fetch(context.Background(), "WALCL")
		assert.ErrorIs(t, err, models.ErrSourceUnavailable)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		c := New(srv.URL, 20*time.Millisecond, ColumnRules{}, nil, nil)
		_, err := c.Fetch(context.Background(), "WALCL")
		assert.ErrorIs(t, err, models.ErrSourceUnavailable)
	})

	t.Run("refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()
		c := New(addr, time.Second, ColumnRules{}, nil, nil)
		_, err := c.Fetch(context.Background(), "WALCL")
		assert.ErrorIs(t, err, models.ErrSourceUnavailable)
	})
}

func TestResolveOrder(t *testing.T) {
	rules := ColumnRules{DateColumns: []string{"DATE", "observation_date"}, ValueFallbacks: []string{"VALUE", "close"}}

	di, vi, err := rules.Resolve([]string{"observation_date", "close", "X"}, "X")
	require.NoError(t, err)
	assert.Equal(t, 0, di)
	assert.Equal(t, 2, vi, "exact series id beats fallbacks")

	_, vi, err = rules.Resolve([]string{"\ufeffDATE", "close", "VALUE"}, "Y")
	require.NoError(t, err)
	assert.Equal(t, 2, vi, "fallbacks are tried in configured order")
}
