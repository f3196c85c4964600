package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"
	"time"

	"FinLiquidity/internal/domain/models"
	pkgch "FinLiquidity/pkg/clickhouse"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDB serves canned rows for any query through database/sql.
type stubDB struct {
	rows     [][]driver.Value
	queryErr error
	lastArgs []driver.Value
}

func (s *stubDB) Connect(context.Context) (driver.Conn, error) { return &stubConn{db: s}, nil }
func (s *stubDB) Driver() driver.Driver                         { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return nil, errors.New("use connector") }

type stubConn struct{ db *stubDB }

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return &stubStmt{db: c.db}, nil }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error)           { return nil, errors.New("no tx") }

type stubStmt struct{ db *stubDB }

func (s *stubStmt) Close() error                               { return nil }
func (s *stubStmt) NumInput() int                              { return -1 }
func (s *stubStmt) Exec([]driver.Value) (driver.Result, error) { return nil, errors.New("no exec") }
func (s *stubStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.db.lastArgs = args
	if s.db.queryErr != nil {
		return nil, s.db.queryErr
	}
	return &stubRows{rows: s.db.rows}, nil
}

type stubRows struct {
	rows [][]driver.Value
	i    int
}

func (r *stubRows) Columns() []string { return []string{"date", "value"} }
func (r *stubRows) Close() error      { return nil }
func (r *stubRows) Next(dest []driver.Value) error {
	if r.i >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.i])
	r.i++
	return nil
}

func at(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestCHSeriesSourceFetch(t *testing.T) {
	stub := &stubDB{rows: [][]driver.Value{
		{at("2024-01-02"), 20.0},
		{at("2024-01-01"), 10.0},
		{at("2024-01-03"), nil},
	}}
	db := sql.OpenDB(stub)
	defer db.Close()

	src, err := NewCHSeriesSource(pkgch.NewFromDB(db), "liquidity.observations", nil, nil)
	require.NoError(t, err)

	ts, err := src.Fetch(context.Background(), "WALCL")
	require.NoError(t, err)
	assert.Equal(t, []driver.Value{"WALCL"}, stub.lastArgs)
	require.Equal(t, 2, ts.Len(), "null values are dropped")
	assert.Equal(t, civil.Date{Year: 2024, Month: 1, Day: 1}, ts.Points[0].Date)
	assert.Equal(t, 20.0, ts.Points[1].Value)
}

func TestCHSeriesSourceClassifiesErrors(t *testing.T) {
	stub := &stubDB{queryErr: errors.New("connection refused")}
	db := sql.OpenDB(stub)
	defer db.Close()
	src, err := NewCHSeriesSource(pkgch.NewFromDB(db), "observations", nil, nil)
	require.NoError(t, err)

	_, err = src.Fetch(context.Background(), "WALCL")
	assert.ErrorIs(t, err, models.ErrSourceUnavailable)

	stub.queryErr = nil
	_, err = src.Fetch(context.Background(), "WALCL")
	assert.ErrorIs(t, err, models.ErrMalformedData, "an empty series is malformed")
}

func TestCHSeriesSourceRejectsTableName(t *testing.T) {
	_, err := NewCHSeriesSource(pkgch.NewFromDB(nil), "obs; DROP TABLE x", nil, nil)
	assert.Error(t, err)
}

type recordingProducer struct {
	topics []string
	keys   []string
	values []interface{}
	closed bool
}

func (p *recordingProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	p.topics = append(p.topics, topic)
	p.keys = append(p.keys, string(key))
	p.values = append(p.values, value)
	return nil
}

func (p *recordingProducer) Close() error {
	p.closed = true
	return nil
}

func TestKafkaPublisherRoutesTopics(t *testing.T) {
	prod := &recordingProducer{}
	pub := NewKafkaPublisher(prod, "liquidity.index", "liquidity.refresh")
	ctx := context.Background()

	snap := models.IndexSnapshot{Start: civil.Date{Year: 2015, Month: 1, Day: 1}, LiquidityIndex: 42}
	require.NoError(t, pub.PublishSnapshot(ctx, snap))
	require.NoError(t, pub.PublishRefresh(ctx, models.RefreshEvent{Reason: "user"}))
	require.NoError(t, pub.Close())

	assert.Equal(t, []string{"liquidity.index", "liquidity.refresh"}, prod.topics)
	assert.Equal(t, []string{"2015-01-01", "refresh"}, prod.keys)
	assert.Equal(t, snap, prod.values[0])
	assert.True(t, prod.closed)

	var noop NoopPublisher
	assert.NoError(t, noop.PublishSnapshot(ctx, snap))
	assert.NoError(t, noop.Close())
}
