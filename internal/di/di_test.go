package di

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"FinLiquidity/internal/repository"
	"FinLiquidity/pkg/config"
	"FinLiquidity/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeAppWithDefaults(t *testing.T) {
	cfg := config.Default()
	app, cleanup, err := InitializeApp(cfg, logger.Nop())
	require.NoError(t, err)
	defer cleanup()
	require.NotNil(t, app)

	rec := httptest.NewRecorder()
	app.HTTPServer().Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestProvidePublisherWithoutKafka(t *testing.T) {
	cfg := config.Default()
	p, cleanup, err := ProvideKafkaProducer(cfg, ProvideRegistry(), logger.Nop())
	require.NoError(t, err)
	assert.Nil(t, p)
	require.NotNil(t, cleanup)
	assert.NotPanics(t, cleanup)
	assert.IsType(t, repository.NoopPublisher{}, ProvidePublisher(cfg, p))

	c, err := ProvideKafkaConsumer(cfg, ProvideRegistry(), logger.Nop())
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestProvideCacheStoreMemory(t *testing.T) {
	cfg := config.Default()
	store, cleanup, err := ProvideCacheStore(cfg, logger.Nop())
	require.NoError(t, err)
	defer cleanup()
	assert.NotNil(t, store)
}

func TestProvideKafkaProducerCleanupCloses(t *testing.T) {
	cfg := config.Default()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Brokers = []string{"127.0.0.1:1"}
	p, cleanup, err := ProvideKafkaProducer(cfg, ProvideRegistry(), logger.Nop())
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.NotPanics(t, cleanup)
}

func TestInitializeAppFailsAfterKafkaProducer(t *testing.T) {
	cfg := config.Default()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Brokers = []string{"127.0.0.1:1"}
	cfg.Engine.DefaultStart = "not-a-date"
	app, cleanup, err := InitializeApp(cfg, logger.Nop())
	require.Error(t, err)
	assert.Nil(t, app)
	assert.Nil(t, cleanup)
}
