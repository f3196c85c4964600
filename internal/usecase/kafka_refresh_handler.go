package usecase

import (
	"context"
	"encoding/json"

	"FinLiquidity/internal/domain/models"
	domrepo "FinLiquidity/internal/domain/repository"
	pkgkafka "FinLiquidity/pkg/kafka"
	"FinLiquidity/pkg/logger"
)

// KafkaRefreshHandler drops the local cache when any instance broadcasts a Force Refresh.
type KafkaRefreshHandler struct {
	topic       string
	invalidator domrepo.Invalidator
	metrics     domrepo.Metrics
	log         *logger.Logger
}

var _ pkgkafka.MessageHandler = (*KafkaRefreshHandler)(nil)

func NewKafkaRefreshHandler(topic string, invalidator domrepo.Invalidator, metrics domrepo.Metrics, log *logger.Logger) *KafkaRefreshHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &KafkaRefreshHandler{topic: topic, invalidator: invalidator, metrics: metrics, log: log}
}

func (h *KafkaRefreshHandler) Topic() string { return h.topic }

// incoming message schema: {reason, at}
func (h *KafkaRefreshHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.RefreshEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		// a garbled event still means someone asked for a refresh
		h.log.Warn("refresh event undecodable", logger.Error(err))
		if h.metrics != nil {
			h.metrics.RecordError("consumer_unmarshal")
		}
	}
	if err := h.invalidator.Clear(ctx); err != nil {
		if h.metrics != nil {
			h.metrics.RecordError("consumer_clear")
		}
		return err
	}
	h.log.Info("cache cleared by broadcast", logger.String("reason", ev.Reason))
	return nil
}
