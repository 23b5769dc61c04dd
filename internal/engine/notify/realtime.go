package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"wellspace/internal/platform/config"
	"wellspace/internal/platform/models"
)

// Realtime publishes event envelopes to a per-company Redis channel so
// connected clients see booking and message updates live. Consumers must
// de-duplicate by event id; delivery order is not guaranteed relative to
// the sender's own optimistic update.
type Realtime struct {
	client *redis.Client
}

// NewRealtime returns nil when no Redis address is configured; the
// dispatcher treats a nil Realtime as "feature off".
func NewRealtime(cfg config.RealtimeConfig) *Realtime {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	return &Realtime{client: client}
}

func (r *Realtime) Publish(event *models.WebhookEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event", event.Event).Msg("failed to marshal realtime event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	channel := "company:" + event.CompanyID + ":events"
	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("realtime publish failed")
	}
}

func (r *Realtime) Close() error {
	return r.client.Close()
}
