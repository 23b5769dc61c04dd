package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"wellspace/internal/platform/models"
	"wellspace/internal/platform/repositories"
)

// Dispatcher fans booking and message events out to registered webhooks
// and the realtime channel. Delivery is fire-and-forget: failures are
// recorded on the webhook row and logged, never surfaced to the caller of
// the mutation that produced the event.
type Dispatcher struct {
	repo     *repositories.WebhookRepository
	realtime *Realtime
}

func NewDispatcher(repo *repositories.WebhookRepository, realtime *Realtime) *Dispatcher {
	return &Dispatcher{repo: repo, realtime: realtime}
}

func (d *Dispatcher) Dispatch(eventType string, companyID string, data interface{}) {
	event := &models.WebhookEvent{
		ID:        "evt_" + uuid.NewString(),
		Event:     eventType,
		Timestamp: time.Now().Unix(),
		CompanyID: companyID,
		Data:      data,
	}

	if d.realtime != nil {
		go d.realtime.Publish(event)
	}

	webhooks, err := d.repo.GetByEvent(eventType, companyID)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to load webhooks for event")
		return
	}

	for _, webhook := range webhooks {
		go d.deliver(webhook, event)
	}
}

func (d *Dispatcher) deliver(webhook *models.Webhook, event *models.WebhookEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("webhook", webhook.ID).Msg("failed to marshal webhook event")
		return
	}

	signature := Sign(webhook.Secret, payload)

	req, err := http.NewRequest("POST", webhook.URL, bytes.NewBuffer(payload))
	if err != nil {
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Wellspace-Signature", signature)
	req.Header.Set("X-Wellspace-Event", event.Event)
	req.Header.Set("X-Wellspace-Delivery", event.ID)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)

	if err != nil || resp.StatusCode >= 400 {
		var errStr string
		if err != nil {
			errStr = err.Error()
		} else {
			errStr = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}

		log.Warn().Str("webhook", webhook.ID).Str("event", event.Event).Str("error", errStr).Msg("webhook delivery failed")
		d.repo.UpdateLastError(webhook.ID, errStr)
		d.repo.IncrementRetryCount(webhook.ID)
	} else {
		d.repo.UpdateLastTriggered(webhook.ID, time.Now().Unix())
		d.repo.ResetRetryCount(webhook.ID)
	}

	if resp != nil {
		resp.Body.Close()
	}
}
