package workers

import (
	"time"

	"github.com/rs/zerolog/log"

	"wellspace/internal/engine/booking"
	"wellspace/internal/platform/repositories"
)

// ExpirePendingBookings cancels pending bookings the specialist never
// responded to. The cutoff walks through the same conditional-update path
// as a user cancellation, so a booking accepted meanwhile is left alone.
func ExpirePendingBookings(repo *booking.Repository, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl).Unix()
	n, err := repo.ExpirePending(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Worker: failed to expire pending bookings")
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("Worker: expired stale pending bookings")
	}
	return n, nil
}

// PauseFailingWebhooks takes endpoints out of rotation once delivery has
// failed too many times in a row. A successful delivery resets the count.
func PauseFailingWebhooks(repo *repositories.WebhookRepository, maxRetries int) (int64, error) {
	n, err := repo.PauseFailing(maxRetries)
	if err != nil {
		log.Error().Err(err).Msg("Worker: failed to pause failing webhooks")
		return 0, err
	}
	if n > 0 {
		log.Warn().Int64("count", n).Msg("Worker: paused failing webhooks")
	}
	return n, nil
}
