package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"wellspace/internal/platform/models"
)

type WebhookRepository struct {
	db *sql.DB
}

func NewWebhookRepository(db *sql.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

func (r *WebhookRepository) Create(webhook *models.Webhook) error {
	webhook.ID = "wh_" + uuid.New().String()
	webhook.CreatedAt = time.Now().Unix()
	webhook.UpdatedAt = time.Now().Unix()
	webhook.Status = "active"

	eventsJSON, err := json.Marshal(webhook.Events)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO webhooks (id, company_id, url, events, secret, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query, webhook.ID, webhook.CompanyID, webhook.URL, string(eventsJSON), webhook.Secret, webhook.Status, webhook.CreatedAt, webhook.UpdatedAt)
	return err
}

func (r *WebhookRepository) GetByID(id string) (*models.Webhook, error) {
	query := `SELECT id, company_id, url, events, secret, status, retry_count, last_triggered_at, last_error, created_at, updated_at FROM webhooks WHERE id = ?`
	row := r.db.QueryRow(query, id)

	var w models.Webhook
	var eventsStr string
	var lastTriggeredAt sql.NullInt64
	var lastError sql.NullString

	err := row.Scan(&w.ID, &w.CompanyID, &w.URL, &eventsStr, &w.Secret, &w.Status, &w.RetryCount, &lastTriggeredAt, &lastError, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if lastTriggeredAt.Valid {
		w.LastTriggeredAt = lastTriggeredAt.Int64
	}
	if lastError.Valid {
		w.LastError = lastError.String
	}

	json.Unmarshal([]byte(eventsStr), &w.Events)

	return &w, nil
}

func (r *WebhookRepository) ListByCompany(companyID string) ([]*models.Webhook, error) {
	query := `SELECT id, company_id, url, events, secret, status, retry_count, last_triggered_at, last_error, created_at, updated_at FROM webhooks WHERE company_id = ? ORDER BY created_at DESC`
	rows, err := r.db.Query(query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var webhooks []*models.Webhook
	for rows.Next() {
		var w models.Webhook
		var eventsStr string
		var lastTriggeredAt sql.NullInt64
		var lastError sql.NullString

		if err := rows.Scan(&w.ID, &w.CompanyID, &w.URL, &eventsStr, &w.Secret, &w.Status, &w.RetryCount, &lastTriggeredAt, &lastError, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		if lastTriggeredAt.Valid {
			w.LastTriggeredAt = lastTriggeredAt.Int64
		}
		if lastError.Valid {
			w.LastError = lastError.String
		}
		json.Unmarshal([]byte(eventsStr), &w.Events)
		webhooks = append(webhooks, &w)
	}
	return webhooks, rows.Err()
}

func (r *WebhookRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM webhooks WHERE id = ?`, id)
	return err
}

func (r *WebhookRepository) UpdateLastTriggered(id string, timestamp int64) error {
	_, err := r.db.Exec(`UPDATE webhooks SET last_triggered_at = ? WHERE id = ?`, timestamp, id)
	return err
}

func (r *WebhookRepository) IncrementRetryCount(id string) error {
	_, err := r.db.Exec(`UPDATE webhooks SET retry_count = retry_count + 1 WHERE id = ?`, id)
	return err
}

func (r *WebhookRepository) ResetRetryCount(id string) error {
	_, err := r.db.Exec(`UPDATE webhooks SET retry_count = 0 WHERE id = ?`, id)
	return err
}

// PauseFailing marks endpoints with too many consecutive delivery
// failures so the dispatcher stops selecting them.
func (r *WebhookRepository) PauseFailing(maxRetries int) (int64, error) {
	res, err := r.db.Exec(`
		UPDATE webhooks SET status = 'failed', updated_at = ?
		WHERE status = 'active' AND retry_count >= ?
	`, time.Now().Unix(), maxRetries)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *WebhookRepository) UpdateLastError(id, lastError string) error {
	_, err := r.db.Exec(`UPDATE webhooks SET last_error = ? WHERE id = ?`, lastError, id)
	return err
}

// GetByEvent returns active webhooks subscribed to the event, scoped to the
// company plus any platform-wide registrations. Events are stored as a JSON
// array, so subscription matching happens in the app.
func (r *WebhookRepository) GetByEvent(eventType, companyID string) ([]*models.Webhook, error) {
	query := `SELECT id, company_id, url, events, secret, status FROM webhooks WHERE status = 'active' AND (company_id = ? OR company_id = '')`
	rows, err := r.db.Query(query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matched []*models.Webhook
	for rows.Next() {
		var w models.Webhook
		var eventsStr string
		if err := rows.Scan(&w.ID, &w.CompanyID, &w.URL, &eventsStr, &w.Secret, &w.Status); err != nil {
			continue
		}

		var events []string
		if err := json.Unmarshal([]byte(eventsStr), &events); err == nil {
			for _, e := range events {
				if e == eventType {
					w.Events = events
					matched = append(matched, &w)
					break
				}
			}
		}
	}
	return matched, nil
}
