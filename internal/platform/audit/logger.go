package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	apiContext "wellspace/internal/api/context"
	"wellspace/internal/platform/auth"
)

type Entry struct {
	ID           string                 `json:"id"`
	CompanyID    string                 `json:"company_id"`
	UserID       string                 `json:"user_id"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	Metadata     map[string]interface{} `json:"metadata"`
	CreatedAt    int64                  `json:"created_at"`
}

// Logger records activity entries for the admin activity log. Writes are
// asynchronous and never fail the calling operation.
type Logger struct {
	db *sql.DB
}

func NewLogger(db *sql.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(ctx context.Context, action, resourceType, resourceID string, metadata map[string]interface{}) {
	var companyID, userID string
	if claims, ok := ctx.Value(apiContext.Claims).(*auth.Claims); ok {
		companyID = claims.CompanyID
		userID = claims.UserID
	}

	metaJSON, _ := json.Marshal(metadata)

	entry := &Entry{
		ID:           "audit_" + uuid.New().String(),
		CompanyID:    companyID,
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     metadata,
		CreatedAt:    time.Now().Unix(),
	}

	go func() {
		_, err := l.db.Exec(`
			INSERT INTO audit_logs (id, company_id, user_id, action, resource_type, resource_id, metadata, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, entry.ID, entry.CompanyID, entry.UserID, entry.Action, entry.ResourceType, entry.ResourceID, string(metaJSON), entry.CreatedAt)
		if err != nil {
			zlog.Warn().Err(err).Str("action", action).Msg("audit write failed")
		}
	}()
}

func (l *Logger) List(companyID string, limit int) ([]*Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := l.db.Query(`
		SELECT id, company_id, user_id, action, resource_type, resource_id, metadata, created_at
		FROM audit_logs
		WHERE company_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry := &Entry{}
		var metaStr string
		if err := rows.Scan(&entry.ID, &entry.CompanyID, &entry.UserID, &entry.Action, &entry.ResourceType, &entry.ResourceID, &metaStr, &entry.CreatedAt); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(metaStr), &entry.Metadata)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
