package repositories

import (
	"database/sql"
	"time"

	"wellspace/internal/platform/models"
)

type SpecialistRepository struct {
	db *sql.DB
}

func NewSpecialistRepository(db *sql.DB) *SpecialistRepository {
	return &SpecialistRepository{db: db}
}

func (r *SpecialistRepository) Create(spec *models.Specialist) error {
	_, err := r.db.Exec(`
		INSERT INTO specialists (id, user_id, display_name, specialty, rate_tier, hourly_rate, bio, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, spec.ID, spec.UserID, spec.DisplayName, spec.Specialty, spec.RateTier, spec.HourlyRate, spec.Bio, spec.IsActive, spec.CreatedAt, spec.UpdatedAt)
	return err
}

func (r *SpecialistRepository) CreateTx(tx *sql.Tx, spec *models.Specialist) error {
	_, err := tx.Exec(`
		INSERT INTO specialists (id, user_id, display_name, specialty, rate_tier, hourly_rate, bio, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, spec.ID, spec.UserID, spec.DisplayName, spec.Specialty, spec.RateTier, spec.HourlyRate, spec.Bio, spec.IsActive, spec.CreatedAt, spec.UpdatedAt)
	return err
}

func (r *SpecialistRepository) GetByID(id string) (*models.Specialist, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, display_name, specialty, rate_tier, hourly_rate, bio, is_active, created_at, updated_at
		FROM specialists WHERE id = ?
	`, id)
	return scanSpecialist(row)
}

func (r *SpecialistRepository) GetByUserID(userID string) (*models.Specialist, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, display_name, specialty, rate_tier, hourly_rate, bio, is_active, created_at, updated_at
		FROM specialists WHERE user_id = ?
	`, userID)
	return scanSpecialist(row)
}

func (r *SpecialistRepository) List(activeOnly bool) ([]*models.Specialist, error) {
	query := `
		SELECT id, user_id, display_name, specialty, rate_tier, hourly_rate, bio, is_active, created_at, updated_at
		FROM specialists
	`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY display_name ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var specs []*models.Specialist
	for rows.Next() {
		spec, err := scanSpecialist(rows)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, rows.Err()
}

func (r *SpecialistRepository) Update(spec *models.Specialist) error {
	_, err := r.db.Exec(`
		UPDATE specialists
		SET display_name = ?, specialty = ?, rate_tier = ?, hourly_rate = ?, bio = ?, updated_at = ?
		WHERE id = ?
	`, spec.DisplayName, spec.Specialty, spec.RateTier, spec.HourlyRate, spec.Bio, time.Now().Unix(), spec.ID)
	return err
}

func (r *SpecialistRepository) SetActive(id string, active bool) error {
	_, err := r.db.Exec(`UPDATE specialists SET is_active = ?, updated_at = ? WHERE id = ?`, active, time.Now().Unix(), id)
	return err
}

func (r *SpecialistRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM specialists WHERE id = ?`, id)
	return err
}

func scanSpecialist(s interface {
	Scan(dest ...interface{}) error
}) (*models.Specialist, error) {
	var spec models.Specialist
	var hourlyRate sql.NullInt64

	err := s.Scan(
		&spec.ID,
		&spec.UserID,
		&spec.DisplayName,
		&spec.Specialty,
		&spec.RateTier,
		&hourlyRate,
		&spec.Bio,
		&spec.IsActive,
		&spec.CreatedAt,
		&spec.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if hourlyRate.Valid {
		val := int(hourlyRate.Int64)
		spec.HourlyRate = &val
	}

	return &spec, nil
}
