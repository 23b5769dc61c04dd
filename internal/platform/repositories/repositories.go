package repositories

import (
	"database/sql"
	"time"

	"wellspace/internal/platform/models"
)

type CompanyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

func (r *CompanyRepository) Create(company *models.Company) error {
	_, err := r.db.Exec(`
		INSERT INTO companies (id, name, domain, subscription_status, plan_type, minutes_included, minutes_used, subscription_period_end, webhook_secret, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, company.ID, company.Name, company.Domain, company.SubscriptionStatus, company.PlanType, company.MinutesIncluded, company.MinutesUsed, company.SubscriptionPeriodEnd, company.WebhookSecret, company.CreatedAt, company.UpdatedAt)
	return err
}

func (r *CompanyRepository) GetByID(id string) (*models.Company, error) {
	company := &models.Company{}
	err := r.db.QueryRow(`
		SELECT id, name, domain, subscription_status, plan_type, minutes_included, minutes_used, subscription_period_end, webhook_secret, created_at, updated_at, deleted_at
		FROM companies WHERE id = ?
	`, id).Scan(&company.ID, &company.Name, &company.Domain, &company.SubscriptionStatus, &company.PlanType, &company.MinutesIncluded, &company.MinutesUsed, &company.SubscriptionPeriodEnd, &company.WebhookSecret, &company.CreatedAt, &company.UpdatedAt, &company.DeletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return company, nil
}

func (r *CompanyRepository) GetByDomain(domain string) (*models.Company, error) {
	company := &models.Company{}
	err := r.db.QueryRow(`
		SELECT id, name, domain, subscription_status, plan_type, minutes_included, minutes_used, subscription_period_end, webhook_secret, created_at, updated_at, deleted_at
		FROM companies WHERE domain = ?
	`, domain).Scan(&company.ID, &company.Name, &company.Domain, &company.SubscriptionStatus, &company.PlanType, &company.MinutesIncluded, &company.MinutesUsed, &company.SubscriptionPeriodEnd, &company.WebhookSecret, &company.CreatedAt, &company.UpdatedAt, &company.DeletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return company, nil
}

// ActivateSubscription applies a paid plan to the company. Minutes used is
// left untouched; the ledger owns that column.
func (r *CompanyRepository) ActivateSubscription(id, planType string, minutesIncluded int, periodEnd int64) error {
	_, err := r.db.Exec(`
		UPDATE companies
		SET subscription_status = 'active', plan_type = ?, minutes_included = ?, subscription_period_end = ?, updated_at = ?
		WHERE id = ?
	`, planType, minutesIncluded, periodEnd, time.Now().Unix(), id)
	return err
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	_, err := r.db.Exec(`
		INSERT INTO users (id, company_id, email, password_hash, full_name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.CompanyID, user.Email, user.PasswordHash, user.FullName, user.Role, user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *UserRepository) CreateTx(tx *sql.Tx, user *models.User) error {
	_, err := tx.Exec(`
		INSERT INTO users (id, company_id, email, password_hash, full_name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.CompanyID, user.Email, user.PasswordHash, user.FullName, user.Role, user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(`
		SELECT id, company_id, email, password_hash, full_name, role, last_login_at, created_at, updated_at, deleted_at
		FROM users WHERE id = ?
	`, id).Scan(&user.ID, &user.CompanyID, &user.Email, &user.PasswordHash, &user.FullName, &user.Role, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt, &user.DeletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(`
		SELECT id, company_id, email, password_hash, full_name, role, last_login_at, created_at, updated_at, deleted_at
		FROM users WHERE email = ?
	`, email).Scan(&user.ID, &user.CompanyID, &user.Email, &user.PasswordHash, &user.FullName, &user.Role, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt, &user.DeletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) UpdateLastLogin(userID string, timestamp int64) error {
	_, err := r.db.Exec(`UPDATE users SET last_login_at = ? WHERE id = ?`, timestamp, userID)
	return err
}

type InviteRepository struct {
	db *sql.DB
}

func NewInviteRepository(db *sql.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

func (r *InviteRepository) Create(invite *models.Invite) error {
	_, err := r.db.Exec(`
		INSERT INTO invites (id, code, email, role, invited_by, status, max_uses, current_uses, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, invite.ID, invite.Code, invite.Email, invite.Role, invite.InvitedBy, invite.Status, invite.MaxUses, invite.CurrentUses, invite.ExpiresAt, invite.CreatedAt, invite.UpdatedAt)
	return err
}

func (r *InviteRepository) GetByCode(code string) (*models.Invite, error) {
	invite := &models.Invite{}
	err := r.db.QueryRow(`
		SELECT id, code, email, role, invited_by, status, max_uses, current_uses, expires_at, created_at, updated_at
		FROM invites WHERE code = ?
	`, code).Scan(&invite.ID, &invite.Code, &invite.Email, &invite.Role, &invite.InvitedBy, &invite.Status, &invite.MaxUses, &invite.CurrentUses, &invite.ExpiresAt, &invite.CreatedAt, &invite.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return invite, nil
}

func (r *InviteRepository) List() ([]*models.Invite, error) {
	rows, err := r.db.Query(`
		SELECT id, code, email, role, invited_by, status, max_uses, current_uses, expires_at, created_at, updated_at
		FROM invites ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []*models.Invite
	for rows.Next() {
		invite := &models.Invite{}
		if err := rows.Scan(&invite.ID, &invite.Code, &invite.Email, &invite.Role, &invite.InvitedBy, &invite.Status, &invite.MaxUses, &invite.CurrentUses, &invite.ExpiresAt, &invite.CreatedAt, &invite.UpdatedAt); err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}
	return invites, rows.Err()
}

// IncrementUsesTx is part of the signup transaction so a race on the last
// remaining use cannot admit two specialists.
func (r *InviteRepository) IncrementUsesTx(tx *sql.Tx, id string) error {
	res, err := tx.Exec(`
		UPDATE invites SET current_uses = current_uses + 1, updated_at = ?
		WHERE id = ? AND status = 'pending' AND current_uses < max_uses
	`, time.Now().Unix(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *InviteRepository) Revoke(id string) error {
	_, err := r.db.Exec(`UPDATE invites SET status = 'revoked', updated_at = ? WHERE id = ?`, time.Now().Unix(), id)
	return err
}
