package models

type Company struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Domain                string `json:"domain"`
	SubscriptionStatus    string `json:"subscription_status"` // unpaid, active
	PlanType              string `json:"plan_type"`
	MinutesIncluded       int    `json:"minutes_included"`
	MinutesUsed           int    `json:"minutes_used"`
	SubscriptionPeriodEnd *int64 `json:"subscription_period_end,omitempty"`
	WebhookSecret         string `json:"-"`
	CreatedAt             int64  `json:"created_at"`
	UpdatedAt             int64  `json:"updated_at"`
	DeletedAt             *int64 `json:"deleted_at,omitempty"`
}

type User struct {
	ID           string `json:"id"`
	CompanyID    string `json:"company_id,omitempty"` // empty for specialists
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"` // employee, admin, specialist
	LastLoginAt  *int64 `json:"last_login_at,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
	DeletedAt    *int64 `json:"deleted_at,omitempty"`

	Company *Company `json:"company,omitempty"`
}

type Specialist struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Specialty   string `json:"specialty"`
	RateTier    string `json:"rate_tier"`              // standard, advanced, expert, master; empty resolves to standard
	HourlyRate  *int   `json:"hourly_rate,omitempty"` // override; nil means tier default
	Bio         string `json:"bio,omitempty"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

type Invite struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role"` // specialist
	InvitedBy   string `json:"invited_by"`
	Status      string `json:"status"` // pending, revoked
	MaxUses     int    `json:"max_uses"`
	CurrentUses int    `json:"current_uses"`
	ExpiresAt   int64  `json:"expires_at"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}
