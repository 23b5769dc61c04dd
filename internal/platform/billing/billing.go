package billing

import (
	"errors"
	"strings"
	"time"

	"wellspace/internal/platform/config"
	"wellspace/internal/platform/models"
)

var ErrUnknownPlan = errors.New("unknown plan type")

// Plan is a subscription tier. MinutesIncluded is the monthly wellness
// minutes allotment; the ledger consumes it on booking completion.
type Plan struct {
	Type            string `json:"type"`
	MinutesIncluded int    `json:"minutes_included"`
	PricePerMonth   int    `json:"price_per_month"`
}

var plans = map[string]Plan{
	"starter":    {Type: "starter", MinutesIncluded: 1000, PricePerMonth: 499},
	"growth":     {Type: "growth", MinutesIncluded: 3000, PricePerMonth: 1299},
	"enterprise": {Type: "enterprise", MinutesIncluded: 10000, PricePerMonth: 3999},
}

func PlanByType(planType string) (Plan, error) {
	plan, ok := plans[planType]
	if !ok {
		return Plan{}, ErrUnknownPlan
	}
	return plan, nil
}

func Plans() []Plan {
	return []Plan{plans["starter"], plans["growth"], plans["enterprise"]}
}

// CheckoutSession is what the payment authority hands back: either a
// hosted checkout URL the client redirects to, or immediate activation
// for designated test companies.
type CheckoutSession struct {
	URL       string `json:"url,omitempty"`
	Activated bool   `json:"activated"`
	Plan      Plan   `json:"plan"`
	PeriodEnd int64  `json:"period_end,omitempty"`
}

// Provider is the external payment/subscription authority. Checkout-flow
// internals live behind it; the core only consumes the resulting
// subscription status and minutes allotment.
type Provider interface {
	StartCheckout(company *models.Company, plan Plan) (*CheckoutSession, error)
}

type HostedProvider struct {
	baseURL     string
	testDomains []string
}

func NewHostedProvider(cfg config.BillingConfig) *HostedProvider {
	return &HostedProvider{
		baseURL:     strings.TrimSuffix(cfg.CheckoutBaseURL, "/"),
		testDomains: cfg.TestDomains,
	}
}

func (p *HostedProvider) StartCheckout(company *models.Company, plan Plan) (*CheckoutSession, error) {
	session := &CheckoutSession{Plan: plan}

	// Test companies skip the processor entirely.
	for _, domain := range p.testDomains {
		if strings.EqualFold(domain, company.Domain) {
			session.Activated = true
			session.PeriodEnd = time.Now().AddDate(0, 1, 0).Unix()
			return session, nil
		}
	}

	session.URL = p.baseURL + "/checkout?company=" + company.ID + "&plan=" + plan.Type
	return session, nil
}
