package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	apiContext "wellspace/internal/api/context"
	"wellspace/internal/platform/auth"
	"wellspace/internal/platform/models"
	"wellspace/internal/platform/repositories"
)

func companyModel(status string) *models.Company {
	return &models.Company{ID: "cmp_123", Name: "Acme", Domain: "acme.com", SubscriptionStatus: status}
}

func companyRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "domain", "subscription_status", "plan_type",
		"minutes_included", "minutes_used", "subscription_period_end",
		"webhook_secret", "created_at", "updated_at", "deleted_at",
	}).AddRow("cmp_123", "Acme", "acme.com", "active", "growth", 3000, 120, nil, "secret", 1234567890, 1234567890, nil)
}

func requestWithClaims(claims *auth.Claims) *http.Request {
	req, _ := http.NewRequest("GET", "/", nil)
	ctx := context.WithValue(req.Context(), apiContext.Claims, claims)
	return req.WithContext(ctx)
}

func TestCompanyMiddleware(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	companyRepo := repositories.NewCompanyRepository(db)
	middleware := NewCompanyMiddleware(companyRepo)

	t.Run("Valid Company", func(t *testing.T) {
		req := requestWithClaims(&auth.Claims{UserID: "usr_1", CompanyID: "cmp_123", Role: "employee"})

		mock.ExpectQuery("SELECT (.+) FROM companies WHERE id = ?").
			WithArgs("cmp_123").
			WillReturnRows(companyRow())

		rr := httptest.NewRecorder()
		handler := middleware.Handle(func(w http.ResponseWriter, r *http.Request) {
			cc := r.Context().Value(apiContext.Company).(*CompanyContext)
			if cc.Company.ID != "cmp_123" {
				t.Errorf("Expected company cmp_123, got %s", cc.Company.ID)
			}
			w.WriteHeader(http.StatusOK)
		})
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
		}
	})

	t.Run("Specialist Without Company", func(t *testing.T) {
		req := requestWithClaims(&auth.Claims{UserID: "usr_2", Role: "specialist"})

		rr := httptest.NewRecorder()
		handler := middleware.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler should not be reached")
		})
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %v", rr.Code)
		}
	})

	t.Run("Missing Claims", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/", nil)

		rr := httptest.NewRecorder()
		handler := middleware.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler should not be reached")
		})
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %v", rr.Code)
		}
	})

	t.Run("Unknown Company", func(t *testing.T) {
		req := requestWithClaims(&auth.Claims{UserID: "usr_3", CompanyID: "cmp_missing", Role: "employee"})

		mock.ExpectQuery("SELECT (.+) FROM companies WHERE id = ?").
			WithArgs("cmp_missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		rr := httptest.NewRecorder()
		handler := middleware.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler should not be reached")
		})
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %v", rr.Code)
		}
	})
}

func TestRequireActiveSubscription(t *testing.T) {
	t.Run("Active", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/", nil)
		cc := &CompanyContext{Company: companyModel("active")}
		req = req.WithContext(context.WithValue(req.Context(), apiContext.Company, cc))

		rr := httptest.NewRecorder()
		RequireActiveSubscription(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}).ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("Expected 200, got %v", rr.Code)
		}
	})

	t.Run("Unpaid", func(t *testing.T) {
		req, _ := http.NewRequest("POST", "/", nil)
		cc := &CompanyContext{Company: companyModel("unpaid")}
		req = req.WithContext(context.WithValue(req.Context(), apiContext.Company, cc))

		rr := httptest.NewRecorder()
		RequireActiveSubscription(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler should not be reached")
		}).ServeHTTP(rr, req)

		if rr.Code != http.StatusPaymentRequired {
			t.Errorf("Expected 402, got %v", rr.Code)
		}
	})
}
