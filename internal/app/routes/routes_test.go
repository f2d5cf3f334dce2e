package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/controllers"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/middleware"
	"github.com/yigit/schooldesk/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusChangesRequireAdmin(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "routes-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "schooldesk-test",
	})
	tokenFor := func(role models.RoleType) string {
		token, _, err := jwtService.GenerateAccessToken(&models.StaffUser{ID: uuid.New(), Email: "x@school.example", Role: role})
		if err != nil {
			t.Fatalf("GenerateAccessToken() error = %v", err)
		}
		return token
	}

	// Handlers are never reached with a usable id, so no services are needed.
	lgr := zerolog.Nop()
	router := gin.New()
	SetupRouter(router,
		controllers.NewAuthController(nil, lgr),
		controllers.NewEnquiryController(nil, lgr),
		controllers.NewAdmissionController(nil, 1<<20, lgr),
		controllers.NewDocumentController(nil, lgr),
		middleware.NewAuthMiddleware(jwtService),
	)

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
	}{
		{"enquiry status without token", "/api/v1/enquiries/not-a-uuid/status", "", http.StatusUnauthorized},
		{"enquiry status as staff", "/api/v1/enquiries/not-a-uuid/status", tokenFor(models.RoleStaff), http.StatusForbidden},
		{"enquiry status as admin", "/api/v1/enquiries/not-a-uuid/status", tokenFor(models.RoleAdmin), http.StatusBadRequest},
		{"admission review as staff", "/api/v1/admissions/not-a-uuid/review", tokenFor(models.RoleStaff), http.StatusForbidden},
		{"admission review as admin", "/api/v1/admissions/not-a-uuid/review", tokenFor(models.RoleAdmin), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, tt.path, strings.NewReader(`{"status":"approved"}`))
			req.Header.Set("Content-Type", "application/json")
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
