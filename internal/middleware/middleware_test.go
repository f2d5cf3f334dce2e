package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/auth"
	"github.com/yigit/schooldesk/internal/pkg/metrics"
	"github.com/yigit/schooldesk/internal/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
		wantMsg    string
	}{
		{"validation", apperrors.NewValidationError("missing required fields: class"), 400, dto.ErrorCodeValidationFailed, "missing required fields: class"},
		{"not approved", apperrors.ErrEnquiryNotApproved, 400, dto.ErrorCodePreconditionFailed, "enquiry has not been approved"},
		{"not found", apperrors.ErrAdmissionNotFound, 404, dto.ErrorCodeResourceNotFound, "admission not found"},
		{"conflict", apperrors.ErrAdmissionExists, 409, dto.ErrorCodeResourceAlreadyExists, "an admission has already been submitted for this enquiry"},
		{"credentials", apperrors.ErrInvalidCredentials, 401, dto.ErrorCodeInvalidCredentials, "invalid credentials"},
		{"upstream", apperrors.NewUpstreamError("failed to upload photo", errors.New("s3: secret bucket name")), 500, dto.ErrorCodeExternalServiceError, "Internal server error"},
		{"unknown", errors.New("pq: relation does not exist"), 500, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body dto.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Success {
				t.Error("success = true, want false")
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.wantCode)
			}
			if body.Error.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", body.Error.Message, tt.wantMsg)
			}
		})
	}
}

func TestHandleAPIErrorWithStatus(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/admissions", nil)

	HandleAPIErrorWithStatus(c, http.StatusBadRequest, apperrors.ErrEnquiryNotFound)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "middleware-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "schooldesk-test",
	})
}

func TestJWTAuth(t *testing.T) {
	jwtService := newJWTService()
	token, _, err := jwtService.GenerateAccessToken(&models.StaffUser{
		ID:    uuid.New(),
		Email: "office@school.example",
		Role:  models.RoleStaff,
	})
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	m := NewAuthMiddleware(jwtService)
	router := gin.New()
	router.GET("/staff", m.JWTAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextEmail))
	})
	router.GET("/admin", m.JWTAuth(), m.RoleRequired(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
	}{
		{"bearer token", "/staff", "Bearer " + token, http.StatusOK},
		{"raw token", "/staff", token, http.StatusOK},
		{"missing header", "/staff", "", http.StatusUnauthorized},
		{"garbage", "/staff", "Bearer not-a-token", http.StatusUnauthorized},
		{"wrong scheme", "/staff", "Basic abc", http.StatusUnauthorized},
		{"staff on admin route", "/admin", "Bearer " + token, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && tt.path == "/staff" && w.Body.String() != "office@school.example" {
				t.Errorf("email in context = %q", w.Body.String())
			}
		})
	}
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New()
	router := gin.New()
	router.Use(RequestLogger(zerolog.Nop()), Metrics(m))
	router.GET("/enquiries/number/:enquiryNumber", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/enquiries/number/ENQ-100"+string(rune('0'+i)), nil))
	}

	got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/enquiries/number/:enquiryNumber", http.MethodGet, "404"))
	if got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	tests := []struct {
		name       string
		origins    []string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{name: "any origin", origins: []string{"*"}, origin: "https://forms.example", wantStatus: http.StatusNoContent, wantAllow: "*"},
		{name: "listed origin", origins: []string{"https://forms.example"}, origin: "https://forms.example", wantStatus: http.StatusNoContent, wantAllow: "https://forms.example"},
		{name: "unlisted origin", origins: []string{"https://forms.example"}, origin: "https://other.example", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CORS(tt.origins))
			router.POST("/admissions", func(c *gin.Context) { c.Status(http.StatusCreated) })

			req := httptest.NewRequest(http.MethodOptions, "/admissions", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantAllow)
			}
		})
	}
}

func TestBindJSONNamesSingleMissingField(t *testing.T) {
	validation.RegisterGinRules()

	type statusRequest struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	router := gin.New()
	router.PATCH("/status", func(c *gin.Context) {
		var req statusRequest
		if !BindJSON(c, &req) {
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/status", strings.NewReader(`{"note":"x"}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var body dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Field != "status" {
		t.Errorf("field = %q, want status", body.Error.Field)
	}
	if body.Error.Message != "missing required fields: status" {
		t.Errorf("message = %q", body.Error.Message)
	}
}
