// Package integration provides integration tests for the storefront API.
// These tests verify the full stack works correctly when all components are wired together.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/jamesprial/storefront-api/internal/auth"
	"github.com/jamesprial/storefront-api/internal/config"
	internalerrors "github.com/jamesprial/storefront-api/internal/errors"
	"github.com/jamesprial/storefront-api/internal/metrics"
	"github.com/jamesprial/storefront-api/internal/schema"
	"github.com/jamesprial/storefront-api/internal/storage"
	"github.com/jamesprial/storefront-api/internal/transport"
)

// testSecret is the HMAC secret shared by the verifier and test tokens.
const testSecret = "integration-secret"

// createCategoryBody is the request body for POST /api/admin/categories.
type createCategoryBody struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// categoryParams are the path parameters for /api/categories/{id}.
type categoryParams struct {
	ID int `json:"id" validate:"required,gt=0"`
}

// orderLine is one entry of a placed order.
type orderLine struct {
	MenuItemID int `json:"menuItemId" validate:"required,gt=0"`
	Quantity   int `json:"quantity" validate:"gte=1,lte=50"`
}

// createOrderBody is the request body for POST /api/orders.
type createOrderBody struct {
	Items []orderLine `json:"items" validate:"required,min=1,dive"`
}

// listQuery is the query string for GET /api/orders.
type listQuery struct {
	Page int `json:"page" validate:"omitempty,gte=1"`
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details []struct {
		Path    string `json:"path"`
		Message string `json:"message"`
	} `json:"details"`
}

// testFixture contains all dependencies for integration tests.
type testFixture struct {
	server   *httptest.Server
	services *transport.Services
	issuer   auth.TokenIssuer
	logHook  *test.Hook
	baseURL  string
}

// fixtureOptions customize setupTestFixture.
type fixtureOptions struct {
	maxBodyBytes int64
	database     transport.Pinger
	rateLimitRPS float64
}

// testConfig returns a valid server configuration bound to a random local port.
func testConfig() *config.Config {
	return &config.Config{
		Host:            "127.0.0.1",
		Port:            0,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxBodyBytes:    1 << 20,
		AllowOrigin:     "http://localhost:5173",
		JWTSecret:       testSecret,
		Environment:     config.EnvTest,
		LogLevel:        "debug",
		MetricsEnabled:  true,
		RateLimitBurst:  20,
	}
}

func setupTestFixture(t *testing.T, opts fixtureOptions) *testFixture {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	serverCfg := testConfig()
	if opts.maxBodyBytes > 0 {
		serverCfg.MaxBodyBytes = opts.maxBodyBytes
	}
	if opts.rateLimitRPS > 0 {
		serverCfg.RateLimitRPS = opts.rateLimitRPS
		serverCfg.RateLimitBurst = 2
	}

	services, err := transport.NewTransportServices(&transport.Config{
		ServerConfig: serverCfg,
		Verifier:     auth.NewTokenVerifier(testSecret, 0),
		Logger:       logger,
		Metrics:      metrics.New(),
		Database:     opts.database,
	})
	if err != nil {
		t.Fatalf("failed to create transport services: %v", err)
	}

	registerRoutes(services)

	server := httptest.NewServer(services.Router)

	return &testFixture{
		server:   server,
		services: services,
		issuer:   auth.NewTokenIssuer(testSecret),
		logHook:  hook,
		baseURL:  server.URL,
	}
}

// registerRoutes installs a small slice of the storefront's routes.
func registerRoutes(s *transport.Services) {
	r := s.Router

	r.Handle(http.MethodPost, "/api/admin/categories",
		func(w http.ResponseWriter, _ *http.Request, rc *transport.RequestContext) error {
			body, _ := transport.Validated[createCategoryBody](rc, transport.SourceBody)
			identity, _ := rc.Identity()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			return json.NewEncoder(w).Encode(map[string]any{
				"name":      body.Name,
				"createdBy": identity.Username,
			})
		},
		transport.Validate(transport.SourceBody, schema.For[createCategoryBody]()),
		s.RequireAuth(),
	)

	r.Handle(http.MethodGet, "/api/categories/{id}",
		func(w http.ResponseWriter, _ *http.Request, rc *transport.RequestContext) error {
			params, _ := transport.Validated[categoryParams](rc, transport.SourceParams)
			if params.ID == 404 {
				return internalerrors.NotFound("Category not found")
			}
			w.Header().Set("Content-Type", "application/json")
			return json.NewEncoder(w).Encode(map[string]int{"id": params.ID})
		},
		transport.Validate(transport.SourceParams, schema.For[categoryParams]()),
	)

	r.Handle(http.MethodGet, "/api/orders",
		func(w http.ResponseWriter, _ *http.Request, rc *transport.RequestContext) error {
			query, _ := transport.Validated[listQuery](rc, transport.SourceQuery)
			w.Header().Set("Content-Type", "application/json")
			return json.NewEncoder(w).Encode(map[string]int{"page": query.Page})
		},
		s.RequireAuth(),
		transport.Validate(transport.SourceQuery, schema.For[listQuery]()),
	)

	r.Handle(http.MethodPost, "/api/orders",
		func(w http.ResponseWriter, _ *http.Request, rc *transport.RequestContext) error {
			order, _ := transport.Validated[createOrderBody](rc, transport.SourceBody)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			return json.NewEncoder(w).Encode(map[string]int{"lines": len(order.Items)})
		},
		s.RequireAuth(),
		transport.Validate(transport.SourceBody, schema.For[createOrderBody]()),
	)

	r.Handle(http.MethodGet, "/api/fail",
		func(http.ResponseWriter, *http.Request, *transport.RequestContext) error {
			return errors.New("pq: relation \"secret_table\" does not exist")
		},
	)

	r.Handle(http.MethodGet, "/api/panic",
		func(http.ResponseWriter, *http.Request, *transport.RequestContext) error {
			var m map[string]int
			m["boom"]++
			return nil
		},
	)

	r.Handle(http.MethodGet, "/api/vars/{name}",
		func(w http.ResponseWriter, req *http.Request, _ *transport.RequestContext) error {
			_, err := io.WriteString(w, mux.Vars(req)["name"])
			return err
		},
	)
}

// teardown cleans up the test fixture.
func (f *testFixture) teardown() {
	if f.server != nil {
		f.server.Close()
	}
}

// createToken issues a valid token for a test identity.
func (f *testFixture) createToken(t *testing.T) string {
	t.Helper()

	token, err := f.issuer.Issue(auth.Identity{ID: 1, Username: "admin"}, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

// signClaims signs arbitrary claims with method and secret.
func signClaims(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

// do sends a request and returns the response with its body read.
func (f *testFixture) do(t *testing.T, method, path, body string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.baseURL+path, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to send request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp, raw
}

func decodeError(t *testing.T, raw []byte) errorBody {
	t.Helper()

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("failed to unmarshal error response %q: %v", raw, err)
	}
	return body
}

// ============================================================================
// Built-in Endpoints
// ============================================================================

func TestIntegration_HealthEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		wantStatusCode int
		wantStatus     string
		wantCode       string
	}{
		{
			name:           "GET returns 200 with ok status",
			method:         http.MethodGet,
			wantStatusCode: http.StatusOK,
			wantStatus:     "ok",
		},
		{
			name:           "POST returns 405 Method Not Allowed",
			method:         http.MethodPost,
			wantStatusCode: http.StatusMethodNotAllowed,
			wantCode:       "METHOD_NOT_ALLOWED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := setupTestFixture(t, fixtureOptions{})
			defer fixture.teardown()

			resp, raw := fixture.do(t, tt.method, "/health", "", nil)

			if resp.StatusCode != tt.wantStatusCode {
				t.Errorf("got status %d, want %d", resp.StatusCode, tt.wantStatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
				t.Errorf("Content-Type should be application/json, got: %s", ct)
			}

			if tt.wantStatus != "" {
				var healthResp struct {
					Status string `json:"status"`
				}
				if err := json.Unmarshal(raw, &healthResp); err != nil {
					t.Fatalf("failed to unmarshal health response: %v", err)
				}
				if healthResp.Status != tt.wantStatus {
					t.Errorf("got status %q, want %q", healthResp.Status, tt.wantStatus)
				}
			}
			if tt.wantCode != "" {
				if got := decodeError(t, raw).Error; got != tt.wantCode {
					t.Errorf("got error %q, want %q", got, tt.wantCode)
				}
			}
		})
	}
}

func TestIntegration_NotFound(t *testing.T) {
	fixture := setupTestFixture(t, fixtureOptions{})
	defer fixture.teardown()

	resp, raw := fixture.do(t, http.MethodGet, "/api/unknown", "", nil)

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("got status %d, want 404", resp.StatusCode)
	}
	body := decodeError(t, raw)
	if body.Error != "NOT_FOUND" || body.Message != "Route not found" {
		t.Errorf("got %+v", body)
	}
}

func TestIntegration_ResponseHeaders(t *testing.T) {
	fixture := setupTestFixture(t, fixtureOptions{})
	defer fixture.teardown()

	resp, _ := fixture.do(t, http.MethodGet, "/health", "", map[string]string{"X-Request-ID": "trace-abc"})

	if got := resp.Header.Get("X-Request-ID"); got != "trace-abc" {
		t.Errorf("X-Request-ID = %q, want echoed value", got)
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestIntegration_Preflight(t *testing.T) {
	fixture := setupTestFixture(t, fixtureOptions{})
	defer fixture.teardown()

	resp, _ := fixture.do(t, http.MethodOptions, "/api/admin/categories", "", map[string]string{
		"Origin":                         "http://localhost:5173",
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "Authorization, Content-Type",
	})

	if resp.StatusCode != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Headers"); got != "Authorization, Content-Type" {
		t.Errorf("Access-Control-Allow-Headers = %q", got)
	}
}

func TestIntegration_Metrics(t *testing.T) {
	fixture := setupTestFixture(t, fixtureOptions{})
	defer fixture.teardown()

	fixture.do(t, http.MethodGet, "/api/categories/5", "", nil)
	fixture.do(t, http.MethodGet, "/api/unknown", "", nil)
	fixture.do(t, http.MethodPost, "/api/admin/categories", `{"name":"x"}`, nil)

	resp, raw := fixture.do(t, http.MethodGet, "/metrics", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}

	text := string(raw)
	for _, want := range []string{
		`storefront_http_requests_total{method="GET",route="/api/categories/{id}",status="200"} 1`,
		`storefront_http_requests_total{method="GET",route="unmatched",status="404"} 1`,
		`storefront_http_errors_total{code="UNAUTHORIZED"} 1`,
		`storefront_auth_failures_total{reason="missing"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
	if strings.Contains(text, `route="/api/categories/5"`) {
		t.Error("raw path leaked into metric labels")
	}
}

// ============================================================================
// Authentication
// ============================================================================

func TestIntegration_ProtectedRoute_Unauthorized(t *testing.T) {
	fixture := setupTestFixture(t, fixtureOptions{})
	defer fixture.teardown()

	now := time.Now()
	expired := signClaims(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"id": 1, "username": "admin",
		"iat": now.Add(-2 * time.Hour).Unix(),
		"exp": now.Add(-time.Hour).Unix(),
	})
	forged := signClaims(t, jwt.SigningMethodHS256, "another-secret", jwt.MapClaims{
		"id": 1, "username": "admin", "exp": now.Add(time.Hour).Unix(),
	})
	noExpiry := signClaims(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"id": 1, "username": "admin",
	})

	tests := []struct {
		name        string
		header      string
		wantMessage string
	}{
		{name: "no header", header: "", wantMessage: "Missing Authorization header"},
		{name: "basic scheme", header: "Basic YWRtaW46YWRtaW4=", wantMessage: "Missing Authorization header"},
		{name: "garbage token", header: "Bearer not-a-jwt", wantMessage: "Invalid or expired token"},
		{name: "expired token", header: "Bearer " + expired, wantMessage: "Invalid or expired token"},
		{name: "wrong secret", header: "Bearer " + forged, wantMessage: "Invalid or expired token"},
		{name: "no expiry", header: "Bearer " + noExpiry, wantMessage: "Invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{"Content-Type": "application/json"}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}

			// An invalid body proves authentication runs before validation.
			resp, raw := fixture.do(t, http.MethodPost, "/api/admin/categories", `{}`, headers)

			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("got status %d, want 401", resp.StatusCode)
			}
			if got := resp.Header.Get("WWW-Authenticate"); got != "Bearer" {
				t.Errorf("WWW-Authenticate = %q, want Bearer", got)
			}
			body := decodeError(t, raw)
			if body.Error != "UNAUTHORIZED" {
				t.Errorf("error = %q, want UNAUTHORIZED", body.Error)
			}
			if body.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", body.Message, tt.wantMessage)
			}
		})
	}
}

func TestIntegration_ProtectedRoute_Authorized(t *testing.T) {
	fixture := setupTestFixture(t, fixtureOptions{})
	defer fixture.teardown()

	resp, raw := fixture.do(t, http.MethodPost, "/api/admin/categories", `{"name":"Pizza"}`, map[string]string{
		"Authorization": "Bearer " + fixture.createToken(t),
		"Content-Type":  "application/json",
	})

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %s", resp.StatusCode, raw)
	}

	var created map[string]string
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created["name"] != "Pizza" || created["createdBy"] != "admin" {
		t.Errorf("got %v", created)
	}
}

// ============================================================================
// Validation
// ============================================================================

func TestIntegration_Validation_Body(t *testing.T) {
	fixture := setupTestFixture(t, fixtureOptions{})
	defer fixture.teardown()

	headers := map[string]string{"Authorization": "Bearer " + fixture.createToken(t)}

	tests := []struct {
		name        string
		body        string
		wantMessage string
		wantPaths   []string
	}{
		{name: "empty object", body: `{}`, wantMessage: "Request validation failed", wantPaths: []string{"name"}},
		{name: "wrong type", body: `{"name":7}`, wantMessage: "Request validation failed", wantPaths: []string{"name"}},
		{name: "too long", body: `{"name":"` + strings.Repeat("n", 101) + `"}`, wantMessage: "Request validation failed", wantPaths: []string{"name"}},
		{name: "malformed json", body: `{"name":`, wantMessage: "Malformed JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := fixture.do(t, http.MethodPost, "/api/admin/categories", tt.body, headers)

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("got status %d, want 400", resp.StatusCode)
			}
			body := decodeError(t, raw)
			if body.Error != "VALIDATION_ERROR" || body.Message != tt.wantMessage {
				t.Errorf("got %+v", body)
			}
			if len(body.Details) != len(tt.wantPaths) {
				t.Fatalf("details = %+v, want paths %v", body.Details, tt.wantPaths)
			}
			for i, path := range tt.wantPaths {
				if body.Details[i].Path != path {
					t.Errorf("details[%d].path = %q, want %q", i, body.Details[i].Path, path)
				}
				if body.Details[i].Message == "" {
					t.Errorf("details[%d].message is empty", i)
				}
			}
		})
	}
}

func TestIntegration_Validation_NestedBody(t *testing.T) {
	fixture := setupTestFixture(t, fixtureOptions{})
	defer fixture.teardown()

	headers := map[string]string{"Authorization": "Bearer " + fixture.createToken(t)}

	type detail struct{ path, message string }
	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantDetails []detail
	}{
		{
			name:       "valid order",
			body:       `{"items":[{"menuItemId":3,"quantity":2}]}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "type mismatch and constraint in one body",
			body:       `{"items":[{"menuItemId":3,"quantity":"two"},{"menuItemId":4,"quantity":51}]}`,
			wantStatus: http.StatusBadRequest,
			wantDetails: []detail{
				{"items.0.quantity", "quantity must be an integer"},
				{"items.1.quantity", "quantity must be 50 or less"},
			},
		},
		{
			name:       "every mismatch reported",
			body:       `{"items":[{"menuItemId":"a","quantity":"b"}]}`,
			wantStatus: http.StatusBadRequest,
			wantDetails: []detail{
				{"items.0.menuItemId", "menuItemId must be an integer"},
				{"items.0.quantity", "quantity must be an integer"},
			},
		},
		{
			name:       "top level array",
			body:       `[{"menuItemId":3,"quantity":2}]`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := fixture.do(t, http.MethodPost, "/api/orders", tt.body, headers)

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("got status %d, want %d: %s", resp.StatusCode, tt.wantStatus, raw)
			}
			if tt.wantStatus != http.StatusBadRequest {
				return
			}

			body := decodeError(t, raw)
			if len(body.Details) != len(tt.wantDetails) {
				t.Fatalf("details = %+v, want %v", body.Details, tt.wantDetails)
			}
			if len(tt.wantDetails) == 0 && body.Message != "Malformed JSON body" {
				t.Errorf("message = %q, want Malformed JSON body", body.Message)
			}
			for i, want := range tt.wantDetails {
				got := body.Details[i]
				if got.Path != want.path || got.Message != want.message {
					t.Errorf("details[%d] = %+v, want %+v", i, got, want)
				}
			}
		})
	}
}

func TestIntegration_Validation_Params(t *testing.T) {
	fixture := setupTestFixture(t, fixtureOptions{})
	defer fixture.teardown()

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
		wantCode   string
	}{
		{name: "coerced id", path: "/api/categories/12", wantStatus: http.StatusOK, wantBody: `{"id":12}`},
		{name: "non-numeric id", path: "/api/categories/abc", wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_ERROR"},
		{name: "handler not found", path: "/api/categories/404", wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := fixture.do(t, http.MethodGet, tt.path, "", nil)

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("got status %d, want %d: %s", resp.StatusCode, tt.wantStatus, raw)
			}
			if tt.wantBody != "" && strings.TrimSpace(string(raw)) != tt.wantBody {
				t.Errorf("body = %s, want %s", raw, tt.wantBody)
			}
			if tt.wantCode != "" {
				if got := decodeError(t, raw).Error; got != tt.wantCode {
					t.Errorf("error = %q, want %q", got, tt.wantCode)
				}
			}
		})
	}
}

func TestIntegration_Validation_QueryAfterAuth(t *testing.T) {
	fixture := setupTestFixture(t, fixtureOptions{})
	defer fixture.teardown()

	headers := map[string]string{"Authorization": "Bearer " + fixture.createToken(t)}

	resp, raw := fixture.do(t, http.MethodGet, "/api/orders?page=3", "", headers)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(raw)) != `{"page":3}` {
		t.Errorf("got %d %s", resp.StatusCode, raw)
	}

	resp, _ = fixture.do(t, http.MethodGet, "/api/orders?page=0", "", headers)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("page=0 status = %d, want 400", resp.StatusCode)
	}

	resp, _ = fixture.do(t, http.MethodGet, "/api/orders?page=0", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", resp.StatusCode)
	}
}

// ============================================================================
// Error Translation
// ============================================================================

func TestIntegration_UnclassifiedErrors(t *testing.T) {
	for _, path := range []string{"/api/fail", "/api/panic"} {
		t.Run(path, func(t *testing.T) {
			fixture := setupTestFixture(t, fixtureOptions{})
			defer fixture.teardown()

			resp, raw := fixture.do(t, http.MethodGet, path, "", nil)

			if resp.StatusCode != http.StatusInternalServerError {
				t.Fatalf("got status %d, want 500", resp.StatusCode)
			}
			body := decodeError(t, raw)
			if body.Error != "INTERNAL_ERROR" || body.Message != "An unexpected error occurred" {
				t.Errorf("got %+v", body)
			}
			if bytes.Contains(raw, []byte("secret_table")) || bytes.Contains(raw, []byte("nil map")) {
				t.Errorf("internal detail leaked: %s", raw)
			}

			logged := false
			for _, entry := range fixture.logHook.AllEntries() {
				if entry.Level == logrus.ErrorLevel && entry.Data["status"] == http.StatusInternalServerError {
					logged = true
				}
			}
			if !logged {
				t.Error("500 was not logged at error level")
			}
		})
	}
}

func TestIntegration_PayloadTooLarge(t *testing.T) {
	fixture := setupTestFixture(t, fixtureOptions{maxBodyBytes: 32})
	defer fixture.teardown()

	headers := map[string]string{"Authorization": "Bearer " + fixture.createToken(t)}
	resp, raw := fixture.do(t, http.MethodPost, "/api/admin/categories", `{"name":"`+strings.Repeat("x", 64)+`"}`, headers)

	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("got status %d, want 413", resp.StatusCode)
	}
	if got := decodeError(t, raw).Error; got != "PAYLOAD_TOO_LARGE" {
		t.Errorf("error = %q", got)
	}
}

func TestIntegration_RateLimit(t *testing.T) {
	fixture := setupTestFixture(t, fixtureOptions{rateLimitRPS: 0.01})
	defer fixture.teardown()

	var last *http.Response
	var raw []byte
	for i := 0; i < 3; i++ {
		last, raw = fixture.do(t, http.MethodGet, "/health", "", nil)
	}

	if last.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want 429", last.StatusCode)
	}
	if last.Header.Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
	if got := decodeError(t, raw).Error; got != "TOO_MANY_REQUESTS" {
		t.Errorf("error = %q", got)
	}
}

// ============================================================================
// Readiness
// ============================================================================

func TestIntegration_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
	}{
		{name: "database reachable", pingErr: nil, wantStatus: http.StatusOK},
		{name: "database down", pingErr: errors.New("connection refused"), wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			if err != nil {
				t.Fatalf("failed to create sqlmock: %v", err)
			}
			db := storage.New(sqlDB, nil)
			defer func() { _ = db.Close() }()

			ping := mock.ExpectPing()
			if tt.pingErr != nil {
				ping.WillReturnError(tt.pingErr)
			}

			fixture := setupTestFixture(t, fixtureOptions{database: db})
			defer fixture.teardown()

			resp, raw := fixture.do(t, http.MethodGet, "/ready", "", nil)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("got status %d, want %d: %s", resp.StatusCode, tt.wantStatus, raw)
			}
			if tt.pingErr != nil {
				body := decodeError(t, raw)
				if body.Error != "SERVICE_UNAVAILABLE" {
					t.Errorf("error = %q", body.Error)
				}
				if strings.Contains(string(raw), "connection refused") {
					t.Error("ping error leaked to client")
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

// ============================================================================
// Lifecycle
// ============================================================================

func TestIntegration_Lifecycle(t *testing.T) {
	fixture := setupTestFixture(t, fixtureOptions{})
	defer fixture.teardown()

	server := fixture.services.Server
	if err := server.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get("http://" + server.Addr() + "/health")
	if err != nil {
		t.Fatalf("request to started server failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("got status %d, want 200", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := 0; i < 2; i++ {
		if err := server.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown call %d error: %v", i+1, err)
		}
	}

	closed := 0
	for _, entry := range fixture.logHook.AllEntries() {
		if entry.Message == "Server closed" {
			closed++
		}
	}
	if closed != 1 {
		t.Errorf("\"Server closed\" logged %d times, want 1", closed)
	}

	if _, err := http.Get("http://" + server.Addr() + "/health"); err == nil {
		t.Error("server still accepting requests after shutdown")
	}
}
