package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/moraka/internal/config"
	"github.com/MrSnakeDoc/moraka/internal/httpserver/deps"
	"github.com/MrSnakeDoc/moraka/internal/httpserver/mw"
	"github.com/MrSnakeDoc/moraka/internal/logger"
	"github.com/MrSnakeDoc/moraka/internal/session"
	"github.com/MrSnakeDoc/moraka/internal/sources/seed"
)

type listingsBody struct {
	Count    int `json:"count"`
	Listings []struct {
		ID           string `json:"id"`
		Category     string `json:"category"`
		City         string `json:"city"`
		Fresh        bool   `json:"fresh"`
		Expired      bool   `json:"expired"`
		Availability string `json:"availability"`
	} `json:"listings"`
}

func testConfig() *config.Config {
	return &config.Config{
		RequestTimeout:  time.Second,
		CORSOrigins:     []string{"*"},
		RateLimitBurst:  1000,
		RateLimitPerMin: 1000,
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) (http.Handler, *session.Manager) {
	t.Helper()

	log := logger.New("error", false)
	listings, err := seed.NewLoader("").Load()
	require.NoError(t, err)

	sessions := session.NewManager(context.Background(), listings, nil, nil, log, session.Config{ManualFeed: true})
	t.Cleanup(sessions.Shutdown)

	d := deps.Deps{
		Logger:       log,
		StartTime:    time.Now(),
		Version:      "test",
		TimeNow:      time.Now,
		AllowedCIDRS: cfg.AllowedCIDRS,
		SeedCount:    len(listings),
		Sessions:     sessions,
	}
	return NewRouter(cfg, log, d), sessions
}

func do(h http.Handler, method, target, body, sessionID string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if sessionID != "" {
		req.Header.Set(mw.SessionHeader, sessionID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, h http.Handler) string {
	t.Helper()

	rec := do(h, http.MethodPost, "/api/register", `{"name":"Kagiso","phone":"71 234 567","city":"Gaborone"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		SessionID string `json:"session_id"`
		User      struct {
			Phone string `json:"phone"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.SessionID)
	assert.Equal(t, "+26771234567", body.User.Phone)
	assert.Equal(t, body.SessionID, rec.Header().Get(mw.SessionHeader))
	return body.SessionID
}

func TestRegister_BlockedStep(t *testing.T) {
	h, sessions := newTestRouter(t, testConfig())

	tests := []struct {
		name     string
		body     string
		wantStep string
	}{
		{name: "empty name", body: `{"name":"  ","phone":"71234567","city":"Maun"}`, wantStep: "name"},
		{name: "bad phone", body: `{"name":"Neo","phone":"12345","city":"Maun"}`, wantStep: "phone"},
		{name: "no city", body: `{"name":"Neo","phone":"71234567","city":""}`, wantStep: "city"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/api/register", tt.body, "")
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			var body struct {
				Step  string `json:"step"`
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStep, body.Step)
			assert.NotEmpty(t, body.Error)
		})
	}

	assert.Equal(t, 0, sessions.Count())
}

func TestRegister_RejectsMalformedJSON(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())

	rec := do(h, http.MethodPost, "/api/register", `{"name":`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListings_RequireSession(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())

	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/api/listings", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/api/listings", "", "nope").Code)
}

func TestListings_BrowseAndFilter(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())
	sid := register(t, h)

	rec := do(h, http.MethodGet, "/api/listings", "", sid)
	require.Equal(t, http.StatusOK, rec.Code)

	var all listingsBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Equal(t, 8, all.Count)
	assert.Len(t, all.Listings, 8)

	rec = do(h, http.MethodGet, "/api/listings?category=food&city=all", "", sid)
	require.Equal(t, http.StatusOK, rec.Code)

	var food listingsBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &food))
	assert.NotEmpty(t, food.Listings)
	assert.Less(t, food.Count, all.Count)
	for _, l := range food.Listings {
		assert.NotContains(t, []string{"clothing", "kitchen", "education", "household", "other"}, l.Category)
	}

	rec = do(h, http.MethodGet, "/api/listings?q=zzzz-nothing", "", sid)
	var none listingsBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &none))
	assert.Equal(t, 0, none.Count)
}

func TestListings_PostGetAndRequest(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())
	sid := register(t, h)

	rec := do(h, http.MethodPost, "/api/listings", `{"title":"Only a title"}`, sid)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var invalid struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invalid))
	assert.Equal(t, "Description is required", invalid.Fields["description"])

	draft := `{
		"title": "School Uniforms",
		"description": "Two sets, size 10",
		"city": "Kanye",
		"category": "clothing",
		"quantity": "2 sets",
		"pickupLocation": "School",
		"availableUntil": "2030-01-01T00:00:00Z"
	}`
	rec = do(h, http.MethodPost, "/api/listings", draft, sid)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var posted struct {
		ID             string `json:"id"`
		PostedBy       string `json:"posted_by"`
		PickupLocation string `json:"pickup_location"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posted))
	assert.Equal(t, "Kagiso", posted.PostedBy)
	assert.Equal(t, "School, Kanye", posted.PickupLocation)

	rec = do(h, http.MethodGet, "/api/listings/"+posted.ID, "", sid)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodPost, "/api/listings/"+posted.ID+"/request", "", sid)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "School Uniforms")

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/api/listings/missing", "", sid).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodPost, "/api/listings/missing/request", "", sid).Code)
}

func TestSession_End(t *testing.T) {
	h, sessions := newTestRouter(t, testConfig())
	sid := register(t, h)
	require.Equal(t, 1, sessions.Count())

	assert.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, "/api/session", "", sid).Code)
	assert.Equal(t, 0, sessions.Count())
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodDelete, "/api/session", "", sid).Code)
}

func TestPhoneNormalize(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())

	rec := do(h, http.MethodGet, "/api/phone/normalize?phone=0026771234567", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Canonical string `json:"canonical"`
		Valid     bool   `json:"valid"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Valid)
	assert.Equal(t, "+26771234567", body.Canonical)

	rec = do(h, http.MethodGet, "/api/phone/normalize?phone=12345", "", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Valid)
}

func TestReference(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())

	rec := do(h, http.MethodGet, "/api/reference", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Cities       []string `json:"cities"`
		PickupPlaces []string `json:"pickup_places"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Cities, 12)
	assert.Contains(t, body.PickupPlaces, "Other")
}

func TestOpsEndpoints(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())

	for _, path := range []string{"/healthz", "/readyz", "/infra", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusOK, do(h, http.MethodGet, path, "", "").Code)
		})
	}

	rec := do(h, http.MethodGet, "/infra", "", "")
	var infra struct {
		Mode string `json:"mode"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infra))
	assert.Equal(t, "optimal", infra.Mode, "disabled optional backends do not degrade")
}

func TestOpsEndpoints_CIDRRestricted(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedCIDRS = []string{"10.0.0.0/8"}
	h, _ := newTestRouter(t, cfg)

	// httptest requests come from 192.0.2.1
	assert.Equal(t, http.StatusForbidden, do(h, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusForbidden, do(h, http.MethodGet, "/metrics", "", "").Code)

	// The public API is not restricted
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/reference", "", "").Code)
}

func TestAPI_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitBurst = 2
	cfg.RateLimitPerMin = 1
	h, _ := newTestRouter(t, cfg)

	for i := 0; i < 2; i++ {
		rec := do(h, http.MethodGet, "/api/reference", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := do(h, http.MethodGet, "/api/reference", "", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestAPI_CORSPreflight(t *testing.T) {
	h, _ := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/listings", nil)
	req.Header.Set("Origin", "https://moraka.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", mw.SessionHeader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), strings.ToLower(mw.SessionHeader))
}
