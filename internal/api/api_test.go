package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Sh16coder/Trackitstudy/internal"
	"github.com/Sh16coder/Trackitstudy/internal/api"
	"github.com/Sh16coder/Trackitstudy/internal/auth"
	"github.com/Sh16coder/Trackitstudy/internal/live"
	"github.com/Sh16coder/Trackitstudy/internal/storage"
)

const testToken = "MOCK-TOKEN"

func setupRouter(t *testing.T) (*gin.Engine, *storage.FileStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	store, err := storage.NewFileStorage(filepath.Join(dir, "sessions.json"), filepath.Join(dir, "profiles.json"), logger)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hub := live.NewHub(store, nil, logger)
	app := api.NewApp(logger, store, store, nil, hub)
	provider := auth.NewLocalAuthProvider(testToken, logger)

	r := gin.New()
	api.Routes(r, app, auth.Middleware(provider))
	return r, store
}

func doRequest(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPostSession_ValidAndInvalid(t *testing.T) {
	r, _ := setupRouter(t)

	w := doRequest(r, "POST", "/api/sessions", `{"subject":"math","duration_hours":2,"date":"2023-06-01"}`, testToken)
	assert.Equal(t, 200, w.Code)

	// Non-positive duration is rejected before persistence.
	w = doRequest(r, "POST", "/api/sessions", `{"subject":"math","duration_hours":0,"date":"2023-06-01"}`, testToken)
	assert.Equal(t, 400, w.Code)

	w = doRequest(r, "POST", "/api/sessions", `{"subject":"math","duration_hours":-2,"date":"2023-06-01"}`, testToken)
	assert.Equal(t, 400, w.Code)

	// Missing subject.
	w = doRequest(r, "POST", "/api/sessions", `{"duration_hours":1,"date":"2023-06-01"}`, testToken)
	assert.Equal(t, 400, w.Code)

	// Malformed date.
	w = doRequest(r, "POST", "/api/sessions", `{"subject":"math","duration_hours":1,"date":"June 1st"}`, testToken)
	assert.Equal(t, 400, w.Code)

	// No identity.
	w = doRequest(r, "POST", "/api/sessions", `{"subject":"math","duration_hours":1,"date":"2023-06-01"}`, "")
	assert.Equal(t, 401, w.Code)
}

func TestGetDashboard(t *testing.T) {
	r, _ := setupRouter(t)

	for _, body := range []string{
		`{"subject":"math","duration_hours":2,"date":"2023-06-01"}`,
		`{"subject":"science","duration_hours":1.5,"date":"2023-06-02"}`,
		`{"subject":"history","duration_hours":1,"date":"2023-06-02"}`,
	} {
		w := doRequest(r, "POST", "/api/sessions", body, testToken)
		assert.Equal(t, 200, w.Code)
	}

	w := doRequest(r, "GET", "/api/dashboard?date=2023-06-02", "", testToken)
	assert.Equal(t, 200, w.Code)

	var resp struct {
		Data struct {
			TodayHours    float64            `json:"today_hours"`
			WeeklyHours   float64            `json:"weekly_hours"`
			TotalHours    float64            `json:"total_hours"`
			SubjectTotals map[string]float64 `json:"subject_totals"`
			DailySeries   []struct {
				Weekday string  `json:"weekday"`
				Hours   float64 `json:"hours"`
			} `json:"daily_series"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 2.5, resp.Data.TodayHours, 1e-9)
	assert.InDelta(t, 4.5, resp.Data.WeeklyHours, 1e-9)
	assert.InDelta(t, 4.5, resp.Data.TotalHours, 1e-9)
	assert.Len(t, resp.Data.DailySeries, 7)
	assert.InDelta(t, 2, resp.Data.SubjectTotals["math"], 1e-9)

	// Invalid date override.
	w = doRequest(r, "GET", "/api/dashboard?date=bogus", "", testToken)
	assert.Equal(t, 400, w.Code)
}

func TestGetSessions_Ordering(t *testing.T) {
	r, _ := setupRouter(t)

	doRequest(r, "POST", "/api/sessions", `{"subject":"math","duration_hours":2,"date":"2023-06-01"}`, testToken)
	doRequest(r, "POST", "/api/sessions", `{"subject":"science","duration_hours":1,"date":"2023-06-02"}`, testToken)

	w := doRequest(r, "GET", "/api/sessions", "", testToken)
	assert.Equal(t, 200, w.Code)

	var resp struct {
		Data []internal.StudySession `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, "2023-06-02", resp.Data[0].Date)
	assert.Equal(t, "2023-06-01", resp.Data[1].Date)
}

func TestShareFlow(t *testing.T) {
	r, _ := setupRouter(t)

	// Ensure a code; a second call returns the same one.
	w := doRequest(r, "GET", "/api/share/code", "", testToken)
	assert.Equal(t, 200, w.Code)
	var codeResp struct {
		Data struct {
			ShareCode string `json:"share_code"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &codeResp))
	code := codeResp.Data.ShareCode
	assert.Len(t, code, 6)

	w = doRequest(r, "GET", "/api/share/code", "", testToken)
	var again struct {
		Data struct {
			ShareCode string `json:"share_code"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
	assert.Equal(t, code, again.Data.ShareCode)

	// Set a display name and log some study time.
	w = doRequest(r, "PUT", "/api/profile", `{"display_name":"Alex"}`, testToken)
	assert.Equal(t, 200, w.Code)
	doRequest(r, "POST", "/api/sessions", `{"subject":"math","duration_hours":2,"date":"2023-06-01"}`, testToken)

	// The shared view is public and case-insensitive on the code.
	w = doRequest(r, "GET", "/api/shared/"+strings.ToLower(code), "", "")
	assert.Equal(t, 200, w.Code)
	var shared struct {
		Data struct {
			DisplayName     string  `json:"display_name"`
			TotalHours      float64 `json:"total_hours"`
			FavoriteSubject string  `json:"favorite_subject"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &shared))
	assert.Equal(t, "Alex", shared.Data.DisplayName)
	assert.InDelta(t, 2, shared.Data.TotalHours, 1e-9)
	assert.Equal(t, "Math", shared.Data.FavoriteSubject)

	// Unknown code resolves to 404.
	w = doRequest(r, "GET", "/api/shared/ZZZZZZ", "", "")
	assert.Equal(t, 404, w.Code)
}

func TestHealthz(t *testing.T) {
	r, _ := setupRouter(t)
	w := doRequest(r, "GET", "/healthz", "", "")
	assert.Equal(t, 200, w.Code)
}
