package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/jobbo/internal/models"
	"github.com/yoockh/jobbo/internal/utils"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newSavedRouter(svc *fakeSavedJobs, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewSavedJobHandler(svc)
	g := r.Group("/api/saved-jobs", asUser(userID))
	g.GET("", h.List)
	g.POST("/toggle", h.Toggle)
	g.GET("/:job_id", h.Status)
	g.PUT("/:job_id", h.Put)
	g.DELETE("/:job_id", h.Delete)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestToggleTwiceRestoresState(t *testing.T) {
	svc := newFakeSavedJobs()
	r := newSavedRouter(svc, "u1")
	body := `{"id":"42","title":"Go dev","company":{"display_name":"Acme"}}`

	var first SavedStatusResponse
	rec := do(r, http.MethodPost, "/api/saved-jobs/toggle", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &first)
	if !first.Saved || first.Message != models.MsgJobSaved {
		t.Fatalf("first toggle = %+v", first)
	}

	var second SavedStatusResponse
	rec = do(r, http.MethodPost, "/api/saved-jobs/toggle", body)
	_ = json.Unmarshal(rec.Body.Bytes(), &second)
	if second.Saved || second.Message != models.MsgJobRemoved {
		t.Fatalf("second toggle = %+v", second)
	}

	rec = do(r, http.MethodGet, "/api/saved-jobs/42", "")
	var status SavedStatusResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &status)
	if status.Saved {
		t.Fatal("job still saved after two toggles")
	}
}

func TestPutUsesPathID(t *testing.T) {
	svc := newFakeSavedJobs()
	r := newSavedRouter(svc, "u1")

	rec := do(r, http.MethodPut, "/api/saved-jobs/7", `{"id":"other","title":"X"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &snap)
	if snap["id"] != "7" || snap["location"] != models.LocationNotSpecified {
		t.Fatalf("snapshot = %v", snap)
	}
}

func TestListEmptyIsArray(t *testing.T) {
	r := newSavedRouter(newFakeSavedJobs(), "u1")
	rec := do(r, http.MethodGet, "/api/saved-jobs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"jobs":[]}` {
		t.Fatalf("body = %s", got)
	}
}

func TestPermissionErrorSurfacesMessage(t *testing.T) {
	svc := newFakeSavedJobs()
	svc.err = utils.E(utils.CodeForbidden, "SavedJobService.Save", models.MsgSavePermission, utils.ErrPermissionDenied)
	r := newSavedRouter(svc, "u1")

	rec := do(r, http.MethodPost, "/api/saved-jobs/toggle", `{"id":"1"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	var body APIError
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Code != utils.CodeForbidden || body.Message != models.MsgSavePermission {
		t.Fatalf("body = %+v", body)
	}
}

func TestSavedJobsRequireIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewSavedJobHandler(newFakeSavedJobs())
	r.GET("/api/saved-jobs", h.List)

	rec := do(r, http.MethodGet, "/api/saved-jobs", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestProfileDefaultAndPut(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewProfileHandler(&fakeProfiles{})
	g := r.Group("/api/profile", asUser("u1"))
	g.GET("", h.Get)
	g.PUT("", h.Put)

	rec := do(r, http.MethodGet, "/api/profile", "")
	var p models.Profile
	_ = json.Unmarshal(rec.Body.Bytes(), &p)
	if rec.Code != http.StatusOK || p.UserID != "u1" || p.FullName != "" {
		t.Fatalf("default profile = %d %+v", rec.Code, p)
	}

	rec = do(r, http.MethodPut, "/api/profile", `{"full_name":"Ada","skills":"go"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d", rec.Code)
	}
	rec = do(r, http.MethodGet, "/api/profile", "")
	_ = json.Unmarshal(rec.Body.Bytes(), &p)
	if p.FullName != "Ada" || p.Skills != "go" || p.Phone != "" {
		t.Fatalf("stored profile = %+v", p)
	}
}
