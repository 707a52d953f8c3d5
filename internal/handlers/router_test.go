package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"

	"github.com/justsurfingit/lead-labeler/internal/auth"
	"github.com/justsurfingit/lead-labeler/internal/database"
	"github.com/justsurfingit/lead-labeler/internal/handlers"
	"github.com/justsurfingit/lead-labeler/internal/models"
	"github.com/justsurfingit/lead-labeler/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// budget above 1000 is Applied, anything else Rejected
const stumpJSON = `{"kind":"forest","trees":[{"nodes":[
  {"feature":0,"threshold":1000,"left":1,"right":2},
  {"left":-1,"right":-1,"value":[2,8]},
  {"left":-1,"right":-1,"value":[9,1]}
]}]}`

const leadFeed = "<p>Need a Go developer.<br><b>Budget</b>: $1,500<br><b>Category</b>: Back-End Development<br><b>Country</b>: Germany<br></p>"

type testServer struct {
	router http.Handler
	token  string
	leads  *services.LeadService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	tm := auth.NewTokenManager("test-secret", time.Hour)
	modelSvc := services.NewModelService(db, filepath.Join(t.TempDir(), "models"), nil)
	leads := services.NewLeadService(db, modelSvc, nil)
	router := handlers.NewRouter(handlers.Deps{
		Leads:  leads,
		Models: modelSvc,
		Users:  services.NewUserService(db, tm),
		Tokens: tm,
	})

	token, _ := tm.Sign("tester@example.com")
	return &testServer{router: router, token: token, leads: leads}
}

func (s *testServer) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(t *testing.T, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = fw.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/model_upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

// ── open routes ────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", nil, false)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get(handlers.RequestIDHeader) == "" {
		t.Error("response should carry a request id")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(handlers.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if got := w.Header().Get(handlers.RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestSignupAndLogin(t *testing.T) {
	s := newTestServer(t)

	signup := map[string]string{"fullname": "Ada", "email": "ada@example.com", "password": "pa55word"}
	w := s.do(t, http.MethodPost, "/user/signup", signup, false)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d: %s", w.Code, w.Body.String())
	}
	if bytes.Contains(w.Body.Bytes(), []byte("pa55word")) || bytes.Contains(w.Body.Bytes(), []byte("password")) {
		t.Errorf("signup response leaks the password: %s", w.Body.String())
	}

	if w := s.do(t, http.MethodPost, "/user/signup", signup, false); w.Code != http.StatusConflict {
		t.Errorf("duplicate signup status = %d, want 409", w.Code)
	}
	bad := map[string]string{"fullname": "X", "email": "not-an-email", "password": "pa55word"}
	if w := s.do(t, http.MethodPost, "/user/signup", bad, false); w.Code != http.StatusBadRequest {
		t.Errorf("invalid email status = %d, want 400", w.Code)
	}

	w = s.do(t, http.MethodPost, "/user/login", map[string]string{"email": "ada@example.com", "password": "pa55word"}, false)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	tok := decode[map[string]string](t, w)
	if tok["access_token"] == "" || tok["token_type"] != "bearer" {
		t.Errorf("login response = %v", tok)
	}

	w = s.do(t, http.MethodPost, "/user/login", map[string]string{"email": "ada@example.com", "password": "wrong"}, false)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", w.Code)
	}
}

// ── bearer routes ──────────────────────────────────────────────────────────

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/data_fetch"},
		{http.MethodPost, "/label_fetch"},
		{http.MethodPost, "/model_upload"},
		{http.MethodDelete, "/model_delete"},
		{http.MethodGet, "/models"},
	}
	for _, r := range routes {
		w := s.do(t, r.method, r.path, nil, false)
		if w.Code != http.StatusForbidden {
			t.Errorf("%s %s status = %d, want 403", r.method, r.path, w.Code)
			continue
		}
		if body := decode[map[string]string](t, w); body["error"] != "Invalid token or expired token" {
			t.Errorf("%s %s body = %v", r.method, r.path, body)
		}
	}
}

func TestModelLifecycle(t *testing.T) {
	s := newTestServer(t)

	if w := s.upload(t, "rf_clf.json", stumpJSON); w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", w.Code, w.Body.String())
	}
	if w := s.upload(t, "rf_clf.json", stumpJSON); w.Code != http.StatusConflict {
		t.Errorf("duplicate upload status = %d, want 409", w.Code)
	}
	if w := s.upload(t, "broken.pkl", "\x80\x04"); w.Code != http.StatusBadRequest {
		t.Errorf("pickle upload status = %d, want 400", w.Code)
	}

	w := s.do(t, http.MethodGet, "/models", nil, true)
	list := decode[[]models.MLModel](t, w)
	if len(list) != 1 || list[0].Name != "rf_clf" {
		t.Fatalf("models = %+v", list)
	}

	if w := s.do(t, http.MethodDelete, "/model_delete", map[string]string{"db_model_name": "rf_clf"}, true); w.Code != http.StatusOK {
		t.Errorf("delete status = %d: %s", w.Code, w.Body.String())
	}
	if w := s.do(t, http.MethodDelete, "/model_delete", map[string]string{"model_name": "rf_clf"}, true); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
	if w := s.do(t, http.MethodDelete, "/model_delete", map[string]string{}, true); w.Code != http.StatusBadRequest {
		t.Errorf("delete without name status = %d, want 400", w.Code)
	}
}

func TestLabelFetch(t *testing.T) {
	s := newTestServer(t)
	s.leads.Extractor.Now = func() time.Time { return time.Date(2024, time.March, 5, 14, 7, 0, 0, time.UTC) }
	if w := s.upload(t, "rf_clf.json", stumpJSON); w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodPost, "/label_fetch", map[string]string{"lead": leadFeed, "model_name": "rf_clf"}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("raw label status = %d: %s", w.Code, w.Body.String())
	}
	rec := decode[map[string]any](t, w)
	if rec["label"] != "Applied" || rec["country"] != "Germany" || rec["budget"] != 1500.0 {
		t.Errorf("raw label record = %v", rec)
	}
	if rec["hourly_from"] != "" {
		t.Errorf("absent hourly_from should serialize as empty string, got %v", rec["hourly_from"])
	}

	structured := map[string]any{
		"db_model_name": "rf_clf",
		"category":      "Web Design",
		"country":       "India",
		"message":       "<p>Landing page</p>",
		"budget":        200,
	}
	w = s.do(t, http.MethodPost, "/label_fetch", structured, true)
	if w.Code != http.StatusOK {
		t.Fatalf("structured label status = %d: %s", w.Code, w.Body.String())
	}
	rec = decode[map[string]any](t, w)
	if rec["label"] != "Rejected" || rec["message"] != "Landing page" {
		t.Errorf("structured label record = %v", rec)
	}
	if rec["posted_on"] != "05/03/2024 14:07" {
		t.Errorf("structured posted_on = %v, want the extractor clock", rec["posted_on"])
	}

	cases := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"no model", map[string]any{"lead": leadFeed}, http.StatusBadRequest},
		{"unknown model", map[string]any{"lead": leadFeed, "model_name": "nope"}, http.StatusNotFound},
		{"unknown category", map[string]any{"model_name": "rf_clf", "category": "Knitting"}, http.StatusUnprocessableEntity},
		{"unknown country", map[string]any{"model_name": "rf_clf", "country": "Atlantis"}, http.StatusUnprocessableEntity},
		{"bad amount", map[string]any{"model_name": "rf_clf", "budget": "lots"}, http.StatusBadRequest},
	}
	for _, c := range cases {
		if w := s.do(t, http.MethodPost, "/label_fetch", c.body, true); w.Code != c.status {
			t.Errorf("%s: status = %d, want %d (%s)", c.name, w.Code, c.status, w.Body.String())
		}
	}

	w = s.do(t, http.MethodGet, "/data_fetch", nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("data_fetch status = %d", w.Code)
	}
	records := decode[[]map[string]any](t, w)
	if len(records) != 2 || records[0]["label"] != "Applied" || records[1]["label"] != "Rejected" {
		t.Errorf("data_fetch = %v", records)
	}
}
