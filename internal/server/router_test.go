package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"reminders-lite/internal/auth"
	"reminders-lite/internal/model"
	"reminders-lite/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.Store, auth.TokenConfig) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st, err := store.New()
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	tokenCfg := auth.TokenConfig{Secret: "secret", Expiry: time.Hour, Issuer: "test"}
	return NewRouter(Deps{Store: st, TokenConfig: tokenCfg}), st, tokenCfg
}

func doJSON(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_Success(t *testing.T) {
	r, st, tokenCfg := newTestRouter(t)
	u, _, err := st.GetOrCreateUser(context.Background(), "e@x.io", "p", 1)
	if err != nil {
		t.Fatalf("GetOrCreateUser: %v", err)
	}

	w := doJSON(r, http.MethodPost, "/login", "", map[string]string{"email": "e@x.io", "password": "p"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Auth   bool   `json:"auth"`
		UserID int64  `json:"userId"`
		Token  string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Auth || resp.UserID != u.ID || resp.Token == "" {
		t.Fatalf("unexpected login response: %s", w.Body.String())
	}
	claims, err := auth.VerifyToken(resp.Token, tokenCfg)
	if err != nil || claims.UserID != u.ID {
		t.Fatalf("expected token for user %d, got %+v err=%v", u.ID, claims, err)
	}
}

func TestLogin_FailureMessage(t *testing.T) {
	r, st, _ := newTestRouter(t)
	if _, _, err := st.GetOrCreateUser(context.Background(), "e@x.io", "p", 1); err != nil {
		t.Fatalf("GetOrCreateUser: %v", err)
	}

	for _, creds := range []map[string]string{
		{"email": "e@x.io", "password": "wrong"},
		{"email": "nobody@x.io", "password": "p"},
	} {
		w := doJSON(r, http.MethodPost, "/login", "", creds)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
		var resp map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp["message"] != "Invalid Login!" || len(resp) != 1 {
			t.Fatalf("unexpected failure body: %s", w.Body.String())
		}
	}
}

func TestLogin_MalformedBody(t *testing.T) {
	r, _, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestReminderEndpoints_CRUD(t *testing.T) {
	r, st, tokenCfg := newTestRouter(t)
	u, _, _ := st.GetOrCreateUser(context.Background(), "e@x.io", "p", 1)
	tok, err := auth.CreateToken(u.ID, tokenCfg)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	w := doJSON(r, http.MethodPost, "/reminders", tok, model.Reminder{UserID: u.ID, Title: "T", Body: "B", Deadline: 1704067200000})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created model.Reminder
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID == 0 || created.CreatedAt == 0 || created.UserID != u.ID {
		t.Fatalf("unexpected created reminder %+v", created)
	}
	path := "/reminders/" + strconv.FormatInt(created.ID, 10)

	w = doJSON(r, http.MethodGet, path, tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doJSON(r, http.MethodPut, path, tok, model.Reminder{ID: created.ID, Title: "T2", Deadline: 1})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated model.Reminder
	_ = json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Title != "T2" || updated.CreatedAt != created.CreatedAt {
		t.Fatalf("unexpected updated reminder %+v", updated)
	}

	req := httptest.NewRequest(http.MethodGet, "/reminders", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("User-ID", strconv.FormatInt(u.ID, 10))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var list []model.Reminder
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if w.Code != http.StatusOK || len(list) != 1 {
		t.Fatalf("unexpected list %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodDelete, path, tok, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = doJSON(r, http.MethodGet, path, tok, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
	w = doJSON(r, http.MethodDelete, path, tok, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestReminderEndpoints_Validation(t *testing.T) {
	r, st, tokenCfg := newTestRouter(t)
	u, _, _ := st.GetOrCreateUser(context.Background(), "e@x.io", "p", 1)
	tok, _ := auth.CreateToken(u.ID, tokenCfg)

	if w := doJSON(r, http.MethodGet, "/reminders", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/reminders", tok, model.Reminder{Body: "no title"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without title, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodPost, "/reminders", tok, model.Reminder{UserID: u.ID + 1, Title: "x"}); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign owner, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/reminders/abc", tok, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodPut, "/reminders/1", tok, model.Reminder{ID: 2, Title: "x"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for mismatched id, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodPut, "/reminders/999", tok, model.Reminder{Title: "x"}); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing reminder, got %d", w.Code)
	}
}

func TestNewRouter_StartsNoBackgroundGoroutines(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st, err := store.New()
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	tokenCfg := auth.TokenConfig{Secret: "secret", Expiry: time.Hour, Issuer: "test"}

	before := runtime.NumGoroutine()
	for i := 0; i < 50; i++ {
		_ = NewRouter(Deps{Store: st, TokenConfig: tokenCfg})
	}
	if after := runtime.NumGoroutine(); after-before >= 10 {
		t.Fatalf("goroutines grew from %d to %d after building routers", before, after)
	}
}
