package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rehan959/info-tracker-sub000/internal/store"
)

func testRouter(t *testing.T) (*gin.Engine, TokenService, *Repo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	tokens := TokenService{Secret: []byte("test-secret"), Issuer: "tracker", Duration: time.Hour}
	repo := NewRepo(db)

	r := gin.New()
	NewHandler(repo, tokens).RegisterRoutes(r.Group("/api/auth"))
	return r, tokens, repo
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	r, _, _ := testRouter(t)

	w := postJSON(t, r, "/api/auth/register", gin.H{
		"email": "ana@example.com", "name": "Ana", "password": "hunter2hunter2",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body)
	}
	var reg struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reg); err != nil || reg.Token == "" {
		t.Fatalf("register response missing token: %s", w.Body)
	}

	w = postJSON(t, r, "/api/auth/login", gin.H{
		"email": "ana@example.com", "password": "hunter2hunter2",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r, _, _ := testRouter(t)

	postJSON(t, r, "/api/auth/register", gin.H{
		"email": "ana@example.com", "password": "hunter2hunter2",
	}, nil)
	w := postJSON(t, r, "/api/auth/login", gin.H{
		"email": "ana@example.com", "password": "wrong-password",
	}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("login status = %d, want 401", w.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r, _, _ := testRouter(t)

	body := gin.H{"email": "ana@example.com", "password": "hunter2hunter2"}
	postJSON(t, r, "/api/auth/register", body, nil)
	w := postJSON(t, r, "/api/auth/register", body, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("second register status = %d, want 409", w.Code)
	}
}

func TestMeRequiresToken(t *testing.T) {
	r, tokens, repo := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated /me status = %d, want 401", w.Code)
	}

	u := User{ID: "u1", Email: "ana@example.com", Name: "Ana", PasswordHash: "x"}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	token, _, err := tokens.Sign(&u)
	if err != nil {
		t.Fatal(err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authenticated /me status = %d, body %s", w.Code, w.Body)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	a := TokenService{Secret: []byte("secret-a"), Issuer: "tracker", Duration: time.Hour}
	b := TokenService{Secret: []byte("secret-b"), Issuer: "tracker", Duration: time.Hour}

	token, _, err := a.Sign(&User{ID: "u1", Email: "ana@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Parse(token); err == nil {
		t.Error("Parse() accepted a token signed with another secret")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	ts := TokenService{Secret: []byte("secret"), Issuer: "tracker", Duration: -time.Minute}
	token, _, err := ts.Sign(&User{ID: "u1", Email: "ana@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ts.Parse(token); err == nil {
		t.Error("Parse() accepted an expired token")
	}
}
