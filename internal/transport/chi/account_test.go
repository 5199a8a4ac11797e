package chi

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kailas-cloud/docinsight/internal/db"
	"github.com/kailas-cloud/docinsight/internal/domain"
	domuser "github.com/kailas-cloud/docinsight/internal/domain/user"
	authuc "github.com/kailas-cloud/docinsight/internal/usecase/auth"
)

type memUserStore struct {
	mu    sync.Mutex
	users map[string]domuser.User
	err   error
}

func (m *memUserStore) Create(_ context.Context, u domuser.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[u.Email]; ok {
		return domain.ErrAlreadyExists
	}
	m.users[u.Email] = u
	return nil
}

func (m *memUserStore) ByEmail(_ context.Context, email string) (domuser.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domuser.User{}, m.err
	}
	u, ok := m.users[email]
	if !ok {
		return domuser.User{}, domain.ErrNotFound
	}
	return u, nil
}

type authFixture struct {
	store   *memUserStore
	handler http.Handler
}

func newAuthFixture(t *testing.T, cfg RouterConfig) *authFixture {
	t.Helper()
	store := &memUserStore{users: map[string]domuser.User{}}
	svc, err := authuc.New(store, []byte("0123456789abcdef0123456789abcdef"), time.Hour, authuc.WithCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	srv := NewServer(Services{
		Ingest: &mockIngest{documentsFn: func() ([]string, error) { return []string{"a.pdf"}, nil }},
		Auth:   svc,
	})
	cfg.Tokens = svc
	return &authFixture{store: store, handler: NewRouter(srv, cfg)}
}

func (f *authFixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func (f *authFixture) register(email, password string) *httptest.ResponseRecorder {
	body := `{"email":"` + email + `","password":"` + password + `"}`
	req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return f.serve(req)
}

// login posts multipart form data, the encoding browsers use for FormData.
func (f *authFixture) login(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("username", username)
	_ = mw.WriteField("password", password)
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest("POST", "/auth/token", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return f.serve(req)
}

func (f *authFixture) documents(token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/api/documents", http.NoBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return f.serve(req)
}

func TestAuth_RegisterLoginAndCallAPI(t *testing.T) {
	f := newAuthFixture(t, RouterConfig{RequireLogin: true})

	if rr := f.documents(""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status = %d", rr.Code)
	}

	rr := f.register("ada@example.com", "pw")
	if rr.Code != http.StatusOK {
		t.Fatalf("register: status = %d, body %s", rr.Code, rr.Body)
	}
	reg := decodeBody[tokenResponse](t, rr)
	if reg.AccessToken == "" || reg.TokenType != "bearer" || reg.ExpiresIn <= 0 {
		t.Fatalf("register token = %+v", reg)
	}
	if rr := f.documents(reg.AccessToken); rr.Code != http.StatusOK {
		t.Errorf("registered token: status = %d", rr.Code)
	}

	rr = f.login(t, "ada@example.com", "pw")
	if rr.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body %s", rr.Code, rr.Body)
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", rr.Header().Get("Cache-Control"))
	}
	login := decodeBody[tokenResponse](t, rr)
	if rr := f.documents(login.AccessToken); rr.Code != http.StatusOK {
		t.Errorf("login token: status = %d", rr.Code)
	}
	if rr := f.documents(login.AccessToken + "x"); rr.Code != http.StatusUnauthorized {
		t.Errorf("tampered token: status = %d", rr.Code)
	}
}

func TestAuth_TokenAcceptsURLEncodedForm(t *testing.T) {
	f := newAuthFixture(t, RouterConfig{})
	if rr := f.register("ada@example.com", "pw"); rr.Code != http.StatusOK {
		t.Fatalf("register: status = %d", rr.Code)
	}

	form := url.Values{"username": {"ada@example.com"}, "password": {"pw"}}
	req := httptest.NewRequest("POST", "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if rr := f.serve(req); rr.Code != http.StatusOK {
		t.Errorf("status = %d, body %s", rr.Code, rr.Body)
	}
}

func TestAuth_Errors(t *testing.T) {
	f := newAuthFixture(t, RouterConfig{})
	if rr := f.register("ada@example.com", "pw"); rr.Code != http.StatusOK {
		t.Fatalf("register: status = %d", rr.Code)
	}

	tests := []struct {
		name       string
		rr         *httptest.ResponseRecorder
		wantStatus int
		wantError  string
	}{
		{"duplicate email", f.register("ADA@example.com", "other"), http.StatusBadRequest, "Email already registered"},
		{"invalid email", f.register("ada", "pw"), http.StatusBadRequest, ""},
		{"wrong password", f.login(t, "ada@example.com", "nope"), http.StatusUnauthorized, "Incorrect email or password"},
		{"unknown user", f.login(t, "bob@example.com", "pw"), http.StatusUnauthorized, "Incorrect email or password"},
		{"missing fields", f.login(t, "", ""), http.StatusBadRequest, "username and password are required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", tt.rr.Code, tt.wantStatus)
			}
			got := decodeBody[errorResponse](t, tt.rr)
			if tt.wantError != "" && got.Error != tt.wantError {
				t.Errorf("error = %q, want %q", got.Error, tt.wantError)
			}
		})
	}
}

func TestAuth_StoreFailure(t *testing.T) {
	f := newAuthFixture(t, RouterConfig{})
	f.store.err = &db.Error{Op: db.OpSelect, Err: errors.New("dial tcp: refused")}

	rr := f.login(t, "ada@example.com", "pw")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := decodeBody[errorResponse](t, rr); got.Error != "store unavailable" {
		t.Errorf("error = %q", got.Error)
	}
}

func TestAuth_RoutesAbsentWithoutService(t *testing.T) {
	rr := newFixture(t, nil).do("POST", "/auth/register", []byte(`{}`), "application/json")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d", rr.Code)
	}
}
