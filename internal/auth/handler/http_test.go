package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"membership-portal/backend/internal/auth"
)

type stubAuthService struct {
	loginErr   error
	refreshErr error
	logoutErr  error

	lastRefreshToken string
	lastLogoutToken  string
	keepLogin        bool
}

func (s *stubAuthService) Login(ctx context.Context, shortcode, password string, keepLogin bool) (*auth.TokenPair, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	s.keepLogin = keepLogin
	pair := &auth.TokenPair{AccessToken: "access-token", AccessExpiresAt: time.Now().Add(time.Hour)}
	if keepLogin {
		pair.RefreshToken = "refresh-token"
	}
	return pair, nil
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	s.lastRefreshToken = refreshToken
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return &auth.TokenPair{
		AccessToken:     "rotated-access",
		RefreshToken:    "rotated-refresh",
		AccessExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (s *stubAuthService) Logout(ctx context.Context, refreshToken string) error {
	s.lastLogoutToken = refreshToken
	return s.logoutErr
}

func newTestRouter(svc *stubAuthService) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/auth", NewHandler(svc, nil).Routes)
	return r
}

func TestLogin_ReturnsTokenPair(t *testing.T) {
	svc := &stubAuthService{}
	router := newTestRouter(svc)

	body := `{"shortcode":"alice","password":"pass1234","keep_login":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AccessToken != "access-token" || resp.RefreshToken != "refresh-token" {
		t.Errorf("tokens = %q / %q", resp.AccessToken, resp.RefreshToken)
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("token_type = %q", resp.TokenType)
	}
	if !svc.keepLogin {
		t.Error("keep_login not passed through")
	}
}

func TestLogin_OmitsRefreshTokenForShortSession(t *testing.T) {
	router := newTestRouter(&stubAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"shortcode":"alice","password":"pass1234"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "refresh_token") {
		t.Errorf("refresh_token present in short-session response: %s", rec.Body.String())
	}
}

func TestLogin_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"missing credentials", auth.ErrMissingCredentials, http.StatusBadRequest},
		{"wrong credentials", auth.ErrWrongCredentials, http.StatusUnauthorized},
		{"invalid token", auth.ErrInvalidToken, http.StatusBadRequest},
		{"token creation", auth.ErrTokenCreation, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&stubAuthService{loginErr: tc.err})
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
				strings.NewReader(`{"shortcode":"alice","password":"x"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var resp map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp["error"] == "" {
				t.Error("error envelope missing")
			}
		})
	}
}

func TestLogin_MalformedBody(t *testing.T) {
	router := newTestRouter(&stubAuthService{})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRefresh_PassesBearerToken(t *testing.T) {
	svc := &stubAuthService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer the-refresh-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.lastRefreshToken != "the-refresh-token" {
		t.Errorf("token passed = %q", svc.lastRefreshToken)
	}
}

func TestRefresh_MissingOrMalformedHeader(t *testing.T) {
	for _, header := range []string{"", "Bearer", "Basic abc", "the-token"} {
		router := newTestRouter(&stubAuthService{})
		req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("header %q: status = %d, want 400", header, rec.Code)
		}
	}
}

func TestLogout_NoContent(t *testing.T) {
	svc := &stubAuthService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer the-refresh-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if svc.lastLogoutToken != "the-refresh-token" {
		t.Errorf("token passed = %q", svc.lastLogoutToken)
	}
}
