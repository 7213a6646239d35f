package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testIssuer = "fittrack.identity"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":    "athlete-1",
		"iss":    testIssuer,
		"exp":    time.Now().Add(time.Hour).Unix(),
		"scopes": []string{ScopeFitnessRead, ScopeFitnessWrite},
	}
}

func TestParseValidToken(t *testing.T) {
	cfg := Config{Secret: "test-secret", Issuer: testIssuer}
	token := signToken(t, cfg.Secret, baseClaims())

	claims, err := Parse(token, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "athlete-1" {
		t.Fatalf("unexpected subject: %q", claims.Subject)
	}
	if !claims.HasScope(ScopeFitnessRead) || !claims.HasScope(ScopeFitnessWrite) {
		t.Fatalf("scopes not carried over: %v", claims.Scopes)
	}
}

func TestParseScopesAsSpaceSeparatedString(t *testing.T) {
	cfg := Config{Secret: "test-secret", Issuer: testIssuer}
	mapClaims := baseClaims()
	mapClaims["scopes"] = "fitness:read fitness:write"
	token := signToken(t, cfg.Secret, mapClaims)

	claims, err := Parse(token, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !claims.HasScope(ScopeFitnessWrite) {
		t.Fatalf("scope missing: %v", claims.Scopes)
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	cfg := Config{Secret: "test-secret", Issuer: testIssuer}

	cases := map[string]string{}

	wrongSecret := signToken(t, "other-secret", baseClaims())
	cases["wrong secret"] = wrongSecret

	wrongIssuer := baseClaims()
	wrongIssuer["iss"] = "someone-else"
	cases["wrong issuer"] = signToken(t, cfg.Secret, wrongIssuer)

	expired := baseClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	cases["expired"] = signToken(t, cfg.Secret, expired)

	noSubject := baseClaims()
	delete(noSubject, "sub")
	cases["missing subject"] = signToken(t, cfg.Secret, noSubject)

	for name, token := range cases {
		if _, err := Parse(token, cfg); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestParseEmptyToken(t *testing.T) {
	if _, err := Parse("  ", Config{Secret: "x", Issuer: testIssuer}); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestMiddlewareAttachesClaims(t *testing.T) {
	cfg := Config{Secret: "test-secret", Issuer: testIssuer}
	token := signToken(t, cfg.Secret, baseClaims())

	var seen *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := NewMiddleware(cfg).Wrap(next)

	req := httptest.NewRequest(http.MethodGet, "/v1/goals", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if seen == nil || seen.Subject != "athlete-1" {
		t.Fatalf("claims not attached: %+v", seen)
	}
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	handler := NewMiddleware(Config{Secret: "x", Issuer: testIssuer}).Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run without a token")
		}))

	req := httptest.NewRequest(http.MethodGet, "/v1/goals", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestMiddlewareSkipsHealthAndMetrics(t *testing.T) {
	handler := NewMiddleware(Config{Secret: "x", Issuer: testIssuer}).Wrap(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	for _, path := range []string{"/healthz", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200 got %d", path, rr.Code)
		}
	}
}
