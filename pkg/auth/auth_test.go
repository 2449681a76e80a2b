package auth_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/JaimeStill/quire/pkg/auth"
)

const secret = "0123456789abcdef0123456789abcdef"

func mint(t *testing.T, key string, claims auth.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func claimsFor(sub, role string, ttl time.Duration) auth.Claims {
	return auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "quire-identity",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Email: "ada@example.com",
		Role:  role,
	}
}

func newVerifier() *auth.Verifier {
	return auth.NewVerifier(&auth.Config{Secret: secret, Issuer: "quire-identity"})
}

func TestConfigFinalize(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		t.Setenv("TEST_AUTH_SECRET", secret)
		cfg := auth.Config{}
		if err := cfg.Finalize(&auth.Env{Secret: "TEST_AUTH_SECRET"}); err != nil {
			t.Fatalf("finalize failed: %v", err)
		}
		if cfg.Secret != secret {
			t.Errorf("Secret = %q", cfg.Secret)
		}
	})

	t.Run("missing secret", func(t *testing.T) {
		cfg := auth.Config{}
		if err := cfg.Finalize(nil); err == nil {
			t.Fatal("expected error for missing secret")
		}
	})

	t.Run("short secret", func(t *testing.T) {
		cfg := auth.Config{Secret: "short"}
		if err := cfg.Finalize(nil); err == nil {
			t.Fatal("expected error for short secret")
		}
	})
}

func TestVerify(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr bool
	}{
		{"valid", func(t *testing.T) string { return mint(t, secret, claimsFor(id.String(), "admin", time.Hour)) }, false},
		{"expired", func(t *testing.T) string { return mint(t, secret, claimsFor(id.String(), "admin", -time.Hour)) }, true},
		{"wrong key", func(t *testing.T) string {
			return mint(t, "ffffffffffffffffffffffffffffffff", claimsFor(id.String(), "admin", time.Hour))
		}, true},
		{"non uuid subject", func(t *testing.T) string { return mint(t, secret, claimsFor("bob", "admin", time.Hour)) }, true},
		{"wrong issuer", func(t *testing.T) string {
			c := claimsFor(id.String(), "admin", time.Hour)
			c.Issuer = "someone-else"
			return mint(t, secret, c)
		}, true},
		{"garbage", func(t *testing.T) string { return "not.a.token" }, true},
	}

	v := newVerifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := v.Verify(tt.token(t))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if auth.MapHTTPStatus(err) != http.StatusUnauthorized {
					t.Errorf("status = %d, want 401", auth.MapHTTPStatus(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			got, _ := claims.UserID()
			if got != id {
				t.Errorf("UserID = %v, want %v", got, id)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"bearer  abc ", "abc", false},
		{"", "", true},
		{"Basic abc", "", true},
		{"Bearer", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := auth.BearerToken(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGuard(t *testing.T) {
	guard := auth.NewGuard(newVerifier(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	id := uuid.New()

	var seen *auth.Claims
	next := func(w http.ResponseWriter, r *http.Request) {
		seen = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		header     string
		wantStatus int
	}{
		{"protect without token", guard.Protect(next), "", http.StatusUnauthorized},
		{"protect bad token", guard.Protect(next), "Bearer nope", http.StatusUnauthorized},
		{"protect user token", guard.Protect(next), "Bearer " + mint(t, secret, claimsFor(id.String(), "user", time.Hour)), http.StatusNoContent},
		{"admin with user token", guard.Admin(next), "Bearer " + mint(t, secret, claimsFor(id.String(), "user", time.Hour)), http.StatusForbidden},
		{"admin with admin token", guard.Admin(next), "Bearer " + mint(t, secret, claimsFor(id.String(), "admin", time.Hour)), http.StatusNoContent},
		{"admin without token", guard.Admin(next), "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodPost, "/publications", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			tt.handler(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusNoContent {
				if seen == nil || seen.Subject != id.String() {
					t.Errorf("claims not propagated: %+v", seen)
				}
				return
			}

			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body["success"] != false {
				t.Errorf("success = %v, want false", body["success"])
			}
			msg, _ := body["message"].(string)
			if !strings.Contains(msg, "Not authorized") && !strings.Contains(msg, "not authorized") {
				t.Errorf("message = %q", msg)
			}
		})
	}
}
