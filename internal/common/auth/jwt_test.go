package auth

import (
	"testing"
	"time"

	"github.com/FleetLink/FleetLink/internal/common/config"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAccessToken(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "fleetlink",
		Audience:  "fleetlink",
	}

	token, exp, err := GenerateAccessToken(cfg, "u-1", []string{"user"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if exp.Before(time.Now()) {
		t.Fatalf("expected exp in future")
	}

	claims := &struct {
		Roles []string `json:"roles"`
		jwt.RegisteredClaims
	}{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || parsed == nil || !parsed.Valid {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "u-1" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "user" {
		t.Fatalf("roles mismatch: %#v", claims.Roles)
	}
}

func TestParseAccessTokenRoundTrip(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "fleetlink",
		Audience:  "fleetlink",
	}

	token, _, err := GenerateAccessToken(cfg, "u-7", []string{"admin", "driver"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != "u-7" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "admin" {
		t.Fatalf("roles mismatch: %#v", claims.Roles)
	}
}

func TestParseAccessTokenRejectsBadSecret(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "test-secret", Issuer: "fleetlink", Audience: "fleetlink"}
	token, _, err := GenerateAccessToken(cfg, "u-1", nil, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	bad := cfg
	bad.JWTSecret = "other-secret"
	if _, err := ParseAccessToken(bad, token); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "test-secret", Issuer: "fleetlink", Audience: "fleetlink"}
	token, _, err := GenerateAccessToken(cfg, "u-1", nil, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatalf("expected issuer error")
	}
}

func TestParseAccessTokenRejectsEmpty(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "test-secret"}
	if _, err := ParseAccessToken(cfg, "   "); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
