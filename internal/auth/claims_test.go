package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-jwt-signing"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("svc-rules", RoleAutomation, testSecret, time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "svc-rules" || claims.Role != RoleAutomation {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ID == "" {
		t.Error("JTI should not be empty")
	}
	if ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time); ttl != time.Minute {
		t.Errorf("ttl = %v, want 1m", ttl)
	}
}

func TestGenerateToken_Errors(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		role    Role
		secret  string
		wantErr error
	}{
		{"empty secret", "u", RoleAdmin, "", ErrNoSecret},
		{"empty subject", "", RoleAdmin, testSecret, ErrTokenInvalid},
		{"unknown role", "u", Role("owner"), testSecret, ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := GenerateToken(tt.subject, tt.role, tt.secret, 0); !errors.Is(err, tt.wantErr) {
				t.Errorf("GenerateToken() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateToken_DefaultTTL(t *testing.T) {
	token, err := GenerateToken("u", RoleOperator, testSecret, 0)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time); ttl != defaultTokenTTL {
		t.Errorf("ttl = %v, want %v", ttl, defaultTokenTTL)
	}
}

func signRaw(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	return s
}

func TestParseToken_Rejects(t *testing.T) {
	now := time.Now()
	valid := jwt.RegisteredClaims{
		Subject:   "u",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}
	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	noExpiry := valid
	noExpiry.ExpiresAt = nil
	noSubject := valid
	noSubject.Subject = ""

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"garbage", "not-a-jwt", ErrTokenInvalid},
		{"wrong secret", signRaw(t, jwt.SigningMethodHS256, []byte("other"), Claims{valid, RoleAdmin}), ErrTokenInvalid},
		{"wrong algorithm", signRaw(t, jwt.SigningMethodHS512, []byte(testSecret), Claims{valid, RoleAdmin}), ErrTokenInvalid},
		{"expired", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{expired, RoleAdmin}), ErrTokenExpired},
		{"no expiry", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{noExpiry, RoleAdmin}), ErrTokenInvalid},
		{"no subject", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{noSubject, RoleAdmin}), ErrTokenInvalid},
		{"unknown role", signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), Claims{valid, "owner"}), ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.token, testSecret); !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseToken() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := ParseToken("x", ""); !errors.Is(err, ErrNoSecret) {
		t.Errorf("ParseToken() with empty secret error = %v", err)
	}
}
