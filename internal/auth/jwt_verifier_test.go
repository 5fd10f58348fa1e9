package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"oaresponse/internal/domain"
	"oaresponse/internal/domain/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func claimsFor(sub, role string, exp time.Time) *models.SupabaseClaims {
	return &models.SupabaseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		Role:  role,
		Email: "attorney@example.com",
	}
}

func TestSupabaseJWTVerifier_VerifyToken(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate ec key: %v", err)
	}

	keyfunc := func(token *jwt.Token) (any, error) {
		switch token.Method.Alg() {
		case "RS256":
			return &rsaKey.PublicKey, nil
		case "ES256":
			return &ecKey.PublicKey, nil
		default:
			// HS256 confusion attempt: hand back bytes the attacker knows
			return []byte("public-key-bytes"), nil
		}
	}
	verifier := NewStaticJWTVerifier(keyfunc, testLogger())

	sign := func(method jwt.SigningMethod, key any, claims *models.SupabaseClaims) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}

	future := time.Now().Add(time.Hour)
	tests := []struct {
		name    string
		token   string
		wantSub string
	}{
		{
			name:    "RS256 authenticated",
			token:   sign(jwt.SigningMethodRS256, rsaKey, claimsFor("user-1", "authenticated", future)),
			wantSub: "user-1",
		},
		{
			name:    "ES256 authenticated",
			token:   sign(jwt.SigningMethodES256, ecKey, claimsFor("user-2", "authenticated", future)),
			wantSub: "user-2",
		},
		{
			name:  "HS256 rejected",
			token: sign(jwt.SigningMethodHS256, []byte("public-key-bytes"), claimsFor("user-3", "authenticated", future)),
		},
		{
			name:  "anon role rejected",
			token: sign(jwt.SigningMethodRS256, rsaKey, claimsFor("user-4", "anon", future)),
		},
		{
			name:  "expired token rejected",
			token: sign(jwt.SigningMethodRS256, rsaKey, claimsFor("user-5", "authenticated", time.Now().Add(-time.Hour))),
		},
		{
			name:  "missing subject rejected",
			token: sign(jwt.SigningMethodRS256, rsaKey, claimsFor("", "authenticated", future)),
		},
		{
			name:  "garbage rejected",
			token: "not-a-jwt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.VerifyToken(tt.token)
			if tt.wantSub == "" {
				if !errors.Is(err, domain.ErrUnauthorized) {
					t.Fatalf("expected ErrUnauthorized, got claims=%v err=%v", claims, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := claims.GetUserID(); got != tt.wantSub {
				t.Errorf("user id = %q, want %q", got, tt.wantSub)
			}
		})
	}
}
