package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xiaoying/sales-assistant/internal/core/domain"
)

type stubRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]time.Time)}
}

func (r *stubRevoker) Revoke(_ context.Context, id string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[id] = until
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.revoked[id]
	return ok, nil
}

func newTestAuthService(t *testing.T, revoker *stubRevoker) *AuthService {
	t.Helper()
	var svc *AuthService
	var err error
	if revoker == nil {
		svc, err = NewAuthService("admin", "123456", "secret", 24*time.Hour, nil, discardLogger)
	} else {
		svc, err = NewAuthService("admin", "123456", "secret", 24*time.Hour, revoker, discardLogger)
	}
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc
}

func TestAuthService_New_RequiresSecret(t *testing.T) {
	if _, err := NewAuthService("admin", "123456", "", time.Hour, nil, discardLogger); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc := newTestAuthService(t, nil)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	issued, err := svc.Login(context.Background(), "admin", "123456")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if issued.Token == "" {
		t.Fatalf("expected token, got empty")
	}
	if !issued.ExpiresAt.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("unexpected expiry: %v", issued.ExpiresAt)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(issued.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != "admin" {
		t.Fatalf("expected sub admin, got %v", claims["sub"])
	}
	if claims["jti"] == nil || claims["iat"] == nil || claims["exp"] == nil {
		t.Fatalf("missing registered claims: %+v", claims)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc := newTestAuthService(t, nil)

	cases := [][2]string{
		{"admin", "wrong"},
		{"root", "123456"},
		{"", ""},
		{"Admin", "123456"},
	}
	for _, tc := range cases {
		_, err := svc.Login(context.Background(), tc[0], tc[1])
		if err != domain.ErrInvalidCredentials {
			t.Fatalf("%v: expected ErrInvalidCredentials, got %v", tc, err)
		}
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("%v: expected error to match ErrUnauthorized", tc)
		}
	}
}

func TestAuthService_Verify_RoundTrip(t *testing.T) {
	svc := newTestAuthService(t, nil)

	issued, err := svc.Login(context.Background(), "admin", "123456")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	claims, err := svc.Verify(context.Background(), issued.Token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Subject != "admin" {
		t.Fatalf("expected subject admin, got %q", claims.Subject)
	}
	if claims.TokenID == "" {
		t.Fatalf("expected token id")
	}
}

func TestAuthService_Verify_Missing(t *testing.T) {
	svc := newTestAuthService(t, nil)

	if _, err := svc.Verify(context.Background(), "  "); err != domain.ErrTokenMissing {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
}

func TestAuthService_Verify_Expired(t *testing.T) {
	svc := newTestAuthService(t, nil)
	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }

	issued, err := svc.Login(context.Background(), "admin", "123456")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(25 * time.Hour) }
	if _, err := svc.Verify(context.Background(), issued.Token); err != domain.ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthService_Verify_ManuallyExpiredToken(t *testing.T) {
	svc := newTestAuthService(t, nil)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"iat": time.Now().Add(-48 * time.Hour).Unix(),
		"exp": time.Now().Add(-24 * time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.Verify(context.Background(), signed); err != domain.ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthService_Verify_Invalid(t *testing.T) {
	svc := newTestAuthService(t, nil)
	exp := time.Now().Add(time.Hour).Unix()

	wrongKey, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin", "exp": exp}).
		SignedString([]byte("other-secret"))
	wrongAlg, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "admin", "exp": exp}).
		SignedString([]byte("secret"))
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin"}).
		SignedString([]byte("secret"))

	for name, tok := range map[string]string{
		"malformed":  "not-a-token",
		"wrong key":  wrongKey,
		"wrong alg":  wrongAlg,
		"no expiry":  noExp,
		"truncated":  wrongKey[:len(wrongKey)-4],
		"three dots": "a.b.c",
	} {
		if _, err := svc.Verify(context.Background(), tok); err != domain.ErrTokenInvalid {
			t.Fatalf("%s: expected ErrTokenInvalid, got %v", name, err)
		}
	}
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	revoker := newStubRevoker()
	svc := newTestAuthService(t, revoker)
	ctx := context.Background()

	issued, _ := svc.Login(ctx, "admin", "123456")
	claims, err := svc.Verify(ctx, issued.Token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if until := revoker.revoked[claims.TokenID]; !until.Equal(claims.ExpiresAt) {
		t.Fatalf("expected revocation until %v, got %v", claims.ExpiresAt, until)
	}
	if _, err := svc.Verify(ctx, issued.Token); err != domain.ErrTokenRevoked {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}

	// Other tokens stay valid.
	other, _ := svc.Login(ctx, "admin", "123456")
	if _, err := svc.Verify(ctx, other.Token); err != nil {
		t.Fatalf("expected fresh token to verify, got %v", err)
	}
}

func TestAuthService_Verify_RevokerErrorFailsOpen(t *testing.T) {
	revoker := newStubRevoker()
	revoker.err = errors.New("redis down")
	svc := newTestAuthService(t, revoker)

	issued, _ := svc.Login(context.Background(), "admin", "123456")
	if _, err := svc.Verify(context.Background(), issued.Token); err != nil {
		t.Fatalf("expected token accepted when revoker fails, got %v", err)
	}
}

func TestAuthService_Logout_WithoutRevokerIsNoop(t *testing.T) {
	svc := newTestAuthService(t, nil)
	if err := svc.Logout(context.Background(), &domain.Claims{TokenID: "x"}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
