package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify(t *testing.T) {
	g := NewGateway([]byte("secret"), 30*time.Minute)

	token, expires, err := g.IssueToken(Identity{Username: "admin", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("IssueToken() error: %v", err)
	}
	if d := time.Until(expires); d < 29*time.Minute || d > 31*time.Minute {
		t.Errorf("expires in %v, want about 30m", d)
	}

	id, err := g.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if id.Username != "admin" || id.Role != RoleAdmin {
		t.Errorf("Verify() = %+v", id)
	}
}

func TestIssueToken_UniqueIDs(t *testing.T) {
	g := NewGateway([]byte("secret"), time.Minute)
	a, _, err := g.IssueToken(Identity{Username: "admin", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("IssueToken() error: %v", err)
	}
	b, _, err := g.IssueToken(Identity{Username: "admin", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("IssueToken() error: %v", err)
	}
	if a == b {
		t.Error("two tokens issued in the same second are identical")
	}
}

func TestVerify_Expired(t *testing.T) {
	g := NewGateway([]byte("secret"), time.Minute)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return issued }

	token, _, err := g.IssueToken(Identity{Username: "admin", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("IssueToken() error: %v", err)
	}

	g.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := g.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerify_Rejects(t *testing.T) {
	g := NewGateway([]byte("secret"), time.Minute)
	valid, _, err := g.IssueToken(Identity{Username: "admin", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("IssueToken() error: %v", err)
	}

	other := NewGateway([]byte("other-secret"), time.Minute)
	foreign, _, err := other.IssueToken(Identity{Username: "admin", Role: RoleAdmin})
	if err != nil {
		t.Fatalf("IssueToken() error: %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"iss": issuer, "sub": "admin", "role": RoleAdmin,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing none token: %v", err)
	}

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "someone-else", "sub": "admin", "role": RoleAdmin,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": issuer, "sub": "admin", "role": RoleAdmin,
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "tampered payload", token: tamper(valid, wrongIssuer)},
		{name: "wrong secret", token: foreign},
		{name: "alg none", token: unsigned},
		{name: "wrong issuer", token: wrongIssuer},
		{name: "no expiry", token: noExpiry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.Verify(tt.token); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("expected ErrTokenInvalid, got %v", err)
			}
		})
	}
}

// tamper returns token with its payload replaced by the payload of donor.
func tamper(token, donor string) string {
	t := strings.Split(token, ".")
	d := strings.Split(donor, ".")
	return t[0] + "." + d[1] + "." + t[2]
}
