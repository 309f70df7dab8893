package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestVerifyRoundTrip(t *testing.T) {
	v := NewJWTVerifier(testSecret, "hsk", "hostel-app")
	token, err := v.Mint("uid-1", "Asha", time.Hour)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	id, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.UID != "uid-1" || id.Name != "Asha" {
		t.Errorf("identity = %+v", id)
	}
}

func TestVerifyRejects(t *testing.T) {
	v := NewJWTVerifier(testSecret, "hsk", "")

	expired, _ := v.Mint("uid-1", "", -time.Minute)
	otherKey, _ := NewJWTVerifier("another-secret-another-secret-xx", "hsk", "").Mint("uid-1", "", time.Hour)
	wrongIssuer, _ := NewJWTVerifier(testSecret, "someone-else", "").Mint("uid-1", "", time.Hour)
	noSubject, _ := v.Mint("", "", time.Hour)
	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "uid-1",
		Issuer:    "hsk",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMissingToken},
		{"garbage", "not-a-jwt", ErrInvalidToken},
		{"expired", expired, ErrInvalidToken},
		{"wrong key", otherKey, ErrInvalidToken},
		{"wrong issuer", wrongIssuer, ErrInvalidToken},
		{"no subject", noSubject, ErrInvalidToken},
		{"wrong algorithm", hs512, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tt.token)
			if !errors.Is(err, tt.want) {
				t.Errorf("Verify() error = %v, want %v", err, tt.want)
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
		{"Bearer abc.def.ghi", "abc.def.ghi", false},
		{"Bearer   ", "", true},
		{"Basic dXNlcjpwYXNz", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := BearerToken(tt.header)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("BearerToken(%q) = %q, %v", tt.header, got, err)
		}
	}
}

func TestContextIdentity(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Fatal("expected nil identity on empty context")
	}
	ctx := WithIdentity(context.Background(), &Identity{UID: "u"})
	if got := FromContext(ctx); got == nil || got.UID != "u" {
		t.Errorf("FromContext = %+v", got)
	}
}
