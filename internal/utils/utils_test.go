package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("1234", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "1234") {
		t.Fatalf("VerifyPassword rejected the right password")
	}
	if VerifyPassword(hash, "4321") {
		t.Fatalf("VerifyPassword accepted a wrong password")
	}
	// same hash under the $2y$ name
	php := "$2y$" + hash[len("$2a$"):]
	if !VerifyPassword(php, "1234") {
		t.Fatalf("VerifyPassword rejected a $2y$ hash")
	}
}

func TestNewAccessToken(t *testing.T) {
	tok, err := NewAccessToken("secret", TokenClaims{
		Issuer: "canteen-api", Audience: "canteen", Subject: "0042", Nickname: "S1", Scopes: []string{"read:users"},
	}, 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tok.Token, claims, func(*jwt.Token) (any, error) { return []byte("secret"), nil },
		jwt.WithValidMethods([]string{"HS256"}), jwt.WithAudience("canteen"), jwt.WithIssuer("canteen-api"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims["sub"] != "0042" || claims["nickname"] != "S1" || claims["scope"] != "read:users" {
		t.Fatalf("claims = %v", claims)
	}
	if tok.Exp.IsZero() {
		t.Fatalf("expiry not set")
	}
}
