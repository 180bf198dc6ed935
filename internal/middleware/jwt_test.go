package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

func signHS(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss": "canteen-api",
		"aud": "canteen",
		"sub": "0042",
		"exp": time.Now().Add(time.Minute).Unix(),
	}
}

// serve runs one request through JWTAuth (and extra) and returns the recorder.
func serve(t *testing.T, v *Verifier, header string, extra ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	mws := append([]echo.MiddlewareFunc{JWTAuth(v)}, extra...)
	e.GET("/private", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"sub": Subject(c), "scopes": c.Get(CtxScopes)})
	}, mws...)
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func localVerifier() *Verifier {
	return NewVerifier(CompositeKeyfunc(testSecret, nil), []string{"HS256"}, "canteen", Issuers{Local: "canteen-api"})
}

func TestJWTAuthMissingToken(t *testing.T) {
	for _, h := range []string{"", "Basic abc", "Bearer "} {
		rec := serve(t, localVerifier(), h)
		if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "Requires authentication") {
			t.Fatalf("header %q: got %d %s", h, rec.Code, rec.Body)
		}
	}
}

func TestJWTAuthRejectsBadTokens(t *testing.T) {
	expired := baseClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	wrongAud := baseClaims()
	wrongAud["aud"] = "someone-else"
	wrongIss := baseClaims()
	wrongIss["iss"] = "evil"
	noExp := baseClaims()
	delete(noExp, "exp")

	cases := map[string]string{
		"garbage":   "not.a.jwt",
		"expired":   signHS(t, expired),
		"audience":  signHS(t, wrongAud),
		"issuer":    signHS(t, wrongIss),
		"no expiry": signHS(t, noExp),
	}
	for name, tok := range cases {
		rec := serve(t, localVerifier(), "Bearer "+tok)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s: got %d %s", name, rec.Code, rec.Body)
		}
	}
}

func TestJWTAuthAcceptsLocalToken(t *testing.T) {
	claims := baseClaims()
	claims["scope"] = "read:users delete:meals"
	rec := serve(t, localVerifier(), "Bearer "+signHS(t, claims), RequireScope("read:users"))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"sub":"0042"`) {
		t.Fatalf("subject not exposed: %s", rec.Body)
	}
}

func TestRequireScope(t *testing.T) {
	claims := baseClaims()
	claims["permissions"] = []string{"read:users"}
	tok := "Bearer " + signHS(t, claims)

	if rec := serve(t, localVerifier(), tok, RequireScope("read:users")); rec.Code != http.StatusOK {
		t.Fatalf("permissions claim not honoured: %d %s", rec.Code, rec.Body)
	}
	rec := serve(t, localVerifier(), tok, RequireScope("read:users", "delete:meals"))
	if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), "delete:meals") {
		t.Fatalf("missing scope: got %d %s", rec.Code, rec.Body)
	}
	if rec := serve(t, localVerifier(), tok, RequireScope()); rec.Code != http.StatusOK {
		t.Fatalf("empty scope list should pass: %d", rec.Code)
	}
}

func TestCompositeKeyfuncRSA(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	remote := func(*jwt.Token) (any, error) { return &key.PublicKey, nil }
	v := NewVerifier(CompositeKeyfunc("", remote), []string{"RS256"}, "canteen", Issuers{Remote: "https://tenant.example.com/"})

	claims := baseClaims()
	claims["iss"] = "https://tenant.example.com/"
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	if rec := serve(t, v, "Bearer "+tok); rec.Code != http.StatusOK {
		t.Fatalf("RS256 token rejected: %d %s", rec.Code, rec.Body)
	}

	// HS256 is not in the allowed methods and no secret is configured
	if rec := serve(t, v, "Bearer "+signHS(t, claims)); rec.Code != http.StatusForbidden {
		t.Fatalf("HS256 token accepted by RS256-only verifier: %d", rec.Code)
	}
}

func TestSubjectDefaultsToGuest(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if got := Subject(c); got != "guest" {
		t.Fatalf("Subject = %q", got)
	}
}

func TestJWTAuthRejectsForeignKeys(t *testing.T) {
	// HS256 signed with another secret
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, baseClaims()).SignedString([]byte("another-secret"))
	if err != nil {
		t.Fatal(err)
	}
	if rec := serve(t, localVerifier(), "Bearer "+foreign); rec.Code != http.StatusForbidden {
		t.Fatalf("HS256 with foreign secret: got %d %s", rec.Code, rec.Body)
	}

	// RS256 signed by a key the provider never published
	published, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	unrelated, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	remote := func(*jwt.Token) (any, error) { return &published.PublicKey, nil }
	v := NewVerifier(CompositeKeyfunc("", remote), []string{"RS256"}, "canteen", Issuers{Remote: "https://tenant.example.com/"})
	claims := baseClaims()
	claims["iss"] = "https://tenant.example.com/"
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(unrelated)
	if err != nil {
		t.Fatal(err)
	}
	rec := serve(t, v, "Bearer "+tok)
	if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), "signature is invalid") {
		t.Fatalf("RS256 with unrelated key: got %d %s", rec.Code, rec.Body)
	}
}

func TestIssuerTiedToKeySource(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	remote := func(*jwt.Token) (any, error) { return &key.PublicKey, nil }
	v := NewVerifier(CompositeKeyfunc(testSecret, remote), []string{"RS256", "HS256"}, "canteen",
		Issuers{Local: "canteen-api", Remote: "https://tenant.example.com/"})

	// a locally signed token claiming to come from the identity provider
	spoofed := baseClaims()
	spoofed["iss"] = "https://tenant.example.com/"
	if rec := serve(t, v, "Bearer "+signHS(t, spoofed)); rec.Code != http.StatusForbidden {
		t.Fatalf("HS256 token with IdP issuer: got %d %s", rec.Code, rec.Body)
	}

	// a provider token claiming the local issuer
	local := baseClaims()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, local).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	if rec := serve(t, v, "Bearer "+tok); rec.Code != http.StatusForbidden {
		t.Fatalf("RS256 token with local issuer: got %d %s", rec.Code, rec.Body)
	}

	if rec := serve(t, v, "Bearer "+signHS(t, baseClaims())); rec.Code != http.StatusOK {
		t.Fatalf("genuine local token: got %d %s", rec.Code, rec.Body)
	}
	remoteClaims := baseClaims()
	remoteClaims["iss"] = "https://tenant.example.com/"
	tok, err = jwt.NewWithClaims(jwt.SigningMethodRS256, remoteClaims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	if rec := serve(t, v, "Bearer "+tok); rec.Code != http.StatusOK {
		t.Fatalf("genuine provider token: got %d %s", rec.Code, rec.Body)
	}
}
