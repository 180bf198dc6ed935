package middleware

import (
	"context"
	"errors"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

var (
	errHMACDisabled = errors.New("HMAC signed tokens are not accepted")
	errNoKeySet     = errors.New("no identity provider key set configured")
)

// RemoteKeyfunc fetches the identity provider's JWKS from url and keeps
// it refreshed in the background until ctx is cancelled.  Keys are picked
// by the token's "kid" header.
func RemoteKeyfunc(ctx context.Context, url string) (jwt.Keyfunc, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{url})
	if err != nil {
		return nil, err
	}
	return k.Keyfunc, nil
}

// CompositeKeyfunc serves HMAC tokens from secret and every other
// algorithm from remote.  Either side may be disabled (empty secret, nil
// remote); such tokens are then rejected.
func CompositeKeyfunc(secret string, remote jwt.Keyfunc) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); ok {
			if secret == "" {
				return nil, errHMACDisabled
			}
			return []byte(secret), nil
		}
		if remote == nil {
			return nil, errNoKeySet
		}
		return remote(t)
	}
}
