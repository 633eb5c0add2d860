// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package authn resolves the caller identity the core treats as an
// opaque (user_id, role) pair, per spec.md's "HTTP routing,
// authentication middleware ... CRUD" being out of scope: this package
// is the narrow sliver the core does need — turning a bearer token into
// that identity — grounded on the teacher's pkg/auth JWKS validator,
// trimmed to drop the a2a/grpc interceptor surface this service has no
// use for.
package authn

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Identity is the caller identity the notebook/turn handlers key their
// per-request ToolRegistry and NotebookStore calls on.
type Identity struct {
	UserID string
	Role   string
}

type identityKey struct{}

// WithIdentity returns a context carrying id, retrievable with FromContext.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the Identity stashed by WithIdentity, or the zero
// value and false if none is present (e.g. auth is disabled).
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// Validator verifies bearer tokens against a provider's published JWKS,
// auto-refreshing the key set in the background so key rotation never
// requires a restart.
type Validator struct {
	jwksURL  string
	cache    *jwk.Cache
	issuer   string
	audience string
}

// NewValidator fetches jwksURL once to fail fast on misconfiguration,
// then registers it for 15-minute background refresh.
func NewValidator(ctx context.Context, jwksURL, issuer, audience string) (*Validator, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, fmt.Errorf("register jwks url: %w", err)
	}
	if _, err := cache.Refresh(ctx, jwksURL); err != nil {
		return nil, fmt.Errorf("fetch jwks from %s: %w", jwksURL, err)
	}
	return &Validator{jwksURL: jwksURL, cache: cache, issuer: issuer, audience: audience}, nil
}

// Validate verifies tokenString's signature, issuer, audience, and
// expiry, returning the caller Identity it carries.
func (v *Validator) Validate(ctx context.Context, tokenString string) (Identity, error) {
	keyset, err := v.cache.Get(ctx, v.jwksURL)
	if err != nil {
		return Identity{}, fmt.Errorf("load jwks: %w", err)
	}

	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKeySet(keyset),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid token: %w", err)
	}

	id := Identity{UserID: token.Subject()}
	if role, ok := token.Get("role"); ok {
		if roleStr, ok := role.(string); ok {
			id.Role = roleStr
		}
	}
	return id, nil
}

// Middleware extracts a bearer token from the Authorization header,
// validates it, and injects the resulting Identity into the request
// context. Requests without a bearer token, or whose token fails
// validation, get a 401 — callers that want to run unauthenticated
// (e.g. local development) should not install this middleware at all,
// per the teacher's pattern of auth being opt-in per deployment.
func (v *Validator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		id, err := v.Validate(r.Context(), token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}
