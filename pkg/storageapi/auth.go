// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package storageapi

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// Authenticator injects credentials into a request before it is sent
type Authenticator interface {
	Apply(ctx context.Context, req *Request) error
}

// AuthFunc adapts a function to Authenticator
type AuthFunc func(ctx context.Context, req *Request) error

func (f AuthFunc) Apply(ctx context.Context, req *Request) error {
	return f(ctx, req)
}

// APIKeyAuth sends the key in the X-API-Key header
type APIKeyAuth struct {
	Key string
}

func (a *APIKeyAuth) Apply(_ context.Context, req *Request) error {
	if a.Key == "" {
		return nil
	}
	req.SetHeaderParam(HeaderAPIKey, a.Key)
	return nil
}

// BearerAuth sends a static token as Authorization: Bearer
type BearerAuth struct {
	Token string
}

func (a *BearerAuth) Apply(_ context.Context, req *Request) error {
	if a.Token == "" {
		return nil
	}
	req.SetHeaderParam("Authorization", "Bearer "+a.Token)
	return nil
}

// OAuth2Auth fetches a token from Source for every request. Wrap the source in
// oauth2.ReuseTokenSource to cache it.
type OAuth2Auth struct {
	Source oauth2.TokenSource
}

func (a *OAuth2Auth) Apply(_ context.Context, req *Request) error {
	if a.Source == nil {
		return errors.New("oauth2 auth: nil token source")
	}
	tok, err := a.Source.Token()
	if err != nil {
		return fmt.Errorf("oauth2 auth: %w", err)
	}
	req.SetHeaderParam("Authorization", tok.Type()+" "+tok.AccessToken)
	return nil
}

// AuthMethods are applied in order: APIKey, then Default. Nil entries are skipped.
type AuthMethods struct {
	APIKey  Authenticator
	Default Authenticator
}

func (m AuthMethods) apply(ctx context.Context, req *Request, override Authenticator) error {
	if m.APIKey != nil {
		if err := m.APIKey.Apply(ctx, req); err != nil {
			return fmt.Errorf("apply api key auth: %w", err)
		}
	}
	def := m.Default
	if override != nil {
		def = override
	}
	if def != nil {
		if err := def.Apply(ctx, req); err != nil {
			return fmt.Errorf("apply default auth: %w", err)
		}
	}
	return nil
}
