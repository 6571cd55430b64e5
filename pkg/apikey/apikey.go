// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package apikey reads the JWT the storage service accepts as an API key.
// The service verifies keys itself; Inspect only decodes them so the client
// can report who it is and when the key expires.
package apikey

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PermissionLevel is the access an employee key grants
type PermissionLevel int

const (
	PermissionRead  PermissionLevel = 1
	PermissionWrite PermissionLevel = 2
	PermissionAdmin PermissionLevel = 3
)

func (p PermissionLevel) String() string {
	switch p {
	case PermissionRead:
		return "READ"
	case PermissionWrite:
		return "WRITE"
	case PermissionAdmin:
		return "ADMIN"
	}
	return fmt.Sprintf("PermissionLevel(%d)", int(p))
}

func (p PermissionLevel) IsValid() bool {
	return p >= PermissionRead && p <= PermissionAdmin
}

// CanWrite returns true for levels allowed to upload
func (p PermissionLevel) CanWrite() bool {
	return p >= PermissionWrite
}

var (
	ErrMalformed        = errors.New("api key is not a valid JWT")
	ErrMissingClaim     = errors.New("api key is missing a required claim")
	ErrInvalidSignature = errors.New("api key signature is invalid")
	ErrExpired          = errors.New("api key has expired")
)

type claims struct {
	jwt.RegisteredClaims
	ID              string          `json:"id"`
	CompanyID       string          `json:"company_id"`
	PermissionLevel PermissionLevel `json:"permission_level"`
}

// Identity is what an API key says about its holder
type Identity struct {
	EmployeeID      string
	CompanyID       string
	PermissionLevel PermissionLevel
	ExpiresAt       time.Time
}

// Expired reports whether the key is past its expiry at now
func (i *Identity) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// TTL returns the time left until expiry, or 0 when expired
func (i *Identity) TTL(now time.Time) time.Duration {
	if i.Expired(now) {
		return 0
	}
	return i.ExpiresAt.Sub(now)
}

func (c *claims) identity() (*Identity, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("%w: id", ErrMissingClaim)
	}
	if c.CompanyID == "" {
		return nil, fmt.Errorf("%w: company_id", ErrMissingClaim)
	}
	if !c.PermissionLevel.IsValid() {
		return nil, fmt.Errorf("%w: permission_level", ErrMissingClaim)
	}
	if c.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: exp", ErrMissingClaim)
	}
	return &Identity{
		EmployeeID:      c.ID,
		CompanyID:       c.CompanyID,
		PermissionLevel: c.PermissionLevel,
		ExpiresAt:       c.ExpiresAt.Time,
	}, nil
}

// Inspect decodes key without verifying its signature or expiry
func Inspect(key string) (*Identity, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(key, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return c.identity()
}

// Verify checks an HS256 signature with secret and rejects expired keys
func Verify(key string, secret []byte) (*Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(key, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return c.identity()
}

// Issue signs an HS256 key for id, for local servers and tests
func Issue(secret []byte, id Identity) (string, error) {
	if !id.PermissionLevel.IsValid() {
		return "", fmt.Errorf("invalid permission level %d", id.PermissionLevel)
	}
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(id.ExpiresAt),
		},
		ID:              id.EmployeeID,
		CompanyID:       id.CompanyID,
		PermissionLevel: id.PermissionLevel,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign api key: %w", err)
	}
	return signed, nil
}
