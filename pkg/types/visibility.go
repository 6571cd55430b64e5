// Copyright 2025 ZapFS Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"
	"strings"
)

// Visibility controls who may read an object once it is stored
type Visibility string

const (
	VisibilityInternal Visibility = "INTERNAL"
	VisibilityPrivate  Visibility = "PRIVATE"
	VisibilityPublic   Visibility = "PUBLIC"
)

// AllVisibilities lists the accepted values in declaration order
var AllVisibilities = []Visibility{VisibilityInternal, VisibilityPrivate, VisibilityPublic}

// IsValid reports whether v is one of the values the service accepts
func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityInternal, VisibilityPrivate, VisibilityPublic:
		return true
	}
	return false
}

func (v Visibility) String() string {
	return string(v)
}

// ParseVisibility accepts any casing of a known visibility ("public", "Private", ...)
func ParseVisibility(s string) (Visibility, error) {
	v := Visibility(strings.ToUpper(strings.TrimSpace(s)))
	if !v.IsValid() {
		names := make([]string, len(AllVisibilities))
		for i, known := range AllVisibilities {
			names[i] = string(known)
		}
		return "", fmt.Errorf("invalid visibility %q: must be one of %s", s, strings.Join(names, ", "))
	}
	return v, nil
}
