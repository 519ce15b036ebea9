// Package models defines the data shapes the client exchanges with the
// LinkSphere API and keeps in local state.
package models

import (
	"fmt"
	"strings"
)

// Gender is stored and sent in lower case.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender accepts any casing of male, female or other.
func ParseGender(s string) (Gender, error) {
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return g, nil
	}
	return "", fmt.Errorf("unknown gender %q (want male, female or other)", s)
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Gender   Gender `json:"gender"`
}

// PendingVerification is the registration awaiting its OTP.
type PendingVerification struct {
	Email string
}
