package models

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared by every value object and struct check in this package.
// validator.Validate caches struct metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

const (
	emailRule    = "required,email,max=254"
	passwordRule = "required,min=6,max=128"
	usernameRule = "required,min=1,max=50"
	otpRule      = "required,numeric,len=6"
)

// Email is a user e-mail address.
type Email string

func (e Email) IsValid() bool { return validate.Var(string(e), emailRule) == nil }

// Normalized trims surrounding spaces and lowercases the address.
func (e Email) Normalized() Email { return Email(strings.ToLower(strings.TrimSpace(string(e)))) }

// Password is a plaintext password. String masks the value so it never ends
// up in logs; use string(p) for the raw value.
type Password string

func (p Password) IsValid() bool { return validate.Var(string(p), passwordRule) == nil }

func (p Password) String() string { return "******" }

// Username is the display name chosen at registration.
type Username string

func (u Username) IsValid() bool {
	return strings.TrimSpace(string(u)) != "" && validate.Var(string(u), usernameRule) == nil
}

// OTP is a numeric one-time password.
type OTP string

func (o OTP) IsValid() bool { return validate.Var(string(o), otpRule) == nil }
