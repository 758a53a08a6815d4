package models

import "github.com/dmitrijs2005/medreminder/internal/common"

// CreateAccountRequest is the body of POST /auth/create-account.
type CreateAccountRequest struct {
	Username Username `json:"username"`
	Email    Email    `json:"email"`
	Password Password `json:"password"`
}

func (r CreateAccountRequest) IsValid() bool {
	return r.Username.IsValid() && r.Email.IsValid() && r.Password.IsValid()
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    Email    `json:"email"`
	Password Password `json:"password"`
}

func (r LoginRequest) IsValid() bool {
	return r.Email.IsValid() && r.Password.IsValid()
}

// SendOTPRequest is the body of POST /auth/send-otp. IsRegister selects the
// registration flow (email must be free) over password recovery (email must
// be known).
type SendOTPRequest struct {
	Email      Email `json:"email"`
	IsRegister bool  `json:"isRegister"`
}

func (r SendOTPRequest) IsValid() bool {
	return r.Email.IsValid()
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email       Email    `json:"email"`
	NewPassword Password `json:"newPassword"`
	OTP         OTP      `json:"otp"`
}

func (r ForgotPasswordRequest) IsValid() bool {
	return r.Email.IsValid() && r.NewPassword.IsValid() && r.OTP.IsValid()
}

// UserAPIResponse is returned by create-account and login.
type UserAPIResponse struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	AccessToken string `json:"accessToken,omitempty"`
}

// Admin converts the payload into the local user record.
func (r UserAPIResponse) Admin() Admin {
	return Admin{Email: Email(r.Email), Username: Username(r.Username)}
}

// SendOTPResponse is returned by send-otp.
type SendOTPResponse struct {
	OTP string `json:"otp"`
}

// ForgotPasswordResponse is returned by forgot-password.
type ForgotPasswordResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx auth response.
type ErrorResponse struct {
	Code    common.ErrorCode `json:"code"`
	Message string           `json:"message,omitempty"`
}
