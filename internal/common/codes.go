// Package common holds constants, wire error codes and sentinel errors shared
// by the medreminder client and the reference auth server.
package common

// ErrorCode is the machine-readable failure code carried in the body of a
// non-2xx auth response: {"code": "...", "message": "..."}.
type ErrorCode string

const (
	CodeInvalidData        ErrorCode = "invalidData"
	CodeServerError        ErrorCode = "serverError"
	CodeUserAlreadyExists  ErrorCode = "userAlreadyExists"
	CodeInvalidCredentials ErrorCode = "invalidCredentials"
)

// RequestIDHeaderName is set on every outbound auth request.
const RequestIDHeaderName = "X-Request-ID"

// Auth endpoint paths, relative to the server base URL.
const (
	PathCreateAccount  = "/auth/create-account"
	PathLogin          = "/auth/login"
	PathSendOTP        = "/auth/send-otp"
	PathForgotPassword = "/auth/forgot-password"
	PathPing           = "/ping"
)

// OTPLength is the number of decimal digits in a one-time password.
const OTPLength = 6
