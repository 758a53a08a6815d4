package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/medreminder/internal/common"
	"github.com/go-chi/render"
)

type createAccountRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type sendOTPRequest struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	IsRegister bool   `json:"isRegister"`
}

type forgotPasswordRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=128"`
	OTP         string `json:"otp" validate:"required,numeric,len=6"`
}

type userResponse struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	AccessToken string `json:"accessToken,omitempty"`
}

type otpResponse struct {
	OTP string `json:"otp"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Code    common.ErrorCode `json:"code"`
	Message string           `json:"message,omitempty"`
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// decode reads a JSON body into v and validates it. Failures are written as
// invalidData and reported as false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		h.writeError(w, r, common.ErrorInvalidData)
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		h.writeError(w, r, common.ErrorInvalidData)
		return false
	}
	return true
}

func errorStatus(err error) (int, common.ErrorCode) {
	switch {
	case errors.Is(err, common.ErrorInvalidData):
		return http.StatusBadRequest, common.CodeInvalidData
	case errors.Is(err, common.ErrorInvalidCredentials):
		return http.StatusUnauthorized, common.CodeInvalidCredentials
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, common.CodeUserAlreadyExists
	default:
		return http.StatusInternalServerError, common.CodeServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		msg = "internal server error"
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Code: code, Message: msg})
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		h.writeError(w, r, common.ErrorInvalidData)
		return
	}

	sess, err := h.users.CreateAccount(r.Context(), strings.TrimSpace(req.Username), normalizeEmail(req.Email), req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, userResponse{Email: sess.User.Email, Username: sess.User.Username, AccessToken: sess.AccessToken})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	sess, err := h.users.Login(r.Context(), normalizeEmail(req.Email), req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.JSON(w, r, userResponse{Email: sess.User.Email, Username: sess.User.Username, AccessToken: sess.AccessToken})
}

func (h *Handler) sendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	code, err := h.users.SendOTP(r.Context(), normalizeEmail(req.Email), req.IsRegister)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	render.JSON(w, r, otpResponse{OTP: code})
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.users.ForgotPassword(r.Context(), normalizeEmail(req.Email), req.NewPassword, req.OTP); err != nil {
		h.writeError(w, r, err)
		return
	}

	render.JSON(w, r, messageResponse{Message: "password updated"})
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			h.logger.Warn(r.Context(), "dependency check failed", "dependency", name, "error", err)
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, messageResponse{Message: name + " unavailable"})
			return
		}
	}
	render.JSON(w, r, messageResponse{Message: "ok"})
}
